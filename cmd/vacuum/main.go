// Package main compares the ΛCDM vacuum energy density with the emergent
// vacuum scale of the toy model: a fixed parameter set with no cosmological
// tuning landing near the observed Λ scale.
package main

import (
	"flag"
	"log"

	"github.com/gop-cosmology/voidcmb/internal/cosmo"
	"github.com/gop-cosmology/voidcmb/internal/report"
)

// Config holds the parsed command-line configuration.
type Config struct {
	H0          float64
	OmegaLambda float64
	KappaA      float64
	E0Erg       float64
	CoherenceV  float64
	OutPath     string
}

// Payload is the JSON comparison report.
type Payload struct {
	LambdaCDM Lambda   `json:"lambda_cdm"`
	Emergent  Emergent `json:"emergent_vacuum"`
	Ratio     float64  `json:"rho_emergent_over_rho_lambda"`
}

// Lambda is the observationally fitted side of the comparison.
type Lambda struct {
	H0          float64 `json:"H0_km_s_Mpc"`
	OmegaLambda float64 `json:"Omega_lambda"`
	RhoMass     float64 `json:"rho_lambda_mass_kg_m3"`
	RhoEnergy   float64 `json:"rho_lambda_energy_J_m3"`
}

// Emergent is the fixed-parameter toy side.
type Emergent struct {
	KappaA     float64 `json:"kappa_A"`
	E0Erg      float64 `json:"E0_erg"`
	CoherenceV float64 `json:"coherence_volume_m3"`
	RhoEnergy  float64 `json:"rho_vac_energy_J_m3"`
}

func main() {
	cfg := parseFlags()

	h0 := cosmo.HubbleSI(cfg.H0)
	rhoMass := cosmo.RhoLambdaMass(h0, cfg.OmegaLambda)
	rhoEnergy := cosmo.RhoLambdaEnergy(h0, cfg.OmegaLambda)
	rhoEmergent := cosmo.RhoEmergentVacuum(cfg.KappaA, cfg.E0Erg, cfg.CoherenceV)

	payload := Payload{
		LambdaCDM: Lambda{
			H0:          cfg.H0,
			OmegaLambda: cfg.OmegaLambda,
			RhoMass:     rhoMass,
			RhoEnergy:   rhoEnergy,
		},
		Emergent: Emergent{
			KappaA:     cfg.KappaA,
			E0Erg:      cfg.E0Erg,
			CoherenceV: cfg.CoherenceV,
			RhoEnergy:  rhoEmergent,
		},
		Ratio: rhoEmergent / rhoEnergy,
	}

	if err := report.Emit(payload, cfg.OutPath); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.Float64Var(&cfg.H0, "h0", cosmo.DefaultH0, "Hubble parameter (km/s/Mpc)")
	flag.Float64Var(&cfg.OmegaLambda, "omega-lambda", cosmo.DefaultOmegaLambda, "Dark energy density fraction Ω_Λ")
	flag.Float64Var(&cfg.KappaA, "kappa-a", 1.5e-15, "Dimensionless effective scaling κA")
	flag.Float64Var(&cfg.E0Erg, "e0-erg", 1.0e12, "Characteristic decoherence energy E0 (erg)")
	flag.Float64Var(&cfg.CoherenceV, "coherence-vol", 1.0, "Coarse-grained coherence volume (m³)")
	flag.StringVar(&cfg.OutPath, "out", "", "If set, write the JSON report to this path")

	flag.Parse()
	return cfg
}
