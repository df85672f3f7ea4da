// Package main provides the void temperature-shift prediction tool.
// It calibrates the coherence volume Vc against a named anchor preset, then
// predicts ΔT_core for a target void with a depth sensitivity band.
package main

import (
	"encoding/json"
	"flag"
	"log"

	"github.com/gop-cosmology/voidcmb/internal/cosmo"
	"github.com/gop-cosmology/voidcmb/internal/report"
	"github.com/gop-cosmology/voidcmb/internal/voidstore"
)

// Config holds the parsed command-line configuration.
type Config struct {
	Anchor    string
	RadiusMpc float64
	Z         float64
	DeltaAbs  float64
	DeltaLow  float64
	DeltaHigh float64
	NExp      float64
	OutPath   string
	DBPath    string
}

// Payload is the JSON prediction report.
type Payload struct {
	Object       string       `json:"object"`
	AnchorPreset string       `json:"anchor_preset"`
	AnchorValues cosmo.Anchor `json:"anchor_values"`
	Inputs       Inputs       `json:"inputs"`
	Calibration  Calibration  `json:"calibration"`
	Prediction   Prediction   `json:"prediction"`
	Caveat       string       `json:"definition_caveat"`
}

// Inputs echoes the target parameters.
type Inputs struct {
	RadiusMpc float64    `json:"R_Mpc"`
	Z         float64    `json:"z"`
	DeltaAbs  float64    `json:"delta_lock_abs"`
	DeltaBand [2]float64 `json:"delta_band_abs"`
	NExp      float64    `json:"n_exp"`
}

// Calibration reports the solved scale parameter.
type Calibration struct {
	VcM3 float64 `json:"Vc_m3"`
}

// Prediction carries the locked prediction and its depth sensitivity band.
type Prediction struct {
	DeltaTMicroK float64     `json:"DeltaT_core_uK"`
	Sensitivity  Sensitivity `json:"delta_sensitivity"`
}

// Sensitivity brackets the prediction over the depth band.
type Sensitivity struct {
	LowDeltaAbs      float64 `json:"low_delta_abs"`
	LowDeltaTMicroK  float64 `json:"low_DeltaT_uK"`
	HighDeltaAbs     float64 `json:"high_delta_abs"`
	HighDeltaTMicroK float64 `json:"high_DeltaT_uK"`
}

func main() {
	cfg := parseFlags()

	params := cosmo.DefaultModelParams()
	params.NExp = cfg.NExp

	vc, err := cosmo.CalibrateVc(cfg.Anchor, params)
	if err != nil {
		log.Fatalf("Calibration failed: %v", err)
	}
	anchor, err := cosmo.LookupAnchor(cfg.Anchor)
	if err != nil {
		log.Fatalf("Calibration failed: %v", err)
	}

	predict := func(deltaAbs float64) float64 {
		return cosmo.DeltaTCore(cfg.RadiusMpc, cfg.Z, deltaAbs, vc, params)
	}

	dtLock := predict(cfg.DeltaAbs)

	payload := Payload{
		Object:       "Bootes Void",
		AnchorPreset: cfg.Anchor,
		AnchorValues: anchor,
		Inputs: Inputs{
			RadiusMpc: cfg.RadiusMpc,
			Z:         cfg.Z,
			DeltaAbs:  cfg.DeltaAbs,
			DeltaBand: [2]float64{cfg.DeltaLow, cfg.DeltaHigh},
			NExp:      cfg.NExp,
		},
		Calibration: Calibration{VcM3: vc},
		Prediction: Prediction{
			DeltaTMicroK: dtLock,
			Sensitivity: Sensitivity{
				LowDeltaAbs:      cfg.DeltaLow,
				LowDeltaTMicroK:  predict(cfg.DeltaLow),
				HighDeltaAbs:     cfg.DeltaHigh,
				HighDeltaTMicroK: predict(cfg.DeltaHigh),
			},
		},
		Caveat: cosmo.DefinitionCaveat,
	}

	if err := report.Emit(payload, cfg.OutPath); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	if cfg.DBPath != "" {
		if err := recordRun(cfg, params, vc, dtLock); err != nil {
			log.Printf("Warning: failed to record run: %v", err)
		}
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.Anchor, "anchor", cosmo.DefaultAnchor, "Calibration anchor preset (baseline, A1_lowz, A2_lowz_band)")
	flag.Float64Var(&cfg.RadiusMpc, "r-mpc", 62.0, "Void radius R (Mpc)")
	flag.Float64Var(&cfg.Z, "z", 0.052, "Void redshift")
	flag.Float64Var(&cfg.DeltaAbs, "delta", 0.85, "Locked effective depth |δ|")
	flag.Float64Var(&cfg.DeltaLow, "delta-low", 0.75, "Low end of the |δ| sensitivity band")
	flag.Float64Var(&cfg.DeltaHigh, "delta-high", 0.90, "High end of the |δ| sensitivity band")
	flag.Float64Var(&cfg.NExp, "n-exp", cosmo.DefaultNExp, "Redshift exponent n in g(z,|δ|)")
	flag.StringVar(&cfg.OutPath, "out", "", "If set, write the JSON report to this path")
	flag.StringVar(&cfg.DBPath, "db", "", "If set, record the run in this SQLite database")

	flag.Parse()
	return cfg
}

func recordRun(cfg Config, params cosmo.ModelParams, vc, dtLock float64) error {
	store, err := voidstore.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return err
	}

	return store.InsertPrediction(&voidstore.PredictionRun{
		Anchor:       cfg.Anchor,
		RadiusMpc:    cfg.RadiusMpc,
		Z:            cfg.Z,
		DeltaAbs:     cfg.DeltaAbs,
		VcM3:         vc,
		DeltaTMicroK: dtLock,
		ParamsJSON:   paramsJSON,
	})
}
