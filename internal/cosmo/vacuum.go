package cosmo

import "math"

// RhoLambdaMass returns the mass density associated with Λ in kg/m³:
//
//	ρ_crit = 3 H0² / (8 π G)
//	ρ_Λ    = Ω_Λ ρ_crit
//
// h0SI is the Hubble parameter in 1/s.
func RhoLambdaMass(h0SI, omegaLambda float64) float64 {
	rhoCrit := 3.0 * h0SI * h0SI / (8.0 * math.Pi * GravConst)
	return omegaLambda * rhoCrit
}

// RhoLambdaEnergy returns the energy density associated with Λ in J/m³.
func RhoLambdaEnergy(h0SI, omegaLambda float64) float64 {
	return RhoLambdaMass(h0SI, omegaLambda) * SpeedOfLight * SpeedOfLight
}

// RhoEmergentVacuum returns the emergent vacuum energy density in J/m³ of
// the toy model
//
//	ρ_vac ~ (κA · E0) / V_coherence
//
// where kappaA is a dimensionless scaling, e0Erg a characteristic
// decoherence energy in erg, and coherenceVolM3 the coarse-grained
// coherence volume. An order-of-magnitude demonstration, not a derivation.
func RhoEmergentVacuum(kappaA, e0Erg, coherenceVolM3 float64) float64 {
	e0Joules := e0Erg * 1e-7
	return kappaA * e0Joules / coherenceVolM3
}
