// Package cosmo holds the closed-form cosmology evaluators: the ΛCDM vacuum
// density, the emergent-vacuum toy scale, and the void temperature-shift
// model with its anchor-based calibration.
package cosmo

import "math"

// Physical constants, SI units.
const (
	SpeedOfLight   = 299792458.0          // m/s
	GravConst      = 6.67430e-11          // m^3 kg^-1 s^-2
	TCMB           = 2.725                // K
	MpcInMeters    = 3.085677581491367e22 // m
	KelvinToMicroK = 1e6
)

// Planck-era defaults used across the toy model.
const (
	DefaultH0          = 67.4  // km/s/Mpc
	DefaultOmegaM0     = 0.315
	DefaultOmegaLambda = 0.688
	DefaultDecayFactor = 0.1  // effective potential-decay factor
	DefaultEntFraction = 0.20 // entanglement fraction
	DefaultZRef        = 0.5
	DefaultDeltaRef    = 0.3
	DefaultNExp        = 3.0
)

// HubbleSI converts a Hubble parameter from km/s/Mpc to 1/s.
func HubbleSI(h0KmSMpc float64) float64 {
	return h0KmSMpc * 1e3 / MpcInMeters
}

// SphereVolume returns the volume of a sphere of radius r metres, in m³.
func SphereVolume(rMeters float64) float64 {
	return 4.0 / 3.0 * math.Pi * rMeters * rMeters * rMeters
}
