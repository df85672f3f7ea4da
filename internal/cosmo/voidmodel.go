package cosmo

import "math"

// DefinitionCaveat qualifies the depth proxy used throughout the void model.
// It is attached verbatim to every prediction payload.
const DefinitionCaveat = "|δ| is an effective core underdensity depth used only for the local regime mapping " +
	"g(z,|δ|) → wΓ(g). It is not assumed equal to a catalog-defined density contrast. " +
	"Future overlays will substitute |δ| from the chosen void-finder / tracer-bias model."

// ModelParams are the fixed knobs of the void temperature-shift model.
type ModelParams struct {
	H0          float64 `json:"H0_km_s_Mpc"`
	OmegaM0     float64 `json:"Omega_m0"`
	DecayFactor float64 `json:"D_decay"`
	EntFraction float64 `json:"f_ent"`
	ZRef        float64 `json:"z_ref"`
	DeltaRef    float64 `json:"delta_ref"`
	NExp        float64 `json:"n_exp"`
}

// DefaultModelParams returns the repo-standard parameter choices.
func DefaultModelParams() ModelParams {
	return ModelParams{
		H0:          DefaultH0,
		OmegaM0:     DefaultOmegaM0,
		DecayFactor: DefaultDecayFactor,
		EntFraction: DefaultEntFraction,
		ZRef:        DefaultZRef,
		DeltaRef:    DefaultDeltaRef,
		NExp:        DefaultNExp,
	}
}

// G maps redshift and depth to the dimensionless local-regime variable
//
//	g(z,|δ|) = (|δ|/δ_ref) · ((1+z)/(1+z_ref))^n
func G(z, deltaAbs float64, p ModelParams) float64 {
	return (deltaAbs / p.DeltaRef) * math.Pow((1.0+z)/(1.0+p.ZRef), p.NExp)
}

// BellWeight is the bell-curve weight wΓ(g) = g·e^{1−g}, peaking at
// exactly 1 for g=1.
func BellWeight(g float64) float64 {
	return g * math.Exp(1.0-g)
}

// KISW returns the baseline coefficient k in µK/Mpc² for ΔT ≈ k·R², from
//
//	|Φ0| ≈ 0.5 Ωm H0² |δ_ref| R²
//	ΔT   ≈ 2 Tcmb (|Φ0|/c²) D_decay
func KISW(p ModelParams) float64 {
	h0 := HubbleSI(p.H0)
	kKelvinPerM2 := 2.0 * TCMB * (0.5 * p.OmegaM0 * h0 * h0 * p.DeltaRef) /
		(SpeedOfLight * SpeedOfLight) * p.DecayFactor
	return kKelvinPerM2 * KelvinToMicroK * MpcInMeters * MpcInMeters
}

// Amplitude is the dimensionless void amplitude
//
//	A = f_ent · wΓ(g(z,|δ|)) · sqrt(V(R)/Vc)
//
// with R in Mpc and the coherence volume Vc in m³.
func Amplitude(rMpc, z, deltaAbs, vcM3 float64, p ModelParams) float64 {
	v := SphereVolume(rMpc * MpcInMeters)
	w := BellWeight(G(z, deltaAbs, p))
	return p.EntFraction * w * math.Sqrt(v/vcM3)
}

// DeltaTCore returns the predicted core temperature shift in µK:
//
//	ΔT_core(R) = k_ISW · R² · A(R, z, |δ|)
func DeltaTCore(rMpc, z, deltaAbs, vcM3 float64, p ModelParams) float64 {
	return KISW(p) * rMpc * rMpc * Amplitude(rMpc, z, deltaAbs, vcM3, p)
}
