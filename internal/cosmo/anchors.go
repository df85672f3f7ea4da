package cosmo

import (
	"fmt"
	"sort"
	"strings"
)

// Anchor is a calibration preset: a reference void whose target temperature
// shift the model must reproduce exactly, fixing the coherence volume Vc.
type Anchor struct {
	Name         string  `json:"name"`
	RadiusMpc    float64 `json:"R_cal_Mpc"`
	Z            float64 `json:"z_cal"`
	DeltaTMicroK float64 `json:"DeltaT_cal_uK"`
	DeltaAbs     float64 `json:"delta_cal_abs"`
}

// DefaultAnchor is the preset used when none is named.
const DefaultAnchor = "A1_lowz"

// anchors is the fixed preset registry. Resolved by name at startup; never
// mutated at runtime.
var anchors = map[string]Anchor{
	"baseline":     {Name: "baseline", RadiusMpc: 80.0, Z: 0.5, DeltaTMicroK: 10.0, DeltaAbs: 0.3},
	"A1_lowz":      {Name: "A1_lowz", RadiusMpc: 55.0, Z: 0.3, DeltaTMicroK: 10.0, DeltaAbs: 0.3},
	"A2_lowz_band": {Name: "A2_lowz_band", RadiusMpc: 55.0, Z: 0.3, DeltaTMicroK: 8.0, DeltaAbs: 0.3},
}

// UnknownPresetError reports an anchor name missing from the registry.
type UnknownPresetError struct {
	Name string
}

func (e *UnknownPresetError) Error() string {
	return fmt.Sprintf("unknown anchor preset %q (valid: %s)", e.Name, strings.Join(AnchorNames(), ", "))
}

// AnchorNames lists the registry in stable order.
func AnchorNames() []string {
	names := make([]string, 0, len(anchors))
	for name := range anchors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupAnchor resolves a preset by name.
func LookupAnchor(name string) (Anchor, error) {
	a, ok := anchors[name]
	if !ok {
		return Anchor{}, &UnknownPresetError{Name: name}
	}
	return a, nil
}

// CalibrateVc solves the coherence volume Vc in m³ from the anchor
// constraint
//
//	ΔT_cal = k · R_cal² · f_ent · wΓ(g_cal) · sqrt(V(R_cal)/Vc)
//
// by closed-form inversion. The model evaluated at the anchor's (R, z, |δ|)
// with the returned Vc reproduces ΔT_cal exactly.
func CalibrateVc(anchorName string, p ModelParams) (float64, error) {
	a, err := LookupAnchor(anchorName)
	if err != nil {
		return 0, err
	}

	k := KISW(p)
	w := BellWeight(G(a.Z, a.DeltaAbs, p))
	v := SphereVolume(a.RadiusMpc * MpcInMeters)

	denom := k * a.RadiusMpc * a.RadiusMpc * p.EntFraction * w
	ratio := a.DeltaTMicroK / denom
	return v / (ratio * ratio), nil
}
