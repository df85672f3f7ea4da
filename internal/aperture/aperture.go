// Package aperture implements compensated aperture photometry on a masked
// HEALPix sky map: the mean temperature of a core disc minus the mean of a
// surrounding rim annulus, both scaled to a target's angular radius.
package aperture

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/gop-cosmology/voidcmb/internal/coords"
	"github.com/gop-cosmology/voidcmb/internal/healpix"
	"github.com/gop-cosmology/voidcmb/internal/skymap"
)

// Params configures the aperture geometry and the coverage guard.
// The core disc has radius CoreFrac·θ_R; the rim annulus spans
// RimInFrac·θ_R to RimOutFrac·θ_R.
type Params struct {
	ThetaRDeg  float64 `json:"theta_R_deg"`
	CoreFrac   float64 `json:"core_frac"`
	RimInFrac  float64 `json:"rim_in_frac"`
	RimOutFrac float64 `json:"rim_out_frac"`
	MinPixels  int     `json:"min_pix"`
}

// DefaultParams are the quick-look defaults used by the measurement CLI.
func DefaultParams() Params {
	return Params{
		ThetaRDeg:  14.0,
		CoreFrac:   0.6,
		RimInFrac:  0.8,
		RimOutFrac: 1.2,
		MinPixels:  50,
	}
}

// Measurement is the result of one aperture photometry run. It echoes the
// geometry it was computed with so the JSON report is self-describing.
type Measurement struct {
	DeltaTMicroK float64 `json:"DeltaT_uK"`
	CoreMicroK   float64 `json:"Tcore_uK"`
	RimMicroK    float64 `json:"Trim_uK"`
	CorePixels   int     `json:"n_core_pix"`
	RimPixels    int     `json:"n_rim_pix"`

	ThetaRDeg  float64 `json:"theta_R_deg"`
	CoreFrac   float64 `json:"core_frac"`
	RimInFrac  float64 `json:"rim_in_frac"`
	RimOutFrac float64 `json:"rim_out_frac"`
	GalLonDeg  float64 `json:"gal_lon_deg"`
	GalLatDeg  float64 `json:"gal_lat_deg"`
}

// Regions holds the two disjoint pixel sets of one aperture as membership
// arrays over the full pixel index space. Rim is the outer disc with the
// inner disc removed, so Core and Rim never overlap.
type Regions struct {
	Nside int
	Core  []bool
	Rim   []bool
}

// SelectRegions computes the core and rim pixel sets for a target direction.
func SelectRegions(nside int, dir coords.Galactic, p Params) Regions {
	// HEALPix angles: theta is colatitude, phi is longitude.
	phi := dir.L * math.Pi / 180
	theta := (90.0 - dir.B) * math.Pi / 180
	center := healpix.Ang2Vec(theta, phi)

	thetaR := p.ThetaRDeg * math.Pi / 180

	core := membership(nside, center, p.CoreFrac*thetaR)
	outer := membership(nside, center, p.RimOutFrac*thetaR)
	inner := membership(nside, center, p.RimInFrac*thetaR)

	rim := outer
	for i := range rim {
		rim[i] = rim[i] && !inner[i]
	}

	return Regions{Nside: nside, Core: core, Rim: rim}
}

func membership(nside int, center healpix.Vec3, radius float64) []bool {
	m := make([]bool, healpix.Npix(nside))
	for _, p := range healpix.QueryDisc(nside, center, radius) {
		m[p] = true
	}
	return m
}

// Compute runs one compensated aperture measurement at dir on m, using keep
// as the reliability mask. A pixel contributes only if it is selected
// geometrically, flagged keep, and carries a finite temperature. Fails with
// ResolutionMismatchError if map and mask disagree on nside, and with
// InsufficientCoverageError if either region ends up with fewer than
// MinPixels qualifying pixels.
func Compute(m *skymap.Map, keep *skymap.KeepMask, dir coords.Galactic, p Params) (*Measurement, error) {
	if m.Nside != keep.Nside {
		return nil, &ResolutionMismatchError{MapNside: m.Nside, MaskNside: keep.Nside}
	}

	regions := SelectRegions(m.Nside, dir, p)

	coreVals := qualifyingValues(m, keep, regions.Core)
	rimVals := qualifyingValues(m, keep, regions.Rim)

	if len(coreVals) < p.MinPixels {
		return nil, &InsufficientCoverageError{Region: "core", Got: len(coreVals), Want: p.MinPixels}
	}
	if len(rimVals) < p.MinPixels {
		return nil, &InsufficientCoverageError{Region: "rim", Got: len(rimVals), Want: p.MinPixels}
	}

	coreMean := stat.Mean(coreVals, nil)
	rimMean := stat.Mean(rimVals, nil)

	return &Measurement{
		DeltaTMicroK: coreMean - rimMean,
		CoreMicroK:   coreMean,
		RimMicroK:    rimMean,
		CorePixels:   len(coreVals),
		RimPixels:    len(rimVals),
		ThetaRDeg:    p.ThetaRDeg,
		CoreFrac:     p.CoreFrac,
		RimInFrac:    p.RimInFrac,
		RimOutFrac:   p.RimOutFrac,
		GalLonDeg:    dir.L,
		GalLatDeg:    dir.B,
	}, nil
}

// qualifyingValues gathers the temperatures of pixels passing all three
// filters: region membership, keep-mask, finiteness.
func qualifyingValues(m *skymap.Map, keep *skymap.KeepMask, region []bool) []float64 {
	var vals []float64
	for i, in := range region {
		if !in || !keep.Keep[i] {
			continue
		}
		v := m.Data[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		vals = append(vals, v)
	}
	return vals
}
