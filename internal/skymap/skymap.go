// Package skymap loads HEALPix-pixelized sky maps and reliability masks
// from FITS files and holds them in the form the aperture engine consumes:
// one float64 temperature per RING-ordered pixel, and a boolean keep-mask of
// the same resolution.
package skymap

import (
	"fmt"
	"math"

	"github.com/gop-cosmology/voidcmb/internal/fits"
	"github.com/gop-cosmology/voidcmb/internal/healpix"
)

// Unseen is the HEALPix sentinel for pixels with no observation. Loaders map
// it (and anything within a relative whisker of it) to NaN so downstream
// code only has to test for finiteness.
const Unseen = -1.6375e30

// Map is a pixel-indexed temperature map in µK, RING ordering.
type Map struct {
	Nside int
	Data  []float64
}

// KeepMask flags the pixels whose data quality passed the load-time
// threshold. Same resolution contract as Map.
type KeepMask struct {
	Nside int
	Keep  []bool
}

// New builds a Map from raw values, validating the pixel count.
func New(data []float64) (*Map, error) {
	nside, err := healpix.NsideFromNpix(len(data))
	if err != nil {
		return nil, err
	}
	return &Map{Nside: nside, Data: data}, nil
}

// LoadMap reads a temperature column from a HEALPix FITS file. Values are
// converted to µK unless inMicroKelvin is set; UNSEEN sentinels and
// non-finite values become NaN. NESTED-ordered files are reindexed to RING.
func LoadMap(path string, field int, inMicroKelvin bool) (*Map, error) {
	data, nside, err := loadColumn(path, field)
	if err != nil {
		return nil, err
	}
	for i, v := range data {
		if !isUsable(v) {
			data[i] = math.NaN()
		} else if !inMicroKelvin {
			data[i] = v * 1e6
		}
	}
	return &Map{Nside: nside, Data: data}, nil
}

// LoadKeepMask reads a confidence column and thresholds it to a boolean
// keep-mask. Pixels exactly at the threshold are kept.
func LoadKeepMask(path string, field int, threshold float64) (*KeepMask, error) {
	data, nside, err := loadColumn(path, field)
	if err != nil {
		return nil, err
	}
	keep := make([]bool, len(data))
	for i, v := range data {
		keep[i] = isUsable(v) && v >= threshold
	}
	return &KeepMask{Nside: nside, Keep: keep}, nil
}

// Threshold builds a KeepMask from raw confidence values without file I/O.
func Threshold(values []float64, threshold float64) (*KeepMask, error) {
	nside, err := healpix.NsideFromNpix(len(values))
	if err != nil {
		return nil, err
	}
	keep := make([]bool, len(values))
	for i, v := range values {
		keep[i] = isUsable(v) && v >= threshold
	}
	return &KeepMask{Nside: nside, Keep: keep}, nil
}

func loadColumn(path string, field int) ([]float64, int, error) {
	t, err := fits.OpenTable(path)
	if err != nil {
		return nil, 0, err
	}
	data, err := t.Column(field)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	nside, err := healpix.NsideFromNpix(len(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	if declared, ok := t.KeywordInt("NSIDE"); ok && declared != nside {
		return nil, 0, fmt.Errorf("%s: NSIDE keyword %d disagrees with %d pixels", path, declared, len(data))
	}

	if ordering, ok := t.Keyword("ORDERING"); ok && ordering == "NESTED" {
		data = healpix.ReorderNestToRing(nside, data)
	}
	return data, nside, nil
}

// isUsable reports whether v is a finite, non-sentinel sample.
func isUsable(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	// UNSEEN survives float32 storage with some rounding
	return math.Abs(v-Unseen) > math.Abs(Unseen)*1e-5
}
