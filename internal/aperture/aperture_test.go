package aperture

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gop-cosmology/voidcmb/internal/coords"
	"github.com/gop-cosmology/voidcmb/internal/healpix"
	"github.com/gop-cosmology/voidcmb/internal/skymap"
)

const testNside = 32

// flatMap builds a map with a constant temperature everywhere.
func flatMap(t *testing.T, nside int, value float64) *skymap.Map {
	t.Helper()
	data := make([]float64, healpix.Npix(nside))
	for i := range data {
		data[i] = value
	}
	m, err := skymap.New(data)
	require.NoError(t, err)
	return m
}

// openMask keeps every pixel.
func openMask(t *testing.T, nside int) *skymap.KeepMask {
	t.Helper()
	values := make([]float64, healpix.Npix(nside))
	for i := range values {
		values[i] = 1.0
	}
	keep, err := skymap.Threshold(values, 0.8)
	require.NoError(t, err)
	return keep
}

func testParams() Params {
	return Params{
		ThetaRDeg:  14.0,
		CoreFrac:   0.6,
		RimInFrac:  0.8,
		RimOutFrac: 1.2,
		MinPixels:  10,
	}
}

func TestComputeResolutionMismatch(t *testing.T) {
	t.Parallel()

	m := flatMap(t, testNside, 0)
	keep := openMask(t, 2*testNside)

	_, err := Compute(m, keep, coords.Galactic{L: 80, B: 60}, testParams())

	var mismatch *ResolutionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, testNside, mismatch.MapNside)
	assert.Equal(t, 2*testNside, mismatch.MaskNside)
}

func TestRegionsAreDisjoint(t *testing.T) {
	t.Parallel()

	dirs := []coords.Galactic{
		{L: 0, B: 0},
		{L: 80, B: 60},
		{L: 200, B: -45},
		{L: 359, B: 88},
	}
	for _, dir := range dirs {
		for _, thetaR := range []float64{2.0, 14.0, 30.0} {
			p := testParams()
			p.ThetaRDeg = thetaR
			regions := SelectRegions(testNside, dir, p)
			for i := range regions.Core {
				require.False(t, regions.Core[i] && regions.Rim[i],
					"pixel %d in both regions (dir=%v thetaR=%v)", i, dir, thetaR)
			}
		}
	}
}

func TestComputeKnownDeltaT(t *testing.T) {
	t.Parallel()

	dir := coords.Galactic{L: 80, B: 60}
	p := testParams()

	// cold core on a warm background: ΔT should be exactly the difference
	m := flatMap(t, testNside, 20.0)
	regions := SelectRegions(testNside, dir, p)
	for i, in := range regions.Core {
		if in {
			m.Data[i] = -30.0
		}
	}

	got, err := Compute(m, openMask(t, testNside), dir, p)
	require.NoError(t, err)

	assert.InDelta(t, -50.0, got.DeltaTMicroK, 1e-9)
	assert.InDelta(t, -30.0, got.CoreMicroK, 1e-9)
	assert.InDelta(t, 20.0, got.RimMicroK, 1e-9)
	assert.Greater(t, got.CorePixels, p.MinPixels)
	assert.Greater(t, got.RimPixels, p.MinPixels)

	// geometry echoed for provenance
	assert.Equal(t, p.ThetaRDeg, got.ThetaRDeg)
	assert.Equal(t, p.CoreFrac, got.CoreFrac)
	assert.Equal(t, p.RimInFrac, got.RimInFrac)
	assert.Equal(t, p.RimOutFrac, got.RimOutFrac)
	assert.Equal(t, dir.L, got.GalLonDeg)
	assert.Equal(t, dir.B, got.GalLatDeg)
}

func TestComputeFiniteOnValidInput(t *testing.T) {
	t.Parallel()

	m := flatMap(t, testNside, 0)
	for i := range m.Data {
		m.Data[i] = math.Sin(float64(i)) * 50 // deterministic, bounded
	}

	got, err := Compute(m, openMask(t, testNside), coords.Galactic{L: 123, B: -20}, testParams())
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got.DeltaTMicroK))
	assert.False(t, math.IsInf(got.DeltaTMicroK, 0))
}

func TestComputeExcludesNaNAndMasked(t *testing.T) {
	t.Parallel()

	dir := coords.Galactic{L: 80, B: 60}
	p := testParams()

	m := flatMap(t, testNside, 5.0)
	regions := SelectRegions(testNside, dir, p)

	// poison some core pixels with NaN and mask others out; the mean must
	// come from the survivors only
	maskValues := make([]float64, healpix.Npix(testNside))
	for i := range maskValues {
		maskValues[i] = 1.0
	}
	poisoned := 0
	for i, in := range regions.Core {
		if !in {
			continue
		}
		switch poisoned % 3 {
		case 0:
			m.Data[i] = math.NaN()
		case 1:
			maskValues[i] = 0.0
		}
		poisoned++
	}
	keep, err := skymap.Threshold(maskValues, 0.8)
	require.NoError(t, err)

	got, err := Compute(m, keep, dir, p)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got.DeltaTMicroK, 1e-9)
	assert.Less(t, got.CorePixels, poisoned)
}

func TestComputeInsufficientCoverage(t *testing.T) {
	t.Parallel()

	dir := coords.Galactic{L: 80, B: 60}

	t.Run("masked core fails", func(t *testing.T) {
		t.Parallel()

		p := testParams()
		m := flatMap(t, testNside, 1.0)

		// mask away the whole core disc
		regions := SelectRegions(testNside, dir, p)
		maskValues := make([]float64, healpix.Npix(testNside))
		for i := range maskValues {
			if !regions.Core[i] {
				maskValues[i] = 1.0
			}
		}
		keep, err := skymap.Threshold(maskValues, 0.8)
		require.NoError(t, err)

		_, err = Compute(m, keep, dir, p)
		var coverage *InsufficientCoverageError
		require.ErrorAs(t, err, &coverage)
		assert.Equal(t, "core", coverage.Region)
		assert.Contains(t, err.Error(), "mask threshold")
	})

	t.Run("guard is monotonic in min pixels", func(t *testing.T) {
		t.Parallel()

		// a tiny aperture yields few pixels: failing at a high guard and
		// succeeding once the guard drops below the qualifying count
		p := testParams()
		p.ThetaRDeg = 4.0
		p.MinPixels = 100000

		m := flatMap(t, testNside, 1.0)
		keep := openMask(t, testNside)

		_, err := Compute(m, keep, dir, p)
		var coverage *InsufficientCoverageError
		require.ErrorAs(t, err, &coverage)
		require.Greater(t, coverage.Got, 0)

		p.MinPixels = coverage.Got
		got, err := Compute(m, keep, dir, p)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.CorePixels, p.MinPixels)
	})
}

func TestComputeMaskThresholdBoundary(t *testing.T) {
	t.Parallel()

	dir := coords.Galactic{L: 80, B: 60}
	p := testParams()

	m := flatMap(t, testNside, 3.0)

	// every pixel sits exactly at the threshold; >= semantics must keep them
	maskValues := make([]float64, healpix.Npix(testNside))
	for i := range maskValues {
		maskValues[i] = 0.8
	}
	keep, err := skymap.Threshold(maskValues, 0.8)
	require.NoError(t, err)

	got, err := Compute(m, keep, dir, p)
	require.NoError(t, err)
	assert.Greater(t, got.CorePixels, 0)
	assert.Greater(t, got.RimPixels, 0)
}

func TestErrorTypes(t *testing.T) {
	t.Parallel()

	mismatch := &ResolutionMismatchError{MapNside: 64, MaskNside: 128}
	assert.Contains(t, mismatch.Error(), "64")
	assert.Contains(t, mismatch.Error(), "128")

	coverage := &InsufficientCoverageError{Region: "rim", Got: 3, Want: 50}
	assert.Contains(t, coverage.Error(), "rim")
	assert.Contains(t, coverage.Error(), "3")

	// neither wraps the other
	assert.False(t, errors.Is(mismatch, coverage))
}
