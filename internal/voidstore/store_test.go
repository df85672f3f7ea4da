package voidstore

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesSchema(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	// both tables exist and start empty
	runs, err := s.ListMeasurements(10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	preds, err := s.ListPredictions(10)
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runs.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// re-opening must not attempt to re-apply migrations
	s2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

func TestMeasurementRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	run := &MeasurementRun{
		MapPath:      "maps/smica.fits",
		MaskPath:     "maps/common_mask.fits",
		ParamsJSON:   json.RawMessage(`{"theta_R_deg":14}`),
		DeltaTMicroK: -22.5,
		CoreMicroK:   -10.0,
		RimMicroK:    12.5,
		CorePixels:   812,
		RimPixels:    1600,
		GalLonDeg:    79.66,
		GalLatDeg:    59.92,
	}
	require.NoError(t, s.InsertMeasurement(run))
	assert.NotEmpty(t, run.RunID)
	assert.NotZero(t, run.CreatedAt)

	runs, err := s.ListMeasurements(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	got := runs[0]
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, run.MapPath, got.MapPath)
	assert.Equal(t, run.DeltaTMicroK, got.DeltaTMicroK)
	assert.Equal(t, run.CorePixels, got.CorePixels)
	assert.JSONEq(t, string(run.ParamsJSON), string(got.ParamsJSON))
}

func TestPredictionRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	run := &PredictionRun{
		Anchor:       "A1_lowz",
		RadiusMpc:    62.0,
		Z:            0.052,
		DeltaAbs:     0.85,
		VcM3:         1.23e63,
		DeltaTMicroK: -15.4,
	}
	require.NoError(t, s.InsertPrediction(run))

	preds, err := s.ListPredictions(10)
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, run.Anchor, preds[0].Anchor)
	assert.Equal(t, run.VcM3, preds[0].VcM3)
	assert.Nil(t, preds[0].ParamsJSON)
}

func TestListOrderAndLimit(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.InsertMeasurement(&MeasurementRun{
			MapPath:   "m.fits",
			MaskPath:  "k.fits",
			CreatedAt: int64(i + 1),
		}))
	}

	runs, err := s.ListMeasurements(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, int64(5), runs[0].CreatedAt)
	assert.Equal(t, int64(3), runs[2].CreatedAt)
}

func TestIsSQLiteBusy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "locked", err: errors.New("database is locked (5) (SQLITE_BUSY)"), expected: true},
		{name: "SQLITE_BUSY", err: errors.New("SQLITE_BUSY"), expected: true},
		{name: "other error", err: errors.New("some other error"), expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isSQLiteBusy(tt.err))
		})
	}
}

func TestRetryOnBusy(t *testing.T) {
	t.Parallel()

	t.Run("success on first try", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("busy then success", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked (5) (SQLITE_BUSY)")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-busy error fails immediately", func(t *testing.T) {
		calls := 0
		testErr := errors.New("some other error")
		err := retryOnBusy(func() error {
			calls++
			return testErr
		})
		assert.Equal(t, testErr, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			return errors.New("SQLITE_BUSY")
		})
		assert.Error(t, err)
		assert.Equal(t, busyRetries, calls)
	})
}
