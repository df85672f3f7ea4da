package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gop-cosmology/voidcmb/internal/cosmo"
	"github.com/gop-cosmology/voidcmb/internal/voidstore"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(cosmo.DefaultAnchor, cosmo.DefaultModelParams())
	ts := httptest.NewServer(srv.ServeMux())
	t.Cleanup(ts.Close)
	return ts
}

func TestHandleHome(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestDeltaTChart(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	t.Run("default anchor", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/charts/deltat")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("anchor override", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/charts/deltat?anchor=baseline&z=0.4&delta=0.5")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown anchor", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/charts/deltat?anchor=nope")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestProfileChart(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/charts/profile")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRunsWithoutStore(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunsWithStore(t *testing.T) {
	t.Parallel()

	store, err := voidstore.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.InsertPrediction(&voidstore.PredictionRun{
		Anchor:       "A1_lowz",
		RadiusMpc:    62.0,
		DeltaTMicroK: -15.0,
	}))

	srv := NewServer(cosmo.DefaultAnchor, cosmo.DefaultModelParams())
	srv.store = store
	ts := httptest.NewServer(srv.ServeMux())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Measurements []*voidstore.MeasurementRun `json:"measurements"`
		Predictions  []*voidstore.PredictionRun  `json:"predictions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Measurements)
	require.Len(t, body.Predictions, 1)
	assert.Equal(t, "A1_lowz", body.Predictions[0].Anchor)
}

func TestQueryFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		param    string
		def      float64
		expected float64
	}{
		{name: "present", url: "/x?z=0.7", param: "z", def: 0.3, expected: 0.7},
		{name: "absent", url: "/x", param: "z", def: 0.3, expected: 0.3},
		{name: "unparsable", url: "/x?z=abc", param: "z", def: 0.3, expected: 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			assert.Equal(t, tt.expected, queryFloat(r, tt.param, tt.def))
		})
	}
}
