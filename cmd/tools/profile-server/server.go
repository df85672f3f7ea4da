package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gop-cosmology/voidcmb/internal/cosmo"
	"github.com/gop-cosmology/voidcmb/internal/voidstore"
)

// Server renders model curves and stored runs. store is nil when no runs
// database was attached.
type Server struct {
	anchor string
	params cosmo.ModelParams
	store  *voidstore.Store
}

// NewServer creates a profile server with a default anchor preset.
func NewServer(anchor string, params cosmo.ModelParams) *Server {
	return &Server{anchor: anchor, params: params}
}

// ServeMux wires the chart, run and admin routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/charts/deltat", s.handleDeltaTChart)
	mux.HandleFunc("/charts/profile", s.handleProfileChart)
	mux.HandleFunc("/runs", s.handleRuns)
	if s.store != nil {
		s.store.AttachAdminRoutes(mux)
	}
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<html><body>
<h1>Void model profile server</h1>
<ul>
<li><a href="/charts/deltat">DeltaT_core(R) curve</a></li>
<li><a href="/charts/profile">Normalized radial profile</a></li>
<li><a href="/runs">Stored runs (JSON)</a></li>
<li><a href="/debug/">Debug (tailsql, backup)</a></li>
</ul></body></html>`))
}

// anchorFromQuery resolves the anchor preset, allowing an override via the
// "anchor" query parameter.
func (s *Server) anchorFromQuery(r *http.Request) (string, float64, error) {
	anchor := r.URL.Query().Get("anchor")
	if anchor == "" {
		anchor = s.anchor
	}
	vc, err := cosmo.CalibrateVc(anchor, s.params)
	return anchor, vc, err
}

func (s *Server) handleDeltaTChart(w http.ResponseWriter, r *http.Request) {
	anchor, vc, err := s.anchorFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	z := queryFloat(r, "z", 0.3)
	delta := queryFloat(r, "delta", 0.30)

	const samples = 220
	xs := make([]string, samples)
	data := make([]opts.LineData, samples)
	for i := 0; i < samples; i++ {
		rMpc := 20.0 + float64(i)*(120.0-20.0)/float64(samples-1)
		xs[i] = fmt.Sprintf("%.1f", rMpc)
		data[i] = opts.LineData{Value: cosmo.DeltaTCore(rMpc, z, delta, vc, s.params)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "DeltaT_core(R)", Width: "1000px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "DeltaT_core(R)",
			Subtitle: fmt.Sprintf("anchor=%s z=%g |delta|=%g Vc=%.3e m3", anchor, z, delta, vc),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "R (Mpc)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "DeltaT_core (uK)"}),
	)
	line.SetXAxis(xs)
	line.AddSeries("DeltaT_core", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	s.render(w, line)
}

func (s *Server) handleProfileChart(w http.ResponseWriter, r *http.Request) {
	z := queryFloat(r, "z", 0.5)

	const samples = 240
	xs := make([]string, samples)
	data := make([]opts.LineData, samples)
	var w0 float64
	for i := 0; i < samples; i++ {
		rFrac := float64(i) * 1.2 / float64(samples-1)
		depth := 0.10 + (0.30-0.10)*math.Exp(-(rFrac/0.35)*(rFrac/0.35))
		wv := cosmo.BellWeight(cosmo.G(z, depth, s.params))
		if i == 0 {
			w0 = wv
		}
		xs[i] = fmt.Sprintf("%.2f", rFrac)
		data[i] = opts.LineData{Value: wv / w0}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Radial profile", Width: "1000px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Normalized radial profile",
			Subtitle: fmt.Sprintf("z=%g, depth-mapped through wGamma(g)", z),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "r / R"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Normalized DeltaT"}),
	)
	line.SetXAxis(xs)
	line.AddSeries("profile", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	s.render(w, line)
}

type renderable interface {
	Render(w io.Writer) error
}

func (s *Server) render(w http.ResponseWriter, chart renderable) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		http.Error(w, fmt.Sprintf("failed to render chart: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "no runs database attached", http.StatusNotFound)
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	measurements, err := s.store.ListMeasurements(limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list measurement runs: %v", err), http.StatusInternalServerError)
		return
	}
	predictions, err := s.store.ListPredictions(limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list prediction runs: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"measurements": measurements,
		"predictions":  predictions,
	})
}

func queryFloat(r *http.Request, name string, def float64) float64 {
	if v := r.URL.Query().Get(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
