// Package panels renders the two summary figures of the void model as PNG
// files: the predicted core temperature shift as a function of void radius,
// and the normalized radial profile implied by mapping a depth profile
// through the bell weight.
package panels

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gop-cosmology/voidcmb/internal/cosmo"
)

// Config selects the calibration anchor and output paths.
type Config struct {
	Anchor string
	Params cosmo.ModelParams
	OutA   string // ΔT_core(R) panel
	OutB   string // normalized radial profile panel
}

// Panel A sampling: void radii in Mpc at fixed illustrative (z, |δ|).
const (
	panelARMin    = 20.0
	panelARMax    = 120.0
	panelASamples = 220
	panelAZ       = 0.3
	panelADelta   = 0.30
)

// Panel B sampling: normalized radius r/R with a Gaussian depth profile.
const (
	panelBRFracMax = 1.2
	panelBSamples  = 240
	panelBZ        = 0.5
	deltaCore      = 0.30
	deltaRim       = 0.10
	deltaSigma     = 0.35
)

// representative void sizes for the profile legend, Mpc
var panelBVoidSizes = []float64{30, 60, 90}

var lineColors = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
}

// Generate calibrates Vc for the configured anchor and writes both panels.
// Returns the number of files written.
func Generate(cfg Config) (int, error) {
	vc, err := cosmo.CalibrateVc(cfg.Anchor, cfg.Params)
	if err != nil {
		return 0, err
	}

	for _, out := range []string{cfg.OutA, cfg.OutB} {
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return 0, fmt.Errorf("create output dir: %w", err)
			}
		}
	}

	if err := renderPanelA(cfg, vc); err != nil {
		return 0, fmt.Errorf("panel A: %w", err)
	}
	if err := renderPanelB(cfg); err != nil {
		return 1, fmt.Errorf("panel B: %w", err)
	}
	return 2, nil
}

func renderPanelA(cfg Config, vc float64) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Panel A - DeltaT_core(R) (anchor=%s, z=%g, |delta|=%g)",
		cfg.Anchor, panelAZ, panelADelta)
	p.X.Label.Text = "Void radius R [Mpc]"
	p.Y.Label.Text = "DeltaT_core [uK]"

	pts := make(plotter.XYs, panelASamples)
	step := (panelARMax - panelARMin) / float64(panelASamples-1)
	for i := range pts {
		r := panelARMin + float64(i)*step
		pts[i] = plotter.XY{X: r, Y: cosmo.DeltaTCore(r, panelAZ, panelADelta, vc, cfg.Params)}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = lineColors[0]
	line.Width = vg.Points(1.5)
	p.Add(line)

	return p.Save(8*vg.Inch, 5*vg.Inch, cfg.OutA)
}

func renderPanelB(cfg Config) error {
	p := plot.New()
	p.Title.Text = "Panel B - Normalized radial profile (depth-mapped)"
	p.X.Label.Text = "r / R"
	p.Y.Label.Text = "Normalized DeltaT(r/R)"

	for i, r := range panelBVoidSizes {
		pts := make(plotter.XYs, panelBSamples)
		var w0 float64
		step := panelBRFracMax / float64(panelBSamples-1)
		for j := range pts {
			rFrac := float64(j) * step
			w := cosmo.BellWeight(cosmo.G(panelBZ, depthProfile(rFrac), cfg.Params))
			if j == 0 {
				w0 = w
			}
			pts[j] = plotter.XY{X: rFrac, Y: w / w0}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = lineColors[i%len(lineColors)]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("R=%.0f Mpc", r), line)
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, cfg.OutB)
}

// depthProfile interpolates the depth radially:
//
//	δ(r) = δ_rim + (δ_core − δ_rim)·exp(−(r/σ)²)
//
// with r normalized to the void radius.
func depthProfile(rFrac float64) float64 {
	return deltaRim + (deltaCore-deltaRim)*math.Exp(-(rFrac/deltaSigma)*(rFrac/deltaSigma))
}
