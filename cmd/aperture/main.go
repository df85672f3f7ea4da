// Package main provides the single-void aperture photometry tool.
// It computes the compensated statistic ΔT = <T>_core − <T>_rim for one
// target on a masked HEALPix CMB map and reports the result as JSON.
//
// Bootstrap uncertainty, random-center null distributions and multi-map
// sweeps are out of scope for this quick-look tool.
package main

import (
	"encoding/json"
	"flag"
	"log"

	"github.com/gop-cosmology/voidcmb/internal/aperture"
	"github.com/gop-cosmology/voidcmb/internal/coords"
	"github.com/gop-cosmology/voidcmb/internal/report"
	"github.com/gop-cosmology/voidcmb/internal/skymap"
	"github.com/gop-cosmology/voidcmb/internal/voidstore"
)

// Config holds the parsed command-line configuration.
type Config struct {
	MapPath       string
	MapField      int
	MapInMicroK   bool
	MaskPath      string
	MaskField     int
	MaskThreshold float64

	RADeg  float64
	DecDeg float64

	Aperture aperture.Params

	OutPath string
	DBPath  string
}

// Payload is the JSON document written to stdout and the optional output file.
type Payload struct {
	Tool        string                `json:"tool"`
	Inputs      Inputs                `json:"inputs"`
	Measurement *aperture.Measurement `json:"measurement"`
	Notes       Notes                 `json:"notes"`
}

// Inputs echoes the invocation so reports are reproducible.
type Inputs struct {
	MapPath       string  `json:"cmb_map"`
	MapField      int     `json:"cmb_field"`
	MapInMicroK   bool    `json:"map_in_uK"`
	MaskPath      string  `json:"mask"`
	MaskField     int     `json:"mask_field"`
	MaskThreshold float64 `json:"mask_threshold"`
	RADeg         float64 `json:"ra_deg"`
	DecDeg        float64 `json:"dec_deg"`
	ThetaRDeg     float64 `json:"theta_R_deg"`
	CoreFrac      float64 `json:"core_frac"`
	RimInFrac     float64 `json:"rim_in_frac"`
	RimOutFrac    float64 `json:"rim_out_frac"`
	MinPixels     int     `json:"min_pix"`
}

// Notes carries fixed descriptive strings for the report.
type Notes struct {
	Statistic string `json:"statistic"`
	Scope     string `json:"scope"`
}

func main() {
	cfg := parseFlags()

	if cfg.MapPath == "" {
		log.Fatal("-cmb-map is required")
	}
	if cfg.MaskPath == "" {
		log.Fatal("-mask is required")
	}

	cmb, err := skymap.LoadMap(cfg.MapPath, cfg.MapField, cfg.MapInMicroK)
	if err != nil {
		log.Fatalf("Failed to load CMB map: %v", err)
	}

	keep, err := skymap.LoadKeepMask(cfg.MaskPath, cfg.MaskField, cfg.MaskThreshold)
	if err != nil {
		log.Fatalf("Failed to load mask: %v", err)
	}

	dir := coords.ICRSToGalactic(cfg.RADeg, cfg.DecDeg)

	measurement, err := aperture.Compute(cmb, keep, dir, cfg.Aperture)
	if err != nil {
		log.Fatalf("Measurement failed: %v", err)
	}

	payload := Payload{
		Tool: "aperture",
		Inputs: Inputs{
			MapPath:       cfg.MapPath,
			MapField:      cfg.MapField,
			MapInMicroK:   cfg.MapInMicroK,
			MaskPath:      cfg.MaskPath,
			MaskField:     cfg.MaskField,
			MaskThreshold: cfg.MaskThreshold,
			RADeg:         cfg.RADeg,
			DecDeg:        cfg.DecDeg,
			ThetaRDeg:     cfg.Aperture.ThetaRDeg,
			CoreFrac:      cfg.Aperture.CoreFrac,
			RimInFrac:     cfg.Aperture.RimInFrac,
			RimOutFrac:    cfg.Aperture.RimOutFrac,
			MinPixels:     cfg.Aperture.MinPixels,
		},
		Measurement: measurement,
		Notes: Notes{
			Statistic: "DeltaT_uK = mean(core) - mean(rim)",
			Scope:     "Single-void quick-look. Bootstrap uncertainty, null distributions and multi-map sweeps are out of scope.",
		},
	}

	if err := report.Emit(payload, cfg.OutPath); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	if cfg.DBPath != "" {
		if err := recordRun(cfg, measurement); err != nil {
			log.Printf("Warning: failed to record run: %v", err)
		}
	}
}

func parseFlags() Config {
	cfg := Config{Aperture: aperture.DefaultParams()}

	flag.StringVar(&cfg.MapPath, "cmb-map", "", "Path to a HEALPix CMB FITS map (e.g. SMICA)")
	flag.IntVar(&cfg.MapField, "cmb-field", 0, "FITS field index for temperature")
	flag.BoolVar(&cfg.MapInMicroK, "map-in-uk", false, "Set if the CMB map is already in µK")

	flag.StringVar(&cfg.MaskPath, "mask", "", "Path to a HEALPix mask FITS file")
	flag.IntVar(&cfg.MaskField, "mask-field", 0, "Mask field index")
	flag.Float64Var(&cfg.MaskThreshold, "mask-threshold", 0.8, "Keep pixels with mask >= threshold")

	flag.Float64Var(&cfg.RADeg, "ra", 222.5, "Target center RA (deg, ICRS)")
	flag.Float64Var(&cfg.DecDeg, "dec", 46.0, "Target center Dec (deg, ICRS)")

	flag.Float64Var(&cfg.Aperture.ThetaRDeg, "theta-r", cfg.Aperture.ThetaRDeg, "Void angular radius θ_R (deg)")
	flag.Float64Var(&cfg.Aperture.CoreFrac, "core-frac", cfg.Aperture.CoreFrac, "Core radius fraction of θ_R")
	flag.Float64Var(&cfg.Aperture.RimInFrac, "rim-in-frac", cfg.Aperture.RimInFrac, "Rim inner radius fraction of θ_R")
	flag.Float64Var(&cfg.Aperture.RimOutFrac, "rim-out-frac", cfg.Aperture.RimOutFrac, "Rim outer radius fraction of θ_R")
	flag.IntVar(&cfg.Aperture.MinPixels, "min-pix", cfg.Aperture.MinPixels, "Minimum unmasked pixels required per region")

	flag.StringVar(&cfg.OutPath, "out", "", "If set, write the JSON report to this path")
	flag.StringVar(&cfg.DBPath, "db", "", "If set, record the run in this SQLite database")

	flag.Parse()
	return cfg
}

func recordRun(cfg Config, m *aperture.Measurement) error {
	store, err := voidstore.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	params, err := json.Marshal(cfg.Aperture)
	if err != nil {
		return err
	}

	return store.InsertMeasurement(&voidstore.MeasurementRun{
		MapPath:      cfg.MapPath,
		MaskPath:     cfg.MaskPath,
		ParamsJSON:   params,
		DeltaTMicroK: m.DeltaTMicroK,
		CoreMicroK:   m.CoreMicroK,
		RimMicroK:    m.RimMicroK,
		CorePixels:   m.CorePixels,
		RimPixels:    m.RimPixels,
		GalLonDeg:    m.GalLonDeg,
		GalLatDeg:    m.GalLatDeg,
	})
}
