// Package voidstore persists measurement and prediction runs to a local
// SQLite database so individual CLI invocations leave a queryable record.
package voidstore

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the runs database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the runs database at path and brings the schema
// up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open runs database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for the admin routes.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	drv, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	// Not closing m: that would close the shared DB connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MeasurementRun is one persisted aperture photometry invocation.
type MeasurementRun struct {
	RunID        string          `json:"run_id"`
	MapPath      string          `json:"map_path"`
	MaskPath     string          `json:"mask_path"`
	ParamsJSON   json.RawMessage `json:"params_json,omitempty"`
	DeltaTMicroK float64         `json:"DeltaT_uK"`
	CoreMicroK   float64         `json:"Tcore_uK"`
	RimMicroK    float64         `json:"Trim_uK"`
	CorePixels   int             `json:"n_core_pix"`
	RimPixels    int             `json:"n_rim_pix"`
	GalLonDeg    float64         `json:"gal_lon_deg"`
	GalLatDeg    float64         `json:"gal_lat_deg"`
	CreatedAt    int64           `json:"created_at"`
}

// PredictionRun is one persisted calibrated prediction.
type PredictionRun struct {
	RunID        string          `json:"run_id"`
	Anchor       string          `json:"anchor"`
	RadiusMpc    float64         `json:"R_Mpc"`
	Z            float64         `json:"z"`
	DeltaAbs     float64         `json:"delta_abs"`
	VcM3         float64         `json:"Vc_m3"`
	DeltaTMicroK float64         `json:"DeltaT_core_uK"`
	ParamsJSON   json.RawMessage `json:"params_json,omitempty"`
	CreatedAt    int64           `json:"created_at"`
}

// InsertMeasurement persists a measurement run. A missing RunID gets a UUID.
func (s *Store) InsertMeasurement(run *MeasurementRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var paramsStr interface{}
	if len(run.ParamsJSON) > 0 {
		paramsStr = string(run.ParamsJSON)
	}

	err := retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO measurement_runs (
				run_id, map_path, mask_path, params_json,
				delta_t_uk, tcore_uk, trim_uk, n_core_pix, n_rim_pix,
				gal_lon_deg, gal_lat_deg, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.MapPath, run.MaskPath, paramsStr,
			run.DeltaTMicroK, run.CoreMicroK, run.RimMicroK, run.CorePixels, run.RimPixels,
			run.GalLonDeg, run.GalLatDeg, run.CreatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("inserting measurement run %s: %w", run.RunID, err)
	}
	return nil
}

// InsertPrediction persists a prediction run. A missing RunID gets a UUID.
func (s *Store) InsertPrediction(run *PredictionRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var paramsStr interface{}
	if len(run.ParamsJSON) > 0 {
		paramsStr = string(run.ParamsJSON)
	}

	err := retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO prediction_runs (
				run_id, anchor, radius_mpc, z, delta_abs, vc_m3, delta_t_uk,
				params_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Anchor, run.RadiusMpc, run.Z, run.DeltaAbs, run.VcM3,
			run.DeltaTMicroK, paramsStr, run.CreatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("inserting prediction run %s: %w", run.RunID, err)
	}
	return nil
}

// ListMeasurements returns up to limit measurement runs, newest first.
func (s *Store) ListMeasurements(limit int) ([]*MeasurementRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, map_path, mask_path, params_json,
		       delta_t_uk, tcore_uk, trim_uk, n_core_pix, n_rim_pix,
		       gal_lon_deg, gal_lat_deg, created_at
		FROM measurement_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query measurement runs: %w", err)
	}
	defer rows.Close()

	var runs []*MeasurementRun
	for rows.Next() {
		var run MeasurementRun
		var params sql.NullString
		if err := rows.Scan(
			&run.RunID, &run.MapPath, &run.MaskPath, &params,
			&run.DeltaTMicroK, &run.CoreMicroK, &run.RimMicroK, &run.CorePixels, &run.RimPixels,
			&run.GalLonDeg, &run.GalLatDeg, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan measurement run: %w", err)
		}
		if params.Valid {
			run.ParamsJSON = json.RawMessage(params.String)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// ListPredictions returns up to limit prediction runs, newest first.
func (s *Store) ListPredictions(limit int) ([]*PredictionRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, anchor, radius_mpc, z, delta_abs, vc_m3, delta_t_uk,
		       params_json, created_at
		FROM prediction_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query prediction runs: %w", err)
	}
	defer rows.Close()

	var runs []*PredictionRun
	for rows.Next() {
		var run PredictionRun
		var params sql.NullString
		if err := rows.Scan(
			&run.RunID, &run.Anchor, &run.RadiusMpc, &run.Z, &run.DeltaAbs, &run.VcM3,
			&run.DeltaTMicroK, &params, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan prediction run: %w", err)
		}
		if params.Valid {
			run.ParamsJSON = json.RawMessage(params.String)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

const busyRetries = 5

// retryOnBusy retries fn on SQLITE_BUSY with a short backoff. Any other
// error fails immediately.
func retryOnBusy(fn func() error) error {
	var err error
	for attempt := 0; attempt < busyRetries; attempt++ {
		err = fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	return err
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
