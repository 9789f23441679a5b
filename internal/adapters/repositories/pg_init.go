package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres schema for trip stops and the distance cache.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTripStopsQuery := `
	CREATE TABLE IF NOT EXISTS trip_stops (
		trip_id TEXT NOT NULL,
		day_id TEXT NOT NULL,
		stop_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		kind TEXT NOT NULL,
		fixed_seq BOOLEAN NOT NULL DEFAULT FALSE,
		seq INTEGER,
		position INTEGER NOT NULL,
		PRIMARY KEY (trip_id, day_id, stop_id)
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        profile TEXT NOT NULL,
        pair_key TEXT NOT NULL,
        distance_km DOUBLE PRECISION NOT NULL,
        duration_min DOUBLE PRECISION NOT NULL,
        PRIMARY KEY (profile, pair_key)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_trip_stops_day
    ON trip_stops(trip_id, day_id, position);
	`

	statements := []string{
		createTripStopsQuery,
		createDistanceCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type StopSeed struct {
	TripID   string  `json:"trip_id"`
	DayID    string  `json:"day_id"`
	StopID   string  `json:"stop_id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Kind     string  `json:"kind"`
	FixedSeq bool    `json:"fixed_seq"`
	Seq      *int    `json:"seq"`
	Position int     `json:"position"`
}

// Populate the database with trip stop data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed stops: read %q: %w", jsonPath, err)
	}

	var data []StopSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed stops: parse json: %w", err)
	}

	for i, item := range data {
		if strings.TrimSpace(item.StopID) == "" {
			return fmt.Errorf("seed stops: item at index %d: stop_id cannot be empty", i+1)
		}
		if strings.TrimSpace(item.TripID) == "" || strings.TrimSpace(item.DayID) == "" {
			return fmt.Errorf("seed stops: item at index %d: trip_id and day_id cannot be empty", i+1)
		}
		switch item.Kind {
		case "start", "stop", "end":
		default:
			return fmt.Errorf("seed stops: item at index %d: unknown kind %q", i+1, item.Kind)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed stops: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO trip_stops (
		trip_id, day_id, stop_id, name, lat, lon, kind, fixed_seq, seq, position
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (trip_id, day_id, stop_id) DO UPDATE
	SET name = EXCLUDED.name,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		kind = EXCLUDED.kind,
		fixed_seq = EXCLUDED.fixed_seq,
		seq = EXCLUDED.seq,
		position = EXCLUDED.position;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed stops: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range data {
		_, err := stmt.Exec(
			item.TripID, item.DayID, item.StopID, item.Name,
			item.Lat, item.Lon, item.Kind, item.FixedSeq, item.Seq, item.Position,
		)
		if err != nil {
			return fmt.Errorf("seed stops: insert stop %q: %w", item.StopID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed stops: commit tx: %w", err)
	}

	return nil
}
