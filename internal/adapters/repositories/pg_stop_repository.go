package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// Postgres-backed implementation of the StopRepository port.
type PGStopRepository struct{ DB *sql.DB }

func NewPGStopRepository(db *sql.DB) *PGStopRepository {
	return &PGStopRepository{DB: db}
}

// ListDayStops returns the stored locations of one trip day in stored
// sequence order, start first and end last.
func (s *PGStopRepository) ListDayStops(ctx context.Context, tripID, dayID string) ([]domain.Location, error) {
	if s.DB == nil {
		return nil, errors.New("pg stop repository: DB is nil")
	}

	query := `
	SELECT
		stop_id,
		name,
		lat,
		lon,
		kind,
		fixed_seq,
		seq
	FROM trip_stops
	WHERE trip_id = $1 AND day_id = $2
	ORDER BY position;
	`
	rows, err := s.DB.QueryContext(ctx, query, tripID, dayID)
	if err != nil {
		return nil, fmt.Errorf("list day stops: query trip_stops table: %w", err)
	}
	defer rows.Close()

	locations := make([]domain.Location, 0, 16)
	for rows.Next() {
		var (
			loc  domain.Location
			kind string
			seq  sql.NullInt64
		)
		err := rows.Scan(&loc.ID, &loc.Point.Name, &loc.Point.Lat, &loc.Point.Lon, &kind, &loc.FixedSeq, &seq)
		if err != nil {
			return nil, fmt.Errorf("list day stops: scan row: %w", err)
		}

		loc.Kind = domain.Kind(kind)
		if seq.Valid {
			v := int(seq.Int64)
			loc.Seq = &v
		}
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list day stops: row iteration: %w", err)
	}

	return locations, nil
}
