package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/obs"
)

// PGDistanceCache is a Postgres-backed persistent cache of directional
// pairwise travel costs, keyed by (profile, pair key).
type PGDistanceCache struct {
	DB *sql.DB
}

func NewPGDistanceCache(db *sql.DB) *PGDistanceCache {
	return &PGDistanceCache{DB: db}
}

// Fetch cached costs for the given pair keys.
func (s *PGDistanceCache) GetMany(
	ctx context.Context,
	profile domain.Profile,
	keys []string,
) (_ map[string]domain.Cost, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	uniq := dedupeKeys(keys)
	if len(uniq) == 0 {
		return map[string]domain.Cost{}, nil
	}

	q := `
	SELECT pair_key, distance_km, duration_min
    FROM distance_cache
    WHERE profile = $1
        AND pair_key = ANY($2::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, string(profile), uniq)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Cost, len(uniq))
	for rows.Next() {
		var key string
		var km, min float64
		if err := rows.Scan(&key, &km, &min); err != nil {
			return nil, fmt.Errorf("get distance cache: scan rows: %w", err)
		}
		out[key] = domain.Cost{DistanceKm: km, DurationMin: min}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many cached costs for one profile.
func (s *PGDistanceCache) PutMany(
	ctx context.Context,
	profile domain.Profile,
	entries map[string]domain.Cost,
) error {
	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO distance_cache (profile, pair_key, distance_km, duration_min)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (profile, pair_key) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		duration_min = EXCLUDED.duration_min;
	`)
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for key, c := range entries {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("insert distance cache: empty pair key")
		}

		if _, err := stmt.ExecContext(ctx, string(profile), key, c.DistanceKm, c.DurationMin); err != nil {
			return fmt.Errorf("insert distance cache key=%q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}

	return nil
}

func dedupeKeys(keys []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}
