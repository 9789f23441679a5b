package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// SQLite-backed cache of directional pairwise travel costs, for
// single-binary local runs without Postgres or Redis.
type SqliteDistanceCache struct {
	DB *sql.DB
}

func NewSqliteDistanceCache(db *sql.DB) *SqliteDistanceCache {
	return &SqliteDistanceCache{DB: db}
}

// Fetch cached costs for the given pair keys.
func (s *SqliteDistanceCache) GetMany(
	ctx context.Context,
	profile domain.Profile,
	keys []string,
) (map[string]domain.Cost, error) {
	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	uniq := dedupeKeys(keys)
	if len(uniq) == 0 {
		return map[string]domain.Cost{}, nil
	}

	ph := make([]string, len(uniq))
	args := make([]any, 0, 1+len(uniq))
	args = append(args, string(profile))
	for i, k := range uniq {
		ph[i] = "?"
		args = append(args, k)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        pair_key,
        distance_km,
        duration_min
    FROM distance_cache
    WHERE profile = ?
        AND pair_key IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
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
func (s *SqliteDistanceCache) PutMany(
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
	INSERT OR REPLACE INTO distance_cache (
        profile,
        pair_key,
        distance_km,
        duration_min
    )
    VALUES (?, ?, ?, ?)
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

// InitSqliteSchema creates the distance_cache table for the SQLite variant.
func InitSqliteSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init sqlite cache schema: db is nil")
	}

	q := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        profile TEXT NOT NULL,
        pair_key TEXT NOT NULL,
        distance_km REAL NOT NULL,
        duration_min REAL NOT NULL,
        PRIMARY KEY (profile, pair_key)
    );
	`
	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("init sqlite cache schema: %w", err)
	}
	return nil
}
