package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// RedisDistanceCache is a Redis-backed persistent cache of directional
// pairwise travel costs. Entries expire so stale road costs age out.
type RedisDistanceCache struct {
	Client *redis.Client
	TTL    time.Duration
}

const defaultCacheTTL = 30 * 24 * time.Hour

func NewRedisDistanceCache(client *redis.Client) *RedisDistanceCache {
	return &RedisDistanceCache{Client: client, TTL: defaultCacheTTL}
}

func redisKey(profile domain.Profile, pairKey string) string {
	return fmt.Sprintf("dist:%s:%s", profile, pairKey)
}

// Fetch cached costs for the given pair keys in one MGET.
func (r *RedisDistanceCache) GetMany(
	ctx context.Context,
	profile domain.Profile,
	keys []string,
) (map[string]domain.Cost, error) {
	if r.Client == nil {
		return nil, errors.New("distance cache: redis client is nil")
	}

	uniq := dedupeKeys(keys)
	if len(uniq) == 0 {
		return map[string]domain.Cost{}, nil
	}

	full := make([]string, len(uniq))
	for i, k := range uniq {
		full[i] = redisKey(profile, k)
	}

	values, err := r.Client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("get distance cache: redis mget: %w", err)
	}

	out := make(map[string]domain.Cost, len(uniq))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		c, err := decodeCost(s)
		if err != nil {
			// Malformed entries are treated as misses.
			continue
		}
		out[uniq[i]] = c
	}

	return out, nil
}

// Store many cached costs for one profile in a single pipeline.
func (r *RedisDistanceCache) PutMany(
	ctx context.Context,
	profile domain.Profile,
	entries map[string]domain.Cost,
) error {
	if r.Client == nil {
		return errors.New("distance cache: redis client is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for k, c := range entries {
		if strings.TrimSpace(k) == "" {
			return errors.New("insert distance cache: empty pair key")
		}
		pipe.Set(ctx, redisKey(profile, k), encodeCost(c), r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert distance cache: redis pipeline: %w", err)
	}
	return nil
}

func encodeCost(c domain.Cost) string {
	return fmt.Sprintf("%g|%g", c.DistanceKm, c.DurationMin)
}

func decodeCost(s string) (domain.Cost, error) {
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 {
		return domain.Cost{}, fmt.Errorf("decode cost: malformed entry %q", s)
	}

	km, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return domain.Cost{}, fmt.Errorf("decode cost: distance: %w", err)
	}
	min, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return domain.Cost{}, fmt.Errorf("decode cost: duration: %w", err)
	}

	return domain.Cost{DistanceKm: km, DurationMin: min}, nil
}
