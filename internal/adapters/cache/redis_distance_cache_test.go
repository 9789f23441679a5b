package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

func newTestRedisCache(t *testing.T) (*RedisDistanceCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisDistanceCache(client), mr
}

func TestRedisDistanceCacheRoundTrip(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	a := domain.RoutePoint{Lat: 32.08, Lon: 34.78}
	b := domain.RoutePoint{Lat: 32.11, Lon: 34.82}
	key := ports.PairKey(a, b)

	err := c.PutMany(ctx, domain.ProfileCar, map[string]domain.Cost{
		key: {DistanceKm: 5.2, DurationMin: 9.5},
	})
	require.NoError(t, err)

	hits, err := c.GetMany(ctx, domain.ProfileCar, []string{key})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 5.2, hits[key].DistanceKm)
	assert.Equal(t, 9.5, hits[key].DurationMin)
}

func TestRedisDistanceCacheProfileIsolation(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	key := "0.00000,0.00000|1.00000,1.00000"
	require.NoError(t, c.PutMany(ctx, domain.ProfileCar, map[string]domain.Cost{
		key: {DistanceKm: 10},
	}))

	// A walking lookup must not see car costs.
	hits, err := c.GetMany(ctx, domain.ProfileWalking, []string{key})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRedisDistanceCacheMissingKeys(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	known := "1.00000,1.00000|2.00000,2.00000"
	require.NoError(t, c.PutMany(ctx, domain.ProfileCar, map[string]domain.Cost{
		known: {DistanceKm: 3, DurationMin: 4},
	}))

	hits, err := c.GetMany(ctx, domain.ProfileCar, []string{known, "5.00000,5.00000|6.00000,6.00000"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	_, ok := hits[known]
	assert.True(t, ok)
}

func TestRedisDistanceCacheEmptyAndDuplicateKeys(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	hits, err := c.GetMany(ctx, domain.ProfileCar, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)

	key := "1.00000,1.00000|2.00000,2.00000"
	require.NoError(t, c.PutMany(ctx, domain.ProfileCar, map[string]domain.Cost{
		key: {DistanceKm: 1, DurationMin: 1},
	}))

	hits, err = c.GetMany(ctx, domain.ProfileCar, []string{key, key, key})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestRedisDistanceCacheMalformedEntryIsMiss(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	key := "1.00000,1.00000|2.00000,2.00000"
	mr.Set(redisKey(domain.ProfileCar, key), "not-a-cost")

	hits, err := c.GetMany(ctx, domain.ProfileCar, []string{key})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRedisDistanceCacheEntriesExpire(t *testing.T) {
	c, mr := newTestRedisCache(t)
	c.TTL = time.Minute
	ctx := context.Background()

	key := "1.00000,1.00000|2.00000,2.00000"
	require.NoError(t, c.PutMany(ctx, domain.ProfileCar, map[string]domain.Cost{
		key: {DistanceKm: 1, DurationMin: 1},
	}))

	mr.FastForward(2 * time.Minute)

	hits, err := c.GetMany(ctx, domain.ProfileCar, []string{key})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRedisDistanceCacheEmptyPairKeyRejected(t *testing.T) {
	c, _ := newTestRedisCache(t)

	err := c.PutMany(context.Background(), domain.ProfileCar, map[string]domain.Cost{
		"  ": {DistanceKm: 1},
	})
	require.Error(t, err)
}

func TestDecodeCost(t *testing.T) {
	c, err := decodeCost("12.5|30")
	require.NoError(t, err)
	assert.Equal(t, domain.Cost{DistanceKm: 12.5, DurationMin: 30}, c)

	_, err = decodeCost("12.5")
	require.Error(t, err)

	_, err = decodeCost("abc|def")
	require.Error(t, err)
}
