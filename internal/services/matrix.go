package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/geo"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// MatrixCache memoizes directional pairwise costs for one optimization
// request. It exists to avoid redundant provider calls within a single pass:
// each (i,j) pair is resolved at most once per request.
//
// Resolution order on a miss: persistent distance cache (if configured),
// provider matrix endpoint (if the provider supports one), pairwise
// ComputeRoute for exactly the needed pair, and finally a haversine estimate.
// Every degradation step records a diagnostics warning. Rate limits and
// non-recoverable provider failures are never absorbed; they propagate to
// the caller.
//
// A MatrixCache is request-scoped and safe for concurrent use within that
// request. It holds no global state and is discarded with the response.
type MatrixCache struct {
	provider ports.RoutingProvider
	persist  ports.DistanceCache
	points   []domain.RoutePoint
	profile  domain.Profile
	opts     domain.RouteOptions

	mu         sync.Mutex
	costs      map[[2]int]domain.Cost
	matrixDown bool
	warnings   []string
	warned     map[string]struct{}

	// Serializes the matrix fill so concurrent gap workers that miss at the
	// same time share one ComputeMatrix call instead of racing their own.
	matrixMu     sync.Mutex
	matrixFilled bool
}

// NewMatrixCache creates a request-scoped cache over a concrete point set.
// provider and persist may both be nil; all costs then degrade to haversine
// estimates with a warning.
func NewMatrixCache(
	provider ports.RoutingProvider,
	persist ports.DistanceCache,
	points []domain.RoutePoint,
	profile domain.Profile,
	opts domain.RouteOptions,
) *MatrixCache {
	return &MatrixCache{
		provider: provider,
		persist:  persist,
		points:   points,
		profile:  profile,
		opts:     opts,
		costs:    make(map[[2]int]domain.Cost, len(points)*2),
		warned:   make(map[string]struct{}),
	}
}

// Cost returns the directional cost from point i to point j.
func (m *MatrixCache) Cost(ctx context.Context, i, j int) (domain.Cost, error) {
	if i < 0 || i >= len(m.points) || j < 0 || j >= len(m.points) {
		return domain.Cost{}, fmt.Errorf("matrix cache: index out of range (%d, %d) for %d points", i, j, len(m.points))
	}
	if i == j {
		return domain.Cost{}, nil
	}

	if c, ok := m.lookup(i, j); ok {
		return c, nil
	}

	if c, ok := m.fromPersistent(ctx, i, j); ok {
		m.store(i, j, c)
		return c, nil
	}

	if c, ok, err := m.fromMatrix(ctx, i, j); err != nil {
		return domain.Cost{}, err
	} else if ok {
		return c, nil
	}

	if c, ok, err := m.fromPairwise(ctx, i, j); err != nil {
		return domain.Cost{}, err
	} else if ok {
		return c, nil
	}

	// Last resort: straight-line estimate with a profile speed table.
	c := geo.EstimateCost(m.points[i], m.points[j], m.profile)
	m.store(i, j, c)
	return c, nil
}

// Warnings returns the degradation warnings recorded so far.
func (m *MatrixCache) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.warnings))
	copy(out, m.warnings)
	return out
}

func (m *MatrixCache) lookup(i, j int) (domain.Cost, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.costs[[2]int{i, j}]
	return c, ok
}

func (m *MatrixCache) store(i, j int, c domain.Cost) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.costs[[2]int{i, j}] = c
}

func (m *MatrixCache) warnOnce(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.warned[msg]; ok {
		return
	}
	m.warned[msg] = struct{}{}
	m.warnings = append(m.warnings, msg)
}

func (m *MatrixCache) fromPersistent(ctx context.Context, i, j int) (domain.Cost, bool) {
	if m.persist == nil {
		return domain.Cost{}, false
	}

	key := ports.PairKey(m.points[i], m.points[j])
	hits, err := m.persist.GetMany(ctx, m.profile, []string{key})
	if err != nil {
		// Cache reads are best-effort; the provider is still available.
		log.Printf("distance cache read failed: %v", err)
		return domain.Cost{}, false
	}

	c, ok := hits[key]
	return c, ok
}

// fromMatrix resolves the pair through the provider's matrix endpoint,
// filling every pair of the request's point set in one call. The fill is
// single-flight: concurrent callers wait for the first ComputeMatrix and
// then read its result from the memo. After a single recoverable matrix
// failure the cache stops attempting matrix mode for the rest of the request.
func (m *MatrixCache) fromMatrix(ctx context.Context, i, j int) (domain.Cost, bool, error) {
	mp, ok := m.provider.(ports.MatrixProvider)
	if !ok {
		return domain.Cost{}, false, nil
	}

	m.matrixMu.Lock()
	defer m.matrixMu.Unlock()

	// A concurrent caller may have completed the fill while we waited.
	if c, ok := m.lookup(i, j); ok {
		return c, true, nil
	}

	m.mu.Lock()
	done := m.matrixDown || m.matrixFilled
	m.mu.Unlock()
	if done {
		return domain.Cost{}, false, nil
	}

	matrix, err := mp.ComputeMatrix(ctx, m.points, m.profile, m.opts)
	if err != nil {
		if fatalProviderError(err) {
			return domain.Cost{}, false, err
		}
		m.mu.Lock()
		m.matrixDown = true
		m.mu.Unlock()
		m.warnOnce("matrix request failed, falling back to pairwise route calls")
		return domain.Cost{}, false, nil
	}

	if len(matrix) != len(m.points) {
		m.mu.Lock()
		m.matrixDown = true
		m.mu.Unlock()
		m.warnOnce("matrix response had unexpected dimensions, falling back to pairwise route calls")
		return domain.Cost{}, false, nil
	}

	m.mu.Lock()
	m.matrixFilled = true
	for a, row := range matrix {
		if len(row) != len(m.points) {
			continue
		}
		for b, c := range row {
			if a == b {
				continue
			}
			m.costs[[2]int{a, b}] = c
		}
	}
	c, ok := m.costs[[2]int{i, j}]
	m.mu.Unlock()

	if !ok {
		return domain.Cost{}, false, nil
	}
	return c, true, nil
}

// fromPairwise issues one ComputeRoute call for exactly the needed pair.
func (m *MatrixCache) fromPairwise(ctx context.Context, i, j int) (domain.Cost, bool, error) {
	if m.provider == nil {
		m.warnOnce("no routing provider configured, using haversine estimates")
		return domain.Cost{}, false, nil
	}

	pair := []domain.RoutePoint{m.points[i], m.points[j]}
	res, err := m.provider.ComputeRoute(ctx, pair, m.profile, m.opts)
	if err != nil {
		if fatalProviderError(err) {
			return domain.Cost{}, false, err
		}
		m.warnOnce("routing provider unavailable, using haversine estimates")
		return domain.Cost{}, false, nil
	}

	c := domain.Cost{DistanceKm: res.TotalKm, DurationMin: res.TotalMin}
	m.store(i, j, c)
	m.writeBack(ctx, i, j, c)
	return c, true, nil
}

func (m *MatrixCache) writeBack(ctx context.Context, i, j int, c domain.Cost) {
	if m.persist == nil {
		return
	}

	key := ports.PairKey(m.points[i], m.points[j])
	if err := m.persist.PutMany(ctx, m.profile, map[string]domain.Cost{key: c}); err != nil {
		log.Printf("distance cache write failed: %v", err)
	}
}

// fatalProviderError reports whether err must propagate instead of
// triggering a degradation step. Rate limits are never retried internally,
// non-recoverable provider failures (auth) never degrade, and cancellation
// always wins.
func fatalProviderError(err error) bool {
	var rle *domain.RateLimitError
	if errors.As(err, &rle) {
		return true
	}

	// Trust the adapter's classification when present: a recoverable
	// ProviderError may wrap a per-call deadline and must still degrade.
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return !pe.Recoverable
	}

	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
