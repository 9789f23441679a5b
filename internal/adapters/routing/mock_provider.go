package routing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/geo"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// MockPair is one directional cost entry for MockProvider.
type MockPair struct {
	From, To domain.RoutePoint
	Cost     domain.Cost
}

// MockProvider is an in-memory RoutingProvider for tests. Costs come from
// the configured pair table; with Haversine set, missing pairs fall back to
// straight-line estimates so geometric scenarios need no fixture table.
// MockProvider deliberately does not implement MatrixProvider; use
// MockMatrixProvider for matrix-capable tests.
type MockProvider struct {
	Haversine bool
	RouteErr  error
	Geometry  [][2]float64

	mu         sync.Mutex
	pairs      map[string]domain.Cost
	routeCalls int
}

func NewMockProvider(pairs []MockPair) *MockProvider {
	m := make(map[string]domain.Cost, len(pairs))
	for _, p := range pairs {
		m[ports.PairKey(p.From, p.To)] = p.Cost
	}
	return &MockProvider{pairs: m}
}

func (p *MockProvider) ComputeRoute(
	ctx context.Context,
	points []domain.RoutePoint,
	profile domain.Profile,
	opts domain.RouteOptions,
) (*domain.RouteResult, error) {
	p.mu.Lock()
	p.routeCalls++
	p.mu.Unlock()

	if p.RouteErr != nil {
		return nil, p.RouteErr
	}

	res := &domain.RouteResult{Geometry: p.Geometry}
	for i := 0; i < len(points)-1; i++ {
		c, err := p.cost(points[i], points[i+1], profile)
		if err != nil {
			return nil, err
		}
		res.TotalKm += c.DistanceKm
		res.TotalMin += c.DurationMin
		res.Legs = append(res.Legs, domain.RouteLeg{DistanceKm: c.DistanceKm, DurationMin: c.DurationMin})
	}
	return res, nil
}

// RouteCalls reports how many ComputeRoute calls the provider served.
func (p *MockProvider) RouteCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.routeCalls
}

func (p *MockProvider) cost(from, to domain.RoutePoint, profile domain.Profile) (domain.Cost, error) {
	p.mu.Lock()
	c, ok := p.pairs[ports.PairKey(from, to)]
	p.mu.Unlock()

	if ok {
		return c, nil
	}
	if p.Haversine {
		return geo.EstimateCost(from, to, profile), nil
	}
	return domain.Cost{}, fmt.Errorf("missing pair (%f,%f) -> (%f,%f)", from.Lat, from.Lon, to.Lat, to.Lon)
}

// MockMatrixProvider extends MockProvider with the matrix capability.
// MatrixDelay simulates provider latency so tests can exercise concurrent
// callers hitting the matrix endpoint at once.
type MockMatrixProvider struct {
	MockProvider
	MatrixErr   error
	MatrixDelay time.Duration

	matrixCalls int
}

func NewMockMatrixProvider(pairs []MockPair) *MockMatrixProvider {
	p := &MockMatrixProvider{}
	p.pairs = make(map[string]domain.Cost, len(pairs))
	for _, pair := range pairs {
		p.pairs[ports.PairKey(pair.From, pair.To)] = pair.Cost
	}
	return p
}

func (p *MockMatrixProvider) ComputeMatrix(
	ctx context.Context,
	points []domain.RoutePoint,
	profile domain.Profile,
	opts domain.RouteOptions,
) ([][]domain.Cost, error) {
	p.mu.Lock()
	p.matrixCalls++
	p.mu.Unlock()

	if p.MatrixDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.MatrixDelay):
		}
	}

	if p.MatrixErr != nil {
		return nil, p.MatrixErr
	}

	out := make([][]domain.Cost, len(points))
	for i := range points {
		out[i] = make([]domain.Cost, len(points))
		for j := range points {
			if i == j {
				continue
			}
			c, err := p.cost(points[i], points[j], profile)
			if err != nil {
				return nil, err
			}
			out[i][j] = c
		}
	}
	return out, nil
}

// MatrixCalls reports how many ComputeMatrix calls the provider served.
func (p *MockMatrixProvider) MatrixCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.matrixCalls
}
