package ports

import (
	"context"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// RoutingProvider is the boundary to a remote routing service.
//
// Implementations perform network I/O, may block for seconds, and must honor
// context deadlines. Failures are reported as *domain.ProviderError or
// *domain.RateLimitError; retry and backoff policy belongs to the caller.
type RoutingProvider interface {
	// ComputeRoute returns distance, duration, and geometry for visiting
	// points in the given order.
	ComputeRoute(ctx context.Context, points []domain.RoutePoint, profile domain.Profile, opts domain.RouteOptions) (*domain.RouteResult, error)
}

// MatrixProvider is an optional extension of RoutingProvider for services
// with a native pairwise matrix endpoint. Callers detect the capability with
// a type assertion and fall back to pairwise ComputeRoute calls otherwise.
type MatrixProvider interface {
	RoutingProvider
	// ComputeMatrix returns the directional cost from every point to every
	// other point. The result is indexed [from][to] in input order.
	ComputeMatrix(ctx context.Context, points []domain.RoutePoint, profile domain.Profile, opts domain.RouteOptions) ([][]domain.Cost, error)
}
