package ports

import (
	"context"
	"fmt"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// DistanceCache is a persistent cross-request cache of directional pairwise
// travel costs. Keys are produced by PairKey; values are provider results.
// Implementations must be safe for concurrent use. A nil cache disables
// persistence.
type DistanceCache interface {
	// GetMany returns cached costs for the given keys. Missing keys are
	// simply absent from the result.
	GetMany(ctx context.Context, profile domain.Profile, keys []string) (map[string]domain.Cost, error)
	// PutMany stores fresh costs. Writes are best-effort; callers log and
	// continue on failure.
	PutMany(ctx context.Context, profile domain.Profile, entries map[string]domain.Cost) error
}

// PairKey builds a stable cache key for a directional point pair.
// Coordinates are rounded to 5 decimal places (~1m) so that equal points
// produce equal keys regardless of float noise.
func PairKey(from, to domain.RoutePoint) string {
	return fmt.Sprintf("%.5f,%.5f|%.5f,%.5f", from.Lat, from.Lon, to.Lat, to.Lon)
}
