package services

import (
	"context"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/geo"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// RouteGeometry is the renderable form of an ordered stop sequence: a
// GeoJSON LineString plus a bounding box for map-viewport framing.
type RouteGeometry struct {
	Format string         `json:"format"`
	Route  geo.LineString `json:"route"`
	Bounds geo.Bounds     `json:"bounds"`
}

// BuildGeometry asks the provider for real road geometry over the final
// ordering and assembles it with a bounding box. On a provider failure it
// falls back to straight-line segments between consecutive points and
// records a warning; only cancellation fails the request. An empty input
// yields a degenerate zero box plus a warning rather than an error.
func BuildGeometry(
	ctx context.Context,
	provider ports.RoutingProvider,
	points []domain.RoutePoint,
	profile domain.Profile,
	opts domain.RouteOptions,
) (*RouteGeometry, []string, error) {
	var warnings []string

	if len(points) == 0 {
		warnings = append(warnings, "no points to build geometry from, returning empty bounds")
		return &RouteGeometry{Format: "geojson", Route: geo.NewLineString(nil)}, warnings, nil
	}

	if provider == nil {
		warnings = append(warnings, "no routing provider configured, route geometry is straight-line")
		return straightLineGeometry(points), warnings, nil
	}

	res, err := provider.ComputeRoute(ctx, points, profile, opts)
	if err != nil || len(res.Geometry) == 0 {
		// A canceled request must not degrade into a straight-line success.
		if cerr := ctx.Err(); cerr != nil {
			return nil, nil, cerr
		}
		warnings = append(warnings, "road geometry unavailable, route geometry is straight-line")
		return straightLineGeometry(points), warnings, nil
	}

	line := geo.NewLineString(res.Geometry)
	bounds, _ := geo.CoordsBounds(res.Geometry)
	return &RouteGeometry{Format: "geojson", Route: line, Bounds: bounds}, warnings, nil
}

func straightLineGeometry(points []domain.RoutePoint) *RouteGeometry {
	bounds, _ := geo.ComputeBounds(points)
	return &RouteGeometry{
		Format: "geojson",
		Route:  geo.StraightLine(points),
		Bounds: bounds,
	}
}
