// Package geo provides great-circle distance, bounding box, and travel time
// estimation helpers. The optimization core uses them as a fallback when the
// routing provider is unavailable.
package geo

import (
	"math"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

const earthRadiusKm = 6371.0

// Per-profile average speeds used to estimate travel time from straight-line
// distance when no provider data is available.
var profileSpeedsKmh = map[domain.Profile]float64{
	domain.ProfileCar:        60,
	domain.ProfileMotorcycle: 55,
	domain.ProfileBike:       16,
	domain.ProfileWalking:    5,
}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(a, b domain.RoutePoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// EstimateTravelTimeMin converts a distance to an approximate travel time
// for the given profile. Unknown profiles fall back to car speed.
func EstimateTravelTimeMin(distanceKm float64, profile domain.Profile) float64 {
	speed, ok := profileSpeedsKmh[profile]
	if !ok {
		speed = profileSpeedsKmh[domain.ProfileCar]
	}
	return distanceKm / speed * 60
}

// EstimateCost returns a haversine-derived cost between two points.
func EstimateCost(a, b domain.RoutePoint, profile domain.Profile) domain.Cost {
	km := HaversineKm(a, b)
	return domain.Cost{
		DistanceKm:  km,
		DurationMin: EstimateTravelTimeMin(km, profile),
	}
}

// Bounds is a map-viewport bounding box over a set of coordinates.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// ComputeBounds returns the min/max lat/lon over all points. An empty input
// yields a degenerate zero box and ok=false so callers can attach a warning
// instead of failing.
func ComputeBounds(points []domain.RoutePoint) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}

	b := Bounds{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLon: points[0].Lon, MaxLon: points[0].Lon,
	}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
	}
	return b, true
}

// CoordsBounds computes Bounds over [lon, lat] coordinate pairs.
func CoordsBounds(coords [][2]float64) (Bounds, bool) {
	if len(coords) == 0 {
		return Bounds{}, false
	}

	b := Bounds{
		MinLat: coords[0][1], MaxLat: coords[0][1],
		MinLon: coords[0][0], MaxLon: coords[0][0],
	}
	for _, c := range coords[1:] {
		b.MinLat = math.Min(b.MinLat, c[1])
		b.MaxLat = math.Max(b.MaxLat, c[1])
		b.MinLon = math.Min(b.MinLon, c[0])
		b.MaxLon = math.Max(b.MaxLon, c[0])
	}
	return b, true
}
