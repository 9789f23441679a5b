package geo

import "github.com/AdarBahar/MyTrip-sub001/internal/domain"

// LineString is a GeoJSON LineString geometry. Coordinates are [lon, lat]
// pairs, following the GeoJSON axis order.
type LineString struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// NewLineString wraps coordinate pairs in a GeoJSON LineString.
func NewLineString(coords [][2]float64) LineString {
	if coords == nil {
		coords = [][2]float64{}
	}
	return LineString{Type: "LineString", Coordinates: coords}
}

// StraightLine builds a LineString connecting points directly, used when no
// road geometry is available.
func StraightLine(points []domain.RoutePoint) LineString {
	coords := make([][2]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, [2]float64{p.Lon, p.Lat})
	}
	return NewLineString(coords)
}
