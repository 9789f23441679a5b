package domain

// RoutePoint is an immutable geographic point on a route.
// Identity is positional within a route, not a database key.
type RoutePoint struct {
	Lat  float64
	Lon  float64
	Name string
}

// Return coordinates as [lon, lat] for external API compatibility.
func (p RoutePoint) CoordsToList() []float64 { return []float64{p.Lon, p.Lat} }

// ValidCoords reports whether the point lies within real-world ranges.
func (p RoutePoint) ValidCoords() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}
