package domain

// Profile is the vehicle/travel mode the routing provider costs against.
type Profile string

const (
	ProfileCar        Profile = "car"
	ProfileMotorcycle Profile = "motorcycle"
	ProfileBike       Profile = "bike"
	ProfileWalking    Profile = "walking"
)

// ValidProfile reports whether p is a supported travel profile.
func ValidProfile(p Profile) bool {
	switch p {
	case ProfileCar, ProfileMotorcycle, ProfileBike, ProfileWalking:
		return true
	}
	return false
}

// Objective is the optimization target.
type Objective string

const (
	ObjectiveTime     Objective = "time"
	ObjectiveDistance Objective = "distance"
)

// ValidObjective reports whether o is a supported objective.
func ValidObjective(o Objective) bool {
	return o == ObjectiveTime || o == ObjectiveDistance
}

// RouteOptions carries per-request routing preferences.
// It is validated once at the boundary and passed by value through the core.
type RouteOptions struct {
	AvoidHighways bool
	AvoidTolls    bool
	AvoidFerries  bool
	Units         string
}

// Cost is a directional travel cost between two points.
// Road networks are asymmetric, so cost(i,j) need not equal cost(j,i).
type Cost struct {
	DistanceKm  float64
	DurationMin float64
}

// Value returns the cost component selected by the objective.
func (c Cost) Value(objective Objective) float64 {
	if objective == ObjectiveDistance {
		return c.DistanceKm
	}
	return c.DurationMin
}

// RouteLeg is one segment of a computed route between consecutive points.
type RouteLeg struct {
	DistanceKm   float64
	DurationMin  float64
	Geometry     [][2]float64
	Instructions []string
}

// RouteResult is a provider-computed route over an ordered point sequence.
type RouteResult struct {
	TotalKm  float64
	TotalMin float64
	Geometry [][2]float64
	Legs     []RouteLeg
}

// PositionCost is the insertion cost delta at a single candidate position.
type PositionCost struct {
	Position int
	Cost     float64
}

// InsertionResult is the outcome of a best-insertion computation.
// Position is the index in the existing route (1..n-1) where the new stop
// should be spliced in; Candidates is the full per-position cost table when
// the caller requested it.
type InsertionResult struct {
	Position   int
	CostDelta  float64
	Candidates []PositionCost
}
