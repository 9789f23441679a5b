package dto

// Point is a bare coordinate pair with an optional display name.
type Point struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

// Options carries per-request routing preferences.
type Options struct {
	AvoidHighways bool `json:"avoid_highways"`
	AvoidTolls    bool `json:"avoid_tolls"`
	AvoidFerries  bool `json:"avoid_ferries"`
}

// InsertionRequest asks for the cheapest position to splice one new stop
// into an existing ordered route.
type InsertionRequest struct {
	CurrentRoute      []Point `json:"current_route"`
	NewStop           Point   `json:"new_stop"`
	Profile           string  `json:"profile"`
	OptimizeFor       string  `json:"optimize_for"`
	Options           Options `json:"options"`
	IncludeCandidates bool    `json:"include_candidates"`
}

// PositionCost is one entry of the per-position cost table, for UI preview.
type PositionCost struct {
	Position int     `json:"position"`
	Cost     float64 `json:"cost"`
}

type InsertionMetrics struct {
	InsertionPosition int            `json:"insertion_position"`
	InsertionCost     float64        `json:"insertion_cost"`
	Candidates        []PositionCost `json:"candidates,omitempty"`
}

type InsertionResponse struct {
	OptimizedRoute   []Point          `json:"optimized_route"`
	InsertionMetrics InsertionMetrics `json:"insertion_metrics"`
	Warnings         []string         `json:"warnings,omitempty"`
}
