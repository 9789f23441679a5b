package dto

import "github.com/AdarBahar/MyTrip-sub001/internal/services"

// OptimizeMeta carries request-level optimization settings.
type OptimizeMeta struct {
	Objective      string   `json:"objective"`
	VehicleProfile string   `json:"vehicle_profile"`
	Units          string   `json:"units"`
	Avoid          []string `json:"avoid"`
}

// LocationRequest is one location of a full-optimization request.
// Type is one of START, STOP, END.
type LocationRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Type     string  `json:"type"`
	FixedSeq bool    `json:"fixed_seq"`
	Seq      *int    `json:"seq"`
}

type OptimizeData struct {
	Locations []LocationRequest `json:"locations"`
}

// OptimizeRequest is the full re-optimization request body. Prompt is
// advisory free text consumed by layers above the algorithmic core.
type OptimizeRequest struct {
	Meta   OptimizeMeta `json:"meta"`
	Data   OptimizeData `json:"data"`
	Prompt string       `json:"prompt,omitempty"`
}

// TripDayOptimizeRequest asks to optimize the stored stops of one trip day.
type TripDayOptimizeRequest struct {
	TripID string       `json:"trip_id"`
	DayID  string       `json:"day_id"`
	Meta   OptimizeMeta `json:"meta"`
}

// LocationResponse is one stop of the optimized order, with its incoming
// leg metrics and cumulative ETA.
type LocationResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Type           string  `json:"type"`
	Seq            int     `json:"seq"`
	LegDistanceKm  float64 `json:"leg_distance_km"`
	LegDurationMin float64 `json:"leg_duration_min"`
	CumulativeMin  float64 `json:"cumulative_min"`
}

type OptimizeSummary struct {
	StopCount        int     `json:"stop_count"`
	TotalDistanceKm  float64 `json:"total_distance_km"`
	TotalDurationMin float64 `json:"total_duration_min"`
}

type Diagnostics struct {
	Warnings         []string `json:"warnings"`
	Assumptions      []string `json:"assumptions"`
	ComputationNotes []string `json:"computation_notes"`
}

// APIError is a stable machine-readable error entry.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type OptimizeResponse struct {
	Ordered     []LocationResponse      `json:"ordered"`
	Summary     OptimizeSummary         `json:"summary"`
	Geometry    *services.RouteGeometry `json:"geometry"`
	Diagnostics Diagnostics             `json:"diagnostics"`
	Errors      []APIError              `json:"errors"`
}
