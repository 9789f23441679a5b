package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/AdarBahar/MyTrip-sub001/internal/api/dto"
	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
	"github.com/AdarBahar/MyTrip-sub001/internal/services"
)

// RouteHandler exposes the optimization endpoints: full re-optimization and
// single-stop best insertion.
type RouteHandler struct {
	Provider ports.RoutingProvider
	Cache    ports.DistanceCache
}

// Optimize runs a full re-optimization over the request's location set.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	var req dto.OptimizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	svcReq, err := toOptimizeRequest(req.Meta, req.Data.Locations)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	seq := &services.Sequencer{Provider: h.Provider, Cache: h.Cache}
	result, err := seq.Optimize(r.Context(), svcReq)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toOptimizeResponse(result))
}

// InsertStop computes the cheapest insertion position for one new stop.
func (h *RouteHandler) InsertStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	var req dto.InsertionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	route := make([]domain.RoutePoint, 0, len(req.CurrentRoute))
	for _, p := range req.CurrentRoute {
		route = append(route, domain.RoutePoint{Lat: p.Lat, Lon: p.Lon, Name: p.Name})
	}

	outcome, err := services.BestInsertion(r.Context(), services.InsertionRequest{
		Route:             route,
		NewStop:           domain.RoutePoint{Lat: req.NewStop.Lat, Lon: req.NewStop.Lon, Name: req.NewStop.Name},
		Profile:           domain.Profile(req.Profile),
		Objective:         domain.Objective(req.OptimizeFor),
		Options:           toRouteOptions(req.Options),
		IncludeCandidates: req.IncludeCandidates,
	}, h.Provider, h.Cache)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	res := dto.InsertionResponse{
		OptimizedRoute: make([]dto.Point, 0, len(outcome.Route)),
		InsertionMetrics: dto.InsertionMetrics{
			InsertionPosition: outcome.Result.Position,
			InsertionCost:     outcome.Result.CostDelta,
		},
		Warnings: outcome.Warnings,
	}
	for _, p := range outcome.Route {
		res.OptimizedRoute = append(res.OptimizedRoute, dto.Point{Lat: p.Lat, Lon: p.Lon, Name: p.Name})
	}
	for _, c := range outcome.Result.Candidates {
		res.InsertionMetrics.Candidates = append(res.InsertionMetrics.Candidates,
			dto.PositionCost{Position: c.Position, Cost: c.Cost})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// decodeBody decodes a single strict JSON object, rejecting trailing data
// and unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "body must contain only one JSON object")
		return false
	}
	return true
}

func toRouteOptions(o dto.Options) domain.RouteOptions {
	return domain.RouteOptions{
		AvoidHighways: o.AvoidHighways,
		AvoidTolls:    o.AvoidTolls,
		AvoidFerries:  o.AvoidFerries,
	}
}

func toOptimizeRequest(meta dto.OptimizeMeta, locations []dto.LocationRequest) (services.OptimizeRequest, error) {
	opts := domain.RouteOptions{Units: meta.Units}
	for _, a := range meta.Avoid {
		switch strings.ToLower(a) {
		case "highways":
			opts.AvoidHighways = true
		case "tolls", "tollways":
			opts.AvoidTolls = true
		case "ferries":
			opts.AvoidFerries = true
		}
	}

	locs := make([]domain.Location, 0, len(locations))
	for _, l := range locations {
		loc := domain.Location{
			ID:       l.ID,
			Point:    domain.RoutePoint{Lat: l.Lat, Lon: l.Lon, Name: l.Name},
			FixedSeq: l.FixedSeq,
			Seq:      l.Seq,
		}
		switch strings.ToUpper(l.Type) {
		case "START":
			loc.Kind = domain.KindStart
		case "END":
			loc.Kind = domain.KindEnd
		case "STOP":
			loc.Kind = domain.KindStop
		default:
			return services.OptimizeRequest{}, domain.NewValidationError(
				domain.CodeRouteValidation, "location %q has unknown type %q", l.ID, l.Type)
		}
		locs = append(locs, loc)
	}

	return services.OptimizeRequest{
		Locations: locs,
		Profile:   domain.Profile(strings.ToLower(meta.VehicleProfile)),
		Objective: domain.Objective(strings.ToLower(meta.Objective)),
		Options:   opts,
	}, nil
}

func toOptimizeResponse(result *services.OptimizeResult) dto.OptimizeResponse {
	res := dto.OptimizeResponse{
		Ordered: make([]dto.LocationResponse, 0, len(result.Ordered)),
		Summary: dto.OptimizeSummary{
			StopCount:        result.Summary.StopCount,
			TotalDistanceKm:  result.Summary.TotalDistanceKm,
			TotalDurationMin: result.Summary.TotalDurationMin,
		},
		Geometry: result.Geometry,
		Diagnostics: dto.Diagnostics{
			Warnings:         emptyIfNil(result.Diagnostics.Warnings),
			Assumptions:      emptyIfNil(result.Diagnostics.Assumptions),
			ComputationNotes: emptyIfNil(result.Diagnostics.ComputationNotes),
		},
		Errors: []dto.APIError{},
	}

	for seq, stop := range result.Ordered {
		res.Ordered = append(res.Ordered, dto.LocationResponse{
			ID:             stop.Location.ID,
			Name:           stop.Location.Point.Name,
			Lat:            stop.Location.Point.Lat,
			Lon:            stop.Location.Point.Lon,
			Type:           strings.ToUpper(string(stop.Location.Kind)),
			Seq:            seq + 1,
			LegDistanceKm:  stop.LegDistanceKm,
			LegDurationMin: stop.LegDurationMin,
			CumulativeMin:  stop.CumulativeMin,
		})
	}

	return res
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
