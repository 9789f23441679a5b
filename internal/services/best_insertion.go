package services

import (
	"context"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// InsertionRequest describes a single-stop insertion into an existing route.
// The route is already ordered and includes its start and end points.
type InsertionRequest struct {
	Route             []domain.RoutePoint
	NewStop           domain.RoutePoint
	Profile           domain.Profile
	Objective         domain.Objective
	Options           domain.RouteOptions
	IncludeCandidates bool
}

// InsertionOutcome is the result of a best-insertion computation: the chosen
// position with its cost delta, the route with the stop spliced in, and any
// degradation warnings collected while resolving costs.
type InsertionOutcome struct {
	Result   domain.InsertionResult
	Route    []domain.RoutePoint
	Warnings []string
}

// BestInsertion finds the cheapest position to splice one new stop into an
// existing ordered route without disturbing the order of existing stops.
//
// For every adjacent pair (i, i+1) it evaluates
//
//	cost(i, new) + cost(new, i+1) - cost(i, i+1)
//
// under the request objective and picks the minimum. The start can never
// move and the end can never move, so legal positions are strictly between
// them. Ties break toward the lowest position index, which makes the result
// deterministic. Each candidate needs at most three cost lookups, all served
// by a request-scoped MatrixCache, so the whole pass is O(n) lookups.
func BestInsertion(
	ctx context.Context,
	req InsertionRequest,
	provider ports.RoutingProvider,
	persist ports.DistanceCache,
) (*InsertionOutcome, error) {
	if err := validateInsertion(req); err != nil {
		return nil, err
	}

	// The new stop sits at index n of the combined point set.
	points := make([]domain.RoutePoint, 0, len(req.Route)+1)
	points = append(points, req.Route...)
	points = append(points, req.NewStop)
	newIdx := len(req.Route)

	cache := NewMatrixCache(provider, persist, points, req.Profile, req.Options)

	bestPos := -1
	bestCost := 0.0
	var candidates []domain.PositionCost
	if req.IncludeCandidates {
		candidates = make([]domain.PositionCost, 0, len(req.Route)-1)
	}

	for i := 0; i < len(req.Route)-1; i++ {
		in, err := cache.Cost(ctx, i, newIdx)
		if err != nil {
			return nil, err
		}
		out, err := cache.Cost(ctx, newIdx, i+1)
		if err != nil {
			return nil, err
		}
		base, err := cache.Cost(ctx, i, i+1)
		if err != nil {
			return nil, err
		}

		delta := in.Value(req.Objective) + out.Value(req.Objective) - base.Value(req.Objective)
		if req.IncludeCandidates {
			candidates = append(candidates, domain.PositionCost{Position: i + 1, Cost: delta})
		}

		// Strict less keeps the first occurrence on ties.
		if bestPos == -1 || delta < bestCost {
			bestPos = i + 1
			bestCost = delta
		}
	}

	merged := make([]domain.RoutePoint, 0, len(req.Route)+1)
	merged = append(merged, req.Route[:bestPos]...)
	merged = append(merged, req.NewStop)
	merged = append(merged, req.Route[bestPos:]...)

	return &InsertionOutcome{
		Result: domain.InsertionResult{
			Position:   bestPos,
			CostDelta:  bestCost,
			Candidates: candidates,
		},
		Route:    merged,
		Warnings: cache.Warnings(),
	}, nil
}

func validateInsertion(req InsertionRequest) error {
	if len(req.Route) < 2 {
		return domain.NewValidationError(domain.CodeRouteValidation,
			"current route must contain at least a start and an end, got %d points", len(req.Route))
	}
	if !domain.ValidProfile(req.Profile) {
		return domain.NewValidationError(domain.CodeInvalidProfile, "unknown profile %q", req.Profile)
	}
	if !domain.ValidObjective(req.Objective) {
		return domain.NewValidationError(domain.CodeInvalidObjective,
			"optimize_for must be %q or %q, got %q", domain.ObjectiveTime, domain.ObjectiveDistance, req.Objective)
	}
	for i, p := range req.Route {
		if !p.ValidCoords() {
			return domain.NewValidationError(domain.CodeInvalidCoordinates,
				"route point %d has out-of-range coordinates (%f, %f)", i, p.Lat, p.Lon)
		}
	}
	if !req.NewStop.ValidCoords() {
		return domain.NewValidationError(domain.CodeInvalidCoordinates,
			"new stop has out-of-range coordinates (%f, %f)", req.NewStop.Lat, req.NewStop.Lon)
	}
	return nil
}
