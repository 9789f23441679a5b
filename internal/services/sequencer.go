package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

const (
	// Gaps are mutually independent once fixed anchors are placed, so their
	// orderings are resolved concurrently, bounded to keep provider load sane.
	maxGapWorkers = 4

	// 2-opt refinement is best-effort and skipped for gaps larger than this;
	// the skip is recorded as an assumption in the diagnostics.
	maxTwoOptStops = 15
)

// OptimizeRequest is the input to a full re-optimization: the complete stop
// set (start, free stops, fixed stops, end) plus profile and objective.
type OptimizeRequest struct {
	Locations []domain.Location
	Profile   domain.Profile
	Objective domain.Objective
	Options   domain.RouteOptions
}

// OrderedStop is one stop of the optimized sequence with its incoming leg
// metrics and cumulative travel time from the start.
type OrderedStop struct {
	Location       domain.Location
	LegDistanceKm  float64
	LegDurationMin float64
	CumulativeMin  float64
}

// Summary aggregates route totals.
type Summary struct {
	StopCount        int
	TotalDistanceKm  float64
	TotalDurationMin float64
}

// Diagnostics carries non-fatal findings: degradation warnings, recorded
// assumptions, and notes about how the order was computed.
type Diagnostics struct {
	Warnings         []string
	Assumptions      []string
	ComputationNotes []string
}

// OptimizeResult is the full re-optimization output.
type OptimizeResult struct {
	Ordered     []OrderedStop
	Summary     Summary
	Geometry    *RouteGeometry
	Diagnostics Diagnostics
}

// Sequencer produces a total visiting order for a stop set, minimizing total
// cost under the request objective while honoring fixed positions.
//
// The heuristic: fixed stops are pinned to their declared slots, which
// partitions the free stops into contiguous gaps between consecutive
// anchors. Within each gap a nearest-neighbor construction runs from the
// gap's left anchor, refined by a bounded 2-opt pass. Gap orderings are
// concatenated by structural position, then per-leg costs are recomputed
// over the final order so totals reflect the actual adjacencies.
type Sequencer struct {
	Provider ports.RoutingProvider
	Cache    ports.DistanceCache
}

type gap struct {
	firstSlot   int
	leftAnchor  int   // location index of the preceding fixed slot
	rightAnchor int   // location index of the following fixed slot
	members     []int // location indices of free stops assigned to this gap
}

type gapResult struct {
	idx     int
	ordered []int
	err     error
}

// Optimize validates the request and computes the full stop order.
func (s *Sequencer) Optimize(ctx context.Context, req OptimizeRequest) (*OptimizeResult, error) {
	if !domain.ValidProfile(req.Profile) {
		return nil, domain.NewValidationError(domain.CodeInvalidProfile, "unknown profile %q", req.Profile)
	}
	if !domain.ValidObjective(req.Objective) {
		return nil, domain.NewValidationError(domain.CodeInvalidObjective,
			"objective must be %q or %q, got %q", domain.ObjectiveTime, domain.ObjectiveDistance, req.Objective)
	}
	if verr := domain.ValidateLocations(req.Locations); verr != nil {
		return nil, verr
	}

	slots, gaps := buildSlots(req.Locations)

	points := make([]domain.RoutePoint, len(req.Locations))
	for i, loc := range req.Locations {
		points[i] = loc.Point
	}
	cache := NewMatrixCache(s.Provider, s.Cache, points, req.Profile, req.Options)

	var assumptions []string
	if len(gaps) > 0 {
		gapAssumptions, err := s.resolveGaps(ctx, cache, req.Objective, slots, gaps)
		if err != nil {
			return nil, err
		}
		assumptions = gapAssumptions
	}

	for pos, locIdx := range slots {
		if locIdx < 0 {
			return nil, &domain.OptimizationError{
				Message:           fmt.Sprintf("no stop assigned to position %d", pos+1),
				FallbackAvailable: true,
			}
		}
	}

	return s.assemble(ctx, cache, req, slots, assumptions)
}

// buildSlots pins the start, end, and fixed stops to their positions and
// partitions the free stops into the empty runs between consecutive anchors.
// Free stops are assigned to gaps in input order; the ordering within each
// gap is the heuristic's job.
func buildSlots(locations []domain.Location) ([]int, []gap) {
	n := len(locations)
	slots := make([]int, n)
	for i := range slots {
		slots[i] = -1
	}

	var free []int
	for i, loc := range locations {
		switch {
		case loc.Kind == domain.KindStart:
			slots[0] = i
		case loc.Kind == domain.KindEnd:
			slots[n-1] = i
		case loc.FixedSeq:
			slots[*loc.Seq-1] = i
		default:
			free = append(free, i)
		}
	}

	var gaps []gap
	pos := 1
	for pos < n-1 {
		if slots[pos] >= 0 {
			pos++
			continue
		}

		g := gap{firstSlot: pos, leftAnchor: slots[pos-1]}
		for pos < n-1 && slots[pos] < 0 {
			pos++
		}
		g.rightAnchor = slots[pos]

		width := pos - g.firstSlot
		g.members = free[:width]
		free = free[width:]
		gaps = append(gaps, g)
	}

	return slots, gaps
}

// resolveGaps orders every gap concurrently and writes the results back into
// the slot table. The first fatal error cancels the remaining gaps.
func (s *Sequencer) resolveGaps(
	ctx context.Context,
	cache *MatrixCache,
	objective domain.Objective,
	slots []int,
	gaps []gap,
) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, maxGapWorkers)
	results := make(chan gapResult, len(gaps))
	var wg sync.WaitGroup

	for gi, g := range gaps {
		wg.Add(1)
		go func(gi int, g gap) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			ordered, err := s.orderGap(ctx, cache, objective, g)
			if err != nil {
				results <- gapResult{idx: gi, err: err}
				cancel()
				return
			}
			results <- gapResult{idx: gi, ordered: ordered}
		}(gi, g)
	}

	wg.Wait()
	close(results)

	ordered := make([][]int, len(gaps))
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		ordered[res.idx] = res.ordered
	}
	if firstErr != nil {
		return nil, firstErr
	}

	var assumptions []string
	for gi, g := range gaps {
		for k, locIdx := range ordered[gi] {
			slots[g.firstSlot+k] = locIdx
		}
		if len(g.members) > maxTwoOptStops {
			assumptions = append(assumptions, fmt.Sprintf(
				"2-opt refinement skipped for a gap with %d free stops (limit %d)",
				len(g.members), maxTwoOptStops))
		}
	}

	return assumptions, nil
}

// orderGap orders one gap's free stops: nearest-neighbor construction from
// the gap's left anchor, then a bounded 2-opt improvement pass between the
// two anchors.
func (s *Sequencer) orderGap(ctx context.Context, cache *MatrixCache, objective domain.Objective, g gap) ([]int, error) {
	if len(g.members) <= 1 {
		return g.members, nil
	}

	remaining := make([]int, len(g.members))
	copy(remaining, g.members)

	ordered := make([]int, 0, len(g.members))
	current := g.leftAnchor

	for len(remaining) > 0 {
		bestIdx := -1
		bestValue := 0.0

		// Greedy step: pick the cheapest unplaced stop from the current
		// position. Strict less keeps input order on ties, which makes the
		// construction deterministic.
		for ri, locIdx := range remaining {
			c, err := cache.Cost(ctx, current, locIdx)
			if err != nil {
				return nil, err
			}
			v := c.Value(objective)
			if bestIdx == -1 || v < bestValue {
				bestIdx = ri
				bestValue = v
			}
		}

		next := remaining[bestIdx]
		ordered = append(ordered, next)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		current = next
	}

	if len(ordered) >= 2 && len(ordered) <= maxTwoOptStops {
		improved, err := s.twoOpt(ctx, cache, objective, g, ordered)
		if err != nil {
			return nil, err
		}
		ordered = improved
	}

	return ordered, nil
}

// twoOpt reverses interior segments between the gap anchors while doing so
// lowers the path cost. Costs are directional, so each candidate path is
// re-summed in full rather than patched. Bounded passes keep this a
// best-effort refinement, not an optimality guarantee.
func (s *Sequencer) twoOpt(ctx context.Context, cache *MatrixCache, objective domain.Objective, g gap, ordered []int) ([]int, error) {
	const maxPasses = 4
	const epsilon = 1e-9

	seq := make([]int, 0, len(ordered)+2)
	seq = append(seq, g.leftAnchor)
	seq = append(seq, ordered...)
	seq = append(seq, g.rightAnchor)

	best := seq
	bestCost, err := s.pathCost(ctx, cache, objective, best)
	if err != nil {
		return nil, err
	}

	for pass := 0; pass < maxPasses; pass++ {
		improvedPass := false

		for i := 1; i < len(best)-2; i++ {
			for k := i + 1; k < len(best)-1; k++ {
				candidate := reverseSegment(best, i, k)
				cost, err := s.pathCost(ctx, cache, objective, candidate)
				if err != nil {
					return nil, err
				}
				if cost+epsilon < bestCost {
					best = candidate
					bestCost = cost
					improvedPass = true
				}
			}
		}

		if !improvedPass {
			break
		}
	}

	return best[1 : len(best)-1], nil
}

func (s *Sequencer) pathCost(ctx context.Context, cache *MatrixCache, objective domain.Objective, seq []int) (float64, error) {
	total := 0.0
	for i := 0; i < len(seq)-1; i++ {
		c, err := cache.Cost(ctx, seq[i], seq[i+1])
		if err != nil {
			return 0, err
		}
		total += c.Value(objective)
	}
	return total, nil
}

func reverseSegment(seq []int, i, k int) []int {
	out := make([]int, len(seq))
	copy(out, seq[:i])
	pos := i
	for j := k; j >= i; j-- {
		out[pos] = seq[j]
		pos++
	}
	copy(out[pos:], seq[k+1:])
	return out
}

// assemble recomputes per-leg costs over the final order (2-opt may have
// changed adjacencies), builds the geometry, and collects diagnostics.
func (s *Sequencer) assemble(
	ctx context.Context,
	cache *MatrixCache,
	req OptimizeRequest,
	slots []int,
	assumptions []string,
) (*OptimizeResult, error) {
	ordered := make([]OrderedStop, 0, len(slots))
	orderedPoints := make([]domain.RoutePoint, 0, len(slots))

	summary := Summary{StopCount: len(slots)}
	cumulative := 0.0

	for pos, locIdx := range slots {
		stop := OrderedStop{Location: req.Locations[locIdx]}

		if pos > 0 {
			c, err := cache.Cost(ctx, slots[pos-1], locIdx)
			if err != nil {
				return nil, err
			}
			stop.LegDistanceKm = c.DistanceKm
			stop.LegDurationMin = c.DurationMin
			cumulative += c.DurationMin
			summary.TotalDistanceKm += c.DistanceKm
			summary.TotalDurationMin += c.DurationMin
		}
		stop.CumulativeMin = cumulative

		ordered = append(ordered, stop)
		orderedPoints = append(orderedPoints, req.Locations[locIdx].Point)
	}

	geometry, geoWarnings, err := BuildGeometry(ctx, s.Provider, orderedPoints, req.Profile, req.Options)
	if err != nil {
		return nil, err
	}

	diags := Diagnostics{
		Warnings:    append(cache.Warnings(), geoWarnings...),
		Assumptions: assumptions,
		ComputationNotes: []string{
			"order built with per-gap nearest-neighbor construction and bounded 2-opt refinement",
		},
	}

	return &OptimizeResult{
		Ordered:     ordered,
		Summary:     summary,
		Geometry:    geometry,
		Diagnostics: diags,
	}, nil
}
