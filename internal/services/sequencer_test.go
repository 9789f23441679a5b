package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarBahar/MyTrip-sub001/internal/adapters/routing"
	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

func intp(v int) *int { return &v }

func startLoc(id string, lat, lon float64) domain.Location {
	return domain.Location{ID: id, Point: domain.RoutePoint{Lat: lat, Lon: lon, Name: id}, Kind: domain.KindStart}
}

func endLoc(id string, lat, lon float64) domain.Location {
	return domain.Location{ID: id, Point: domain.RoutePoint{Lat: lat, Lon: lon, Name: id}, Kind: domain.KindEnd}
}

func stopLoc(id string, lat, lon float64) domain.Location {
	return domain.Location{ID: id, Point: domain.RoutePoint{Lat: lat, Lon: lon, Name: id}, Kind: domain.KindStop}
}

func fixedLoc(id string, lat, lon float64, seq int) domain.Location {
	l := stopLoc(id, lat, lon)
	l.FixedSeq = true
	l.Seq = intp(seq)
	return l
}

func optimizeReq(locations ...domain.Location) OptimizeRequest {
	return OptimizeRequest{
		Locations: locations,
		Profile:   domain.ProfileCar,
		Objective: domain.ObjectiveTime,
	}
}

func orderedIDs(result *OptimizeResult) []string {
	ids := make([]string, len(result.Ordered))
	for i, s := range result.Ordered {
		ids[i] = s.Location.ID
	}
	return ids
}

func TestOptimizeNearestNeighborOrder(t *testing.T) {
	// Free stops on a line: the greedy walk from the start visits them in
	// geographic order regardless of input order.
	seq := &Sequencer{Provider: haversineProvider()}

	result, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		stopLoc("a", 0, 1),
		stopLoc("b", 0, 3),
		stopLoc("c", 0, 2),
		endLoc("e", 0, 4),
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"s", "a", "c", "b", "e"}, orderedIDs(result))
}

func TestOptimizeStartAndEndPinned(t *testing.T) {
	seq := &Sequencer{Provider: haversineProvider()}

	result, err := seq.Optimize(context.Background(), optimizeReq(
		stopLoc("x", 0, 3),
		endLoc("e", 0, 0),
		startLoc("s", 0, 5),
		stopLoc("y", 0, 1),
	))
	require.NoError(t, err)

	ids := orderedIDs(result)
	assert.Equal(t, "s", ids[0])
	assert.Equal(t, "e", ids[len(ids)-1])
}

func TestOptimizeFixedStopPinned(t *testing.T) {
	// A fixed stop holds its declared position even when a cheaper order
	// exists; free stops fill the gaps on either side.
	seq := &Sequencer{Provider: haversineProvider()}

	result, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		stopLoc("near", 0, 1),
		fixedLoc("pinned", 0, 9, 3),
		stopLoc("far", 0, 8),
		endLoc("e", 0, 10),
	))
	require.NoError(t, err)

	ids := orderedIDs(result)
	assert.Equal(t, "pinned", ids[2])
	assert.Equal(t, "s", ids[0])
	assert.Equal(t, "e", ids[4])
}

func TestOptimizeDuplicateFixedSeqRejected(t *testing.T) {
	provider := haversineProvider()
	seq := &Sequencer{Provider: provider}

	_, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		fixedLoc("a", 0, 1, 2),
		fixedLoc("b", 0, 2, 2),
		endLoc("e", 0, 3),
	))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.CodeDuplicateFixedSeq, verr.Code)
	// Rejected before any provider traffic.
	assert.Equal(t, 0, provider.RouteCalls())
}

func TestOptimizeValidation(t *testing.T) {
	seq := &Sequencer{Provider: haversineProvider()}
	ctx := context.Background()

	_, err := seq.Optimize(ctx, OptimizeRequest{
		Locations: []domain.Location{startLoc("s", 0, 0), endLoc("e", 0, 1)},
		Profile:   "rocket",
		Objective: domain.ObjectiveTime,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.CodeInvalidProfile, verr.Code)

	_, err = seq.Optimize(ctx, OptimizeRequest{
		Locations: []domain.Location{startLoc("s", 0, 0), endLoc("e", 0, 1)},
		Profile:   domain.ProfileCar,
		Objective: "vibes",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.CodeInvalidObjective, verr.Code)

	_, err = seq.Optimize(ctx, optimizeReq(
		startLoc("s", 0, 0),
		startLoc("s2", 0, 1),
		endLoc("e", 0, 2),
	))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.CodeMultipleStart, verr.Code)
}

func TestOptimizeSummaryAndLegs(t *testing.T) {
	seq := &Sequencer{Provider: haversineProvider()}

	result, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		stopLoc("a", 0, 1),
		stopLoc("b", 0, 2),
		endLoc("e", 0, 3),
	))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Summary.StopCount)

	// Totals equal the sum of the per-leg metrics.
	var km, min float64
	for _, s := range result.Ordered {
		km += s.LegDistanceKm
		min += s.LegDurationMin
	}
	assert.InDelta(t, result.Summary.TotalDistanceKm, km, 1e-9)
	assert.InDelta(t, result.Summary.TotalDurationMin, min, 1e-9)

	// The start has no incoming leg; cumulative time never decreases.
	assert.Zero(t, result.Ordered[0].LegDistanceKm)
	prev := 0.0
	for _, s := range result.Ordered {
		assert.GreaterOrEqual(t, s.CumulativeMin, prev)
		prev = s.CumulativeMin
	}
	assert.InDelta(t, result.Summary.TotalDurationMin, result.Ordered[len(result.Ordered)-1].CumulativeMin, 1e-9)
}

func TestOptimizeDeterministic(t *testing.T) {
	locations := []domain.Location{
		startLoc("s", 32.05, 34.75),
		stopLoc("a", 32.09, 34.80),
		stopLoc("b", 32.07, 34.76),
		fixedLoc("f", 32.11, 34.82, 4),
		stopLoc("c", 32.06, 34.79),
		endLoc("e", 32.12, 34.83),
	}

	seq := &Sequencer{Provider: haversineProvider()}
	first, err := seq.Optimize(context.Background(), optimizeReq(locations...))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := seq.Optimize(context.Background(), optimizeReq(locations...))
		require.NoError(t, err)
		assert.Equal(t, orderedIDs(first), orderedIDs(again))
	}
}

func TestOptimizeNoProviderFallsBackToEstimates(t *testing.T) {
	seq := &Sequencer{}

	result, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		stopLoc("a", 0, 2),
		stopLoc("b", 0, 1),
		endLoc("e", 0, 3),
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"s", "b", "a", "e"}, orderedIDs(result))
	assert.NotEmpty(t, result.Diagnostics.Warnings)
	assert.Greater(t, result.Summary.TotalDistanceKm, 0.0)
}

func TestOptimizeRateLimitPropagates(t *testing.T) {
	provider := routing.NewMockProvider(nil)
	provider.RouteErr = &domain.RateLimitError{RetryAfter: 10 * time.Second}
	seq := &Sequencer{Provider: provider}

	_, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		stopLoc("a", 0, 1),
		endLoc("e", 0, 2),
	))

	var rle *domain.RateLimitError
	require.ErrorAs(t, err, &rle)
}

func TestOptimizeMatrixProviderSingleCall(t *testing.T) {
	provider := routing.NewMockMatrixProvider(nil)
	provider.Haversine = true
	seq := &Sequencer{Provider: provider}

	result, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		stopLoc("a", 0, 2),
		stopLoc("b", 0, 1),
		stopLoc("c", 0, 3),
		endLoc("e", 0, 4),
	))
	require.NoError(t, err)
	require.NotNil(t, result)

	// All pair costs come from one matrix call; the only ComputeRoute call
	// is the final geometry build over the ordered points.
	assert.Equal(t, 1, provider.MatrixCalls())
	assert.Equal(t, 1, provider.RouteCalls())
}

func TestOptimizeTwoGapsShareOneMatrixCall(t *testing.T) {
	// A fixed anchor splits the free stops into two gaps whose workers run
	// concurrently; a slow matrix response must still be fetched only once.
	provider := routing.NewMockMatrixProvider(nil)
	provider.Haversine = true
	provider.MatrixDelay = 50 * time.Millisecond
	seq := &Sequencer{Provider: provider}

	result, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		stopLoc("a", 0, 2),
		stopLoc("b", 0, 1),
		fixedLoc("anchor", 0, 3, 4),
		stopLoc("c", 0, 5),
		stopLoc("d", 0, 4),
		endLoc("e", 0, 6),
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"s", "b", "a", "anchor", "d", "c", "e"}, orderedIDs(result))
	assert.Equal(t, 1, provider.MatrixCalls())
	// The only ComputeRoute call is the final geometry build.
	assert.Equal(t, 1, provider.RouteCalls())
}

func TestOptimizeFixedOnly(t *testing.T) {
	// Every interior stop pinned: nothing to order, sequence follows the
	// declared positions exactly.
	seq := &Sequencer{Provider: haversineProvider()}

	result, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		fixedLoc("second", 0, 9, 2),
		fixedLoc("third", 0, 1, 3),
		endLoc("e", 0, 10),
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"s", "second", "third", "e"}, orderedIDs(result))
}

func TestOptimizeStartEndOnly(t *testing.T) {
	seq := &Sequencer{Provider: haversineProvider()}

	result, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		endLoc("e", 0, 1),
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"s", "e"}, orderedIDs(result))
	assert.Equal(t, 2, result.Summary.StopCount)
}

func TestOptimizeGeometryAttached(t *testing.T) {
	provider := haversineProvider()
	provider.Geometry = [][2]float64{{0, 0}, {1, 0.5}, {2, 1}}
	seq := &Sequencer{Provider: provider}

	result, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		stopLoc("a", 0.5, 1),
		endLoc("e", 1, 2),
	))
	require.NoError(t, err)

	require.NotNil(t, result.Geometry)
	assert.Equal(t, "geojson", result.Geometry.Format)
	assert.Equal(t, provider.Geometry, result.Geometry.Route.Coordinates)
	assert.NotEmpty(t, result.Diagnostics.ComputationNotes)
}

func TestTwoOptImprovesGreedyOrder(t *testing.T) {
	// Geometry chosen so the greedy construction commits to a crossing the
	// 2-opt pass must undo: from the start the nearest stop is a trap that
	// forces a long backtrack.
	seq := &Sequencer{Provider: haversineProvider()}

	result, err := seq.Optimize(context.Background(), optimizeReq(
		startLoc("s", 0, 0),
		stopLoc("trap", 0, 0.9),
		stopLoc("left", 0, -2),
		stopLoc("mid", 0, -1),
		endLoc("e", 0, 1),
	))
	require.NoError(t, err)

	// Optimal tour visits the far-left cluster first, then sweeps right.
	assert.Equal(t, []string{"s", "left", "mid", "trap", "e"}, orderedIDs(result))
}

func TestBuildSlotsGapPartitioning(t *testing.T) {
	locations := []domain.Location{
		startLoc("s", 0, 0),
		stopLoc("f1", 0, 1),
		fixedLoc("anchor", 0, 5, 4),
		stopLoc("f2", 0, 2),
		stopLoc("f3", 0, 3),
		endLoc("e", 0, 6),
	}

	slots, gaps := buildSlots(locations)

	require.Len(t, slots, 6)
	assert.Equal(t, 0, slots[0])
	assert.Equal(t, 2, slots[3]) // fixed seq 4 -> slot index 3
	assert.Equal(t, 5, slots[5])

	require.Len(t, gaps, 2)
	assert.Equal(t, []int{1, 3}, gaps[0].members) // slots 1-2: first two free stops
	assert.Equal(t, []int{4}, gaps[1].members)    // slot 4: the remaining one
	assert.Equal(t, 0, gaps[0].leftAnchor)
	assert.Equal(t, 2, gaps[0].rightAnchor)
	assert.Equal(t, 2, gaps[1].leftAnchor)
	assert.Equal(t, 5, gaps[1].rightAnchor)
}
