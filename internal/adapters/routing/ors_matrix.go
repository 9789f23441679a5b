package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/obs"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// ComputeMatrix fetches the full directional cost matrix over points from
// the ORS matrix endpoint. The result is indexed [from][to] in input order.
func (o *ORSProvider) ComputeMatrix(
	ctx context.Context,
	points []domain.RoutePoint,
	profile domain.Profile,
	opts domain.RouteOptions,
) (_ [][]domain.Cost, err error) {
	defer obs.Time(ctx, "ors.ComputeMatrix")(&err)

	if len(points) < 2 {
		return nil, errors.New("compute matrix: at least two points are required")
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, orsProfile(profile))

	locations := make([][]float64, 0, len(points))
	for _, p := range points {
		locations = append(locations, p.CoordsToList())
	}

	bodyObj := matrixRequest{
		Locations: locations,
		Metrics:   []string{"distance", "duration"},
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		body := bytes.NewReader(payload)
		return o.newRequest(ctx, http.MethodPost, endpoint, body)
	})
	if err != nil {
		return nil, classify("matrix", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, classify("matrix", fmt.Errorf("decode matrix response: %w", err))
	}

	n := len(points)
	if len(mr.Distances) != n || len(mr.Durations) != n {
		return nil, classify("matrix", fmt.Errorf(
			"expected %d matrix rows; got distances=%d durations=%d",
			n, len(mr.Distances), len(mr.Durations),
		))
	}

	out := make([][]domain.Cost, n)
	for i := 0; i < n; i++ {
		if len(mr.Distances[i]) != n || len(mr.Durations[i]) != n {
			return nil, classify("matrix", fmt.Errorf("matrix row %d has unexpected length", i))
		}

		out[i] = make([]domain.Cost, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}

			metersPtr := mr.Distances[i][j]
			secondsPtr := mr.Durations[i][j]
			if metersPtr == nil || secondsPtr == nil {
				return nil, classify("matrix", fmt.Errorf("matrix returned no metrics for pair (%d, %d)", i, j))
			}

			out[i][j] = domain.Cost{
				DistanceKm:  *metersPtr / 1000,
				DurationMin: *secondsPtr / 60,
			}
		}
	}

	return out, nil
}
