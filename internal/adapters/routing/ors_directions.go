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

type directionsRequest struct {
	Coordinates  [][]float64        `json:"coordinates"`
	Instructions bool               `json:"instructions"`
	Options      *directionsOptions `json:"options,omitempty"`
}

type directionsOptions struct {
	AvoidFeatures []string `json:"avoid_features,omitempty"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
			Segments []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
				Steps    []struct {
					Instruction string `json:"instruction"`
				} `json:"steps"`
			} `json:"segments"`
		} `json:"properties"`
	} `json:"features"`
}

// ComputeRoute fetches a route visiting points in order from the ORS
// directions endpoint (GeoJSON flavor).
func (o *ORSProvider) ComputeRoute(
	ctx context.Context,
	points []domain.RoutePoint,
	profile domain.Profile,
	opts domain.RouteOptions,
) (_ *domain.RouteResult, err error) {
	defer obs.Time(ctx, "ors.ComputeRoute")(&err)

	if len(points) < 2 {
		return nil, errors.New("compute route: at least two points are required")
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, orsProfile(profile))

	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, p.CoordsToList())
	}

	bodyObj := directionsRequest{Coordinates: coords, Instructions: true}
	if features := avoidFeatures(opts); len(features) > 0 {
		bodyObj.Options = &directionsOptions{AvoidFeatures: features}
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		body := bytes.NewReader(payload)
		return o.newRequest(ctx, http.MethodPost, endpoint, body)
	})
	if err != nil {
		return nil, classify("directions", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, classify("directions", fmt.Errorf("decode directions response: %w", err))
	}

	if len(dr.Features) == 0 {
		return nil, classify("directions", errors.New("directions response contained no route"))
	}

	feature := dr.Features[0]

	geometry := make([][2]float64, 0, len(feature.Geometry.Coordinates))
	for _, c := range feature.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		geometry = append(geometry, [2]float64{c[0], c[1]})
	}

	legs := make([]domain.RouteLeg, 0, len(feature.Properties.Segments))
	for _, seg := range feature.Properties.Segments {
		leg := domain.RouteLeg{
			DistanceKm:  seg.Distance / 1000,
			DurationMin: seg.Duration / 60,
		}
		for _, step := range seg.Steps {
			leg.Instructions = append(leg.Instructions, step.Instruction)
		}
		legs = append(legs, leg)
	}

	return &domain.RouteResult{
		TotalKm:  feature.Properties.Summary.Distance / 1000,
		TotalMin: feature.Properties.Summary.Duration / 60,
		Geometry: geometry,
		Legs:     legs,
	}, nil
}
