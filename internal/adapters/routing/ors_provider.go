// Package routing contains RoutingProvider adapters. The production adapter
// targets OpenRouteService; MockProvider serves tests.
package routing

import (
	"errors"
	"net/http"
	"time"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// ORSProvider implements the RoutingProvider and MatrixProvider ports using
// OpenRouteService. It handles auth, retry with backoff on transient
// failures, and translation of provider failures into the core error
// taxonomy. The provider is safe for concurrent use.
type ORSProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
}

// Each call is individually time-bounded; route computations against a cold
// provider can take seconds.
const requestTimeout = 30 * time.Second

func NewORSProvider(apiKey string) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSProvider{
		session: &http.Client{Timeout: requestTimeout},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
	}, nil
}

// orsProfile maps core travel profiles onto ORS routing profiles. ORS has no
// motorcycle profile, so it is costed as a car.
func orsProfile(p domain.Profile) string {
	switch p {
	case domain.ProfileBike:
		return "cycling-regular"
	case domain.ProfileWalking:
		return "foot-walking"
	default:
		return "driving-car"
	}
}

func avoidFeatures(opts domain.RouteOptions) []string {
	var features []string
	if opts.AvoidHighways {
		features = append(features, "highways")
	}
	if opts.AvoidTolls {
		features = append(features, "tollways")
	}
	if opts.AvoidFerries {
		features = append(features, "ferries")
	}
	return features
}
