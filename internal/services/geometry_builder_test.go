package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarBahar/MyTrip-sub001/internal/adapters/routing"
	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

func TestBuildGeometryFromProvider(t *testing.T) {
	provider := haversineProvider()
	provider.Geometry = [][2]float64{{34.78, 32.08}, {34.80, 32.09}, {34.82, 32.11}}

	points := []domain.RoutePoint{
		{Lat: 32.08, Lon: 34.78},
		{Lat: 32.11, Lon: 34.82},
	}

	g, warnings, err := BuildGeometry(context.Background(), provider, points, domain.ProfileCar, domain.RouteOptions{})
	require.NoError(t, err)
	require.NotNil(t, g)

	assert.Empty(t, warnings)
	assert.Equal(t, "geojson", g.Format)
	assert.Equal(t, provider.Geometry, g.Route.Coordinates)

	// Bounds frame the provider geometry, not the input points.
	assert.Equal(t, 32.08, g.Bounds.MinLat)
	assert.Equal(t, 34.82, g.Bounds.MaxLon)
}

func TestBuildGeometryProviderFailure(t *testing.T) {
	provider := routing.NewMockProvider(nil)
	provider.RouteErr = errors.New("network down")

	points := []domain.RoutePoint{
		{Lat: 0, Lon: 0},
		{Lat: 1, Lon: 1},
	}

	g, warnings, err := BuildGeometry(context.Background(), provider, points, domain.ProfileCar, domain.RouteOptions{})
	require.NoError(t, err)
	require.NotNil(t, g)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "straight-line")
	assert.Equal(t, [][2]float64{{0, 0}, {1, 1}}, g.Route.Coordinates)
	assert.Equal(t, 1.0, g.Bounds.MaxLat)
}

func TestBuildGeometryEmptyProviderGeometry(t *testing.T) {
	// A provider that answers without geometry degrades the same way as a
	// failing one.
	provider := haversineProvider()

	points := []domain.RoutePoint{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 2},
	}

	g, warnings, err := BuildGeometry(context.Background(), provider, points, domain.ProfileCar, domain.RouteOptions{})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, [][2]float64{{0, 0}, {2, 0}}, g.Route.Coordinates)
}

func TestBuildGeometryNoProvider(t *testing.T) {
	points := []domain.RoutePoint{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
	}

	g, warnings, err := BuildGeometry(context.Background(), nil, points, domain.ProfileCar, domain.RouteOptions{})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "no routing provider")
	assert.Len(t, g.Route.Coordinates, 2)
}

func TestBuildGeometryNoPoints(t *testing.T) {
	g, warnings, err := BuildGeometry(context.Background(), nil, nil, domain.ProfileCar, domain.RouteOptions{})
	require.NoError(t, err)
	require.NotNil(t, g)

	require.Len(t, warnings, 1)
	assert.Equal(t, "geojson", g.Format)
	assert.NotNil(t, g.Route.Coordinates)
	assert.Empty(t, g.Route.Coordinates)
	assert.Zero(t, g.Bounds)
}

func TestBuildGeometryCancellationPropagates(t *testing.T) {
	// Cancellation is not a provider outage: it must surface as an error,
	// never as a straight-line result.
	provider := routing.NewMockProvider(nil)
	provider.RouteErr = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	points := []domain.RoutePoint{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
	}

	g, warnings, err := BuildGeometry(ctx, provider, points, domain.ProfileCar, domain.RouteOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, g)
	assert.Empty(t, warnings)
}
