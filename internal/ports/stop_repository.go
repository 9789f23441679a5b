package ports

import (
	"context"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// Port: a boundary for retrieving trip-day stops from a data source.
type StopRepository interface {
	// ListDayStops returns the stored locations of one trip day, including
	// its start and end anchors, in stored sequence order.
	ListDayStops(ctx context.Context, tripID, dayID string) ([]domain.Location, error)
}
