package handlers

import (
	"net/http"
	"strings"

	"github.com/AdarBahar/MyTrip-sub001/internal/api/dto"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
	"github.com/AdarBahar/MyTrip-sub001/internal/services"
)

// TripHandler optimizes stored trip-day stops loaded from the persistence
// collaborator.
type TripHandler struct {
	Repo     ports.StopRepository
	Provider ports.RoutingProvider
	Cache    ports.DistanceCache
}

// OptimizeDay loads the stops of one trip day and runs a full
// re-optimization over them.
func (h *TripHandler) OptimizeDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	if h.Repo == nil {
		writeError(w, r, http.StatusNotImplemented, "NO_REPOSITORY", "stop storage is not configured")
		return
	}

	var req dto.TripDayOptimizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.TripID) == "" || strings.TrimSpace(req.DayID) == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "trip_id and day_id are required")
		return
	}

	locations, err := h.Repo.ListDayStops(r.Context(), req.TripID, req.DayID)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	svcReq := services.OptimizeRequest{Locations: locations}
	mapped, err := toOptimizeRequest(req.Meta, nil)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	svcReq.Profile = mapped.Profile
	svcReq.Objective = mapped.Objective
	svcReq.Options = mapped.Options

	seq := &services.Sequencer{Provider: h.Provider, Cache: h.Cache}
	result, err := seq.Optimize(r.Context(), svcReq)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toOptimizeResponse(result))
}
