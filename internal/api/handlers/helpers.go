package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/AdarBahar/MyTrip-sub001/internal/api/dto"
	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, r, status, map[string]any{
		"errors": []dto.APIError{{Code: code, Message: msg}},
	})
}

// writeCoreError translates the core error taxonomy into transport codes.
// The core itself never deals in HTTP status; that mapping lives here.
func writeCoreError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeError(w, r, http.StatusBadRequest, verr.Code, verr.Message)
		return
	}

	var rle *domain.RateLimitError
	if errors.As(err, &rle) {
		if rle.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(rle.RetryAfter.Seconds())))
		}
		writeError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", rle.Error())
		return
	}

	var oerr *domain.OptimizationError
	if errors.As(err, &oerr) {
		writeError(w, r, http.StatusUnprocessableEntity, "OPTIMIZATION_ERROR", oerr.Message)
		return
	}

	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		log.Printf("provider failure: %v", err)
		writeError(w, r, http.StatusBadGateway, "PROVIDER_ERROR", "routing provider failure")
		return
	}

	log.Printf("request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
