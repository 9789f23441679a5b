package domain

import (
	"fmt"
	"time"
)

// Stable error codes surfaced to callers. The HTTP layer translates these
// into transport status codes; the core never deals in HTTP.
const (
	CodeMissingStart       = "MISSING_START"
	CodeMultipleStart      = "MULTIPLE_START"
	CodeMissingEnd         = "MISSING_END"
	CodeMultipleEnd        = "MULTIPLE_END"
	CodeDuplicateID        = "DUPLICATE_ID"
	CodeDuplicateFixedSeq  = "DUPLICATE_FIXED_SEQ"
	CodeInvalidFixedSeq    = "INVALID_FIXED_SEQ"
	CodeInvalidCoordinates = "INVALID_COORDINATES"
	CodeInvalidProfile     = "INVALID_PROFILE"
	CodeInvalidObjective   = "INVALID_OBJECTIVE"
	CodeRouteValidation    = "ROUTE_VALIDATION_ERROR"
)

// ValidationError reports malformed optimization input. It is raised before
// any provider call, never retried, and surfaced verbatim to the caller.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ProviderError reports a routing provider failure. Recoverable failures
// (timeouts, 5xx) let the core degrade to estimated costs; non-recoverable
// ones (auth) propagate immediately.
type ProviderError struct {
	Op          string
	Recoverable bool
	Err         error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("routing provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// RateLimitError reports provider throttling. The core never retries it;
// it propagates so the caller can apply backoff.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("routing provider rate limited, retry after %s", e.RetryAfter)
	}
	return "routing provider rate limited"
}

// OptimizationError reports that the heuristic could not produce a valid
// order. FallbackAvailable signals that the original input order can still
// be returned as a degraded result.
type OptimizationError struct {
	Message           string
	FallbackAvailable bool
}

func (e *OptimizationError) Error() string {
	return fmt.Sprintf("route optimization: %s", e.Message)
}
