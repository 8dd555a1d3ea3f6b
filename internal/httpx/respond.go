// internal/httpx/respond.go

// Package httpx carries the HTTP plumbing shared by every handler: the
// canonical response envelope, the error-to-status translation, and the
// middleware stack (auth, logging, metrics).
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"kulibrary/internal/domain"
)

// Error kinds carried in the machine-readable "error" field.
const (
	KindValidation   = "validation_error"
	KindCredentials  = "invalid_credentials"
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindNotFound     = "not_found"
	KindConflict     = "conflict"
	KindRenewalLimit = "renewal_limit_exceeded"
	KindRateLimited  = "rate_limited"
	KindInternal     = "internal_error"
)

// ErrorBody is the canonical error envelope. Every failure carries a
// machine-readable kind and a human-readable message the client displays
// verbatim.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error translates a service error into the envelope. Unknown errors are
// logged and flattened to a generic internal failure so no internals leak.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	message := err.Error()
	if kind == KindInternal {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		message = "internal server error"
	}
	JSON(w, status, ErrorBody{Success: false, Error: kind, Message: message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, KindValidation
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, KindCredentials
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, KindUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, KindForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, KindNotFound
	case errors.Is(err, domain.ErrNoCopies),
		errors.Is(err, domain.ErrAlreadyReturned),
		errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, KindConflict
	case errors.Is(err, domain.ErrRenewalLimit):
		return http.StatusConflict, KindRenewalLimit
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, KindRateLimited
	}
	return http.StatusInternalServerError, KindInternal
}

// Decode parses a JSON request body, rejecting unknown shapes as a
// validation error.
func Decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", domain.ErrValidation)
	}
	return nil
}
