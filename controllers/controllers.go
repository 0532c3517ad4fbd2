package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"veil_server/services"
)

// errorCode maps a service sentinel to its HTTP status and the stable code
// string clients branch on. Unknown errors collapse to a 500 without leaking
// internals.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrNoMatchAvailable):
		return http.StatusNotFound, "no_match_available"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrInsufficientCredits):
		return http.StatusPaymentRequired, "insufficient_credits"
	case errors.Is(err, services.ErrAlreadyRequested):
		return http.StatusConflict, "reveal_already_requested"
	case errors.Is(err, services.ErrAlreadyRevealed):
		return http.StatusConflict, "already_revealed"
	case errors.Is(err, services.ErrNotRequested):
		return http.StatusConflict, "reveal_not_requested"
	case errors.Is(err, services.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, services.ErrEmptyContent):
		return http.StatusBadRequest, "empty_content"
	case errors.Is(err, services.ErrPreferencesMissing):
		return http.StatusBadRequest, "preferences_missing"
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := errorCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeJSON(w, status, map[string]string{"code": code, "error": message})
}
