package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/learnhub/user-service/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps responses that establish a session.
type AuthEnvelope struct {
	Bearer  string       `json:"Bearer,omitempty"`
	User    *domain.User `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// TokenEnvelope carries an intermediate flow token back to the client.
type TokenEnvelope struct {
	VerifiedToken string `json:"verified_token,omitempty"`
	ResetToken    string `json:"reset_token,omitempty"`
	Message       string `json:"message,omitempty"`
}

// UserEnvelope wraps single-user responses.
type UserEnvelope struct {
	User  *domain.User `json:"user,omitempty"`
	Error string       `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain errors to HTTP statuses. A role mismatch gets the
// actual role echoed in the actualRole header so clients can recover.
func httpError(w http.ResponseWriter, err error) {
	var rm *domain.RoleMismatchError
	if errors.As(err, &rm) {
		w.Header().Set("actualRole", rm.ActualRole)
		writeError(w, http.StatusForbidden, rm.Error())
		return
	}
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrOTPInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDeliveryFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
