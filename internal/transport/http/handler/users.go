package handler

import (
	"net/http"

	"github.com/learnhub/user-service/internal/application/auth"
	"github.com/learnhub/user-service/internal/transport/http/middleware"
)

// UserHandler handles authenticated user endpoints.
type UserHandler struct {
	svc auth.Service
}

func NewUserHandler(svc auth.Service) *UserHandler { return &UserHandler{svc: svc} }

// Me returns the profile of the caller identified by the session token.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing claims")
		return
	}
	u, err := h.svc.Get(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u})
}
