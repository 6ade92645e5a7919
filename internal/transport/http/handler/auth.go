package handler

import (
	"encoding/json"
	"net/http"

	"github.com/learnhub/user-service/internal/application/auth"
	"github.com/learnhub/user-service/internal/domain"
	"github.com/learnhub/user-service/internal/pkg/validate"
	"github.com/learnhub/user-service/internal/transport/http/middleware"
)

// AuthHandler handles the signup, login and password recovery endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

type preSignupRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) PreSignup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid[preSignupRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.PreSignup(r.Context(), req.Email, req.Role); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent"})
}

// SendVerificationOTP re-issues the signup code. It runs the same checks as
// pre-signup so a claimed identity never receives a fresh code.
func (h *AuthHandler) SendVerificationOTP(w http.ResponseWriter, r *http.Request) {
	h.PreSignup(w, r)
}

func (h *AuthHandler) VerifyEmailOTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid[otpRequest](w, r)
	if !ok {
		return
	}
	token, err := h.svc.VerifyEmail(r.Context(), req.Email, req.OTP)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{VerifiedToken: token, Message: "email verified"})
}

func (h *AuthHandler) CompleteSignup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid[auth.CompleteSignupRequest](w, r)
	if !ok {
		return
	}
	u, bearer, err := h.svc.CompleteSignup(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{Bearer: bearer, User: u})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid[auth.LoginRequest](w, r)
	if !ok {
		return
	}
	u, bearer, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: bearer, User: u})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid[emailRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "if the email is registered, an OTP has been sent"})
}

func (h *AuthHandler) VerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid[otpRequest](w, r)
	if !ok {
		return
	}
	token, err := h.svc.VerifyResetOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{ResetToken: token, Message: "OTP verified"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid[auth.ResetPasswordRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password updated"})
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	h.federatedLogin(w, r, domain.AuthProviderGoogle)
}

func (h *AuthHandler) AppleLogin(w http.ResponseWriter, r *http.Request) {
	h.federatedLogin(w, r, domain.AuthProviderApple)
}

func (h *AuthHandler) federatedLogin(w http.ResponseWriter, r *http.Request, provider string) {
	req, ok := decodeValid[auth.FederatedLoginRequest](w, r)
	if !ok {
		return
	}
	u, bearer, err := h.svc.FederatedLogin(r.Context(), provider, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: bearer, User: u})
}

// UserByEmail looks up a registered user's role and provider. Clients use it
// to recover from a role-mismatch login rejection.
func (h *AuthHandler) UserByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}
	u, err := h.svc.UserByEmail(r.Context(), email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u})
}

// Verify introspects the session token and returns the authenticated user.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
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

// decodeValid decodes the JSON body into T and runs struct validation,
// writing the error response itself when either step fails.
func decodeValid[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return req, false
	}
	return req, true
}
