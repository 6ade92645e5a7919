package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/learnhub/user-service/internal/domain"
	googleinfra "github.com/learnhub/user-service/internal/infrastructure/google"
	jwtinfra "github.com/learnhub/user-service/internal/infrastructure/jwt"
	"github.com/learnhub/user-service/internal/pkg/id"
	"github.com/learnhub/user-service/internal/pkg/password"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

type CompleteSignupRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	Phone         string `json:"phone"`
	Role          string `json:"role" validate:"required"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	VerifiedToken string `json:"verified_token" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
	Token       string `json:"token" validate:"required"`
}

// FederatedLoginRequest carries the identity a provider asserted for the
// caller. Unless a Google verifier is configured, the profile is trusted
// as-is — a documented weakness of this flow.
type FederatedLoginRequest struct {
	Token     string `json:"token"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Service interface {
	PreSignup(ctx context.Context, email, role string) error
	VerifyEmail(ctx context.Context, email, code string) (verifiedToken string, err error)
	CompleteSignup(ctx context.Context, req CompleteSignupRequest) (*domain.User, string, error)
	Login(ctx context.Context, req LoginRequest) (*domain.User, string, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetOTP(ctx context.Context, email, code string) (resetToken string, err error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	FederatedLogin(ctx context.Context, provider string, req FederatedLoginRequest) (*domain.User, string, error)
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Exists(ctx context.Context, email string) (bool, error)
	Put(ctx context.Context, u *domain.User) error
	UpdateCredential(ctx context.Context, userID, newHash string) error
}

type otpService interface {
	Issue(ctx context.Context, identity, purpose string) (string, error)
	Verify(ctx context.Context, identity, code, purpose string) error
}

type tokenProvider interface {
	Mint(subject string, purpose domain.TokenPurpose, ttl time.Duration, extra jwtinfra.Extra) (string, error)
	Validate(token string, expected domain.TokenPurpose) (*jwtinfra.Claims, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*googleinfra.Payload, error)
}

// TokenTTLs are the per-purpose token lifetimes, policy owned by the
// orchestrator rather than the token provider.
type TokenTTLs struct {
	Verify  time.Duration
	Reset   time.Duration
	Session time.Duration
}

type ServiceDeps struct {
	UserRepo       userStore
	OTPService     otpService
	Tokens         tokenProvider
	GoogleVerifier googleVerifier // nil means federated Google logins are trusted as-is
	TTLs           TokenTTLs
}

type service struct {
	users  userStore
	otp    otpService
	tokens tokenProvider
	google googleVerifier
	ttls   TokenTTLs
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:  deps.UserRepo,
		otp:    deps.OTPService,
		tokens: deps.Tokens,
		google: deps.GoogleVerifier,
		ttls:   deps.TTLs,
	}
}

// PreSignup starts registration: the identity must be unused before any OTP
// goes out.
func (s *service) PreSignup(ctx context.Context, email, role string) error {
	if !domain.ValidRole(role) {
		return fmt.Errorf("unknown role %q: %w", role, domain.ErrBadRequest)
	}
	taken, err := s.users.Exists(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("user with this email already exists: %w", domain.ErrConflict)
	}
	_, err = s.otp.Issue(ctx, email, domain.OTPPurposeVerification)
	return err
}

func (s *service) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	if err := s.otp.Verify(ctx, email, code, domain.OTPPurposeVerification); err != nil {
		return "", err
	}
	return s.tokens.Mint(email, domain.TokenPurposeEmailVerification, s.ttls.Verify, jwtinfra.Extra{})
}

func (s *service) CompleteSignup(ctx context.Context, req CompleteSignupRequest) (*domain.User, string, error) {
	claims, err := s.tokens.Validate(req.VerifiedToken, domain.TokenPurposeEmailVerification)
	if err != nil {
		return nil, "", err
	}
	if claims.Subject != req.Email {
		return nil, "", fmt.Errorf("token subject mismatch: %w", domain.ErrTokenInvalid)
	}
	if !domain.ValidRole(req.Role) {
		return nil, "", fmt.Errorf("unknown role %q: %w", req.Role, domain.ErrBadRequest)
	}

	// Re-check: a concurrent signup may have claimed the identity since
	// pre-signup.
	taken, err := s.users.Exists(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", fmt.Errorf("user with this email already exists: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:         id.New(),
		Email:          req.Email,
		Phone:          req.Phone,
		PasswordHash:   string(hash),
		Role:           req.Role,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		EmailConfirmed: true,
		AuthProvider:   domain.AuthProviderLocal,
		Enable:         1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, "", err
	}

	sessionToken, err := s.mintSession(u)
	if err != nil {
		return nil, "", err
	}
	return u, sessionToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if u.Role != req.Role {
		return nil, "", &domain.RoleMismatchError{ActualRole: u.Role}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if u.Enable != 1 {
		return nil, "", fmt.Errorf("account deactivated: %w", domain.ErrUnauthorized)
	}
	sessionToken, err := s.mintSession(u)
	if err != nil {
		return nil, "", err
	}
	return u, sessionToken, nil
}

// ForgotPassword never reveals whether the identity is registered: an unknown
// email gets the same nil result, and a failed delivery is only logged.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if _, err := s.otp.Issue(ctx, email, domain.OTPPurposePasswordReset); err != nil {
		if errors.Is(err, domain.ErrDeliveryFailed) {
			slog.Warn("password reset OTP delivery failed", "email", email)
			return nil
		}
		return err
	}
	return nil
}

// VerifyResetOTP reveals absent identities, unlike ForgotPassword. The
// asymmetry is deliberate behavioural parity with the flow this replaces.
func (s *service) VerifyResetOTP(ctx context.Context, email, code string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("invalid email: %w", domain.ErrNotFound)
	}
	if err := s.otp.Verify(ctx, email, code, domain.OTPPurposePasswordReset); err != nil {
		return "", err
	}
	return s.tokens.Mint(email, domain.TokenPurposePasswordReset, s.ttls.Reset, jwtinfra.Extra{UserID: u.UserID})
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	claims, err := s.tokens.Validate(req.Token, domain.TokenPurposePasswordReset)
	if err != nil {
		return err
	}
	if claims.Subject != req.Email {
		return fmt.Errorf("token subject mismatch: %w", domain.ErrTokenInvalid)
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdateCredential(ctx, u.UserID, string(hash))
}

// FederatedLogin handles Google and Apple sign-in. Google tokens are checked
// against the provider when a verifier is configured; otherwise (and always
// for Apple) the asserted profile is trusted as-is.
func (s *service) FederatedLogin(ctx context.Context, provider string, req FederatedLoginRequest) (*domain.User, string, error) {
	if !domain.ValidRole(req.Role) {
		return nil, "", fmt.Errorf("unknown role %q: %w", req.Role, domain.ErrBadRequest)
	}
	email := req.Email
	firstName, lastName := req.FirstName, req.LastName
	if provider == domain.AuthProviderGoogle && s.google != nil {
		payload, err := s.google.Verify(ctx, req.Token)
		if err != nil {
			return nil, "", err
		}
		email = payload.Email
		if payload.FirstName != "" {
			firstName = payload.FirstName
		}
		if payload.LastName != "" {
			lastName = payload.LastName
		}
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role != req.Role {
			return nil, "", &domain.RoleMismatchError{ActualRole: u.Role}
		}
	case errors.Is(err, domain.ErrNotFound):
		u, err = s.createFederatedUser(ctx, provider, email, req.Role, req.Phone, firstName, lastName)
		if err != nil {
			return nil, "", err
		}
	default:
		return nil, "", err
	}

	sessionToken, err := s.mintSession(u)
	if err != nil {
		return nil, "", err
	}
	return u, sessionToken, nil
}

func (s *service) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *service) createFederatedUser(ctx context.Context, provider, email, role, phone, firstName, lastName string) (*domain.User, error) {
	// Random placeholder credential so the password login path can never
	// match a federated account.
	placeholder, err := password.RandomPlaceholder()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(placeholder), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:         id.New(),
		Email:          email,
		Phone:          phone,
		PasswordHash:   string(hash),
		Role:           role,
		FirstName:      firstName,
		LastName:       lastName,
		EmailConfirmed: true, // the provider vouched for the email
		AuthProvider:   provider,
		Enable:         1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) mintSession(u *domain.User) (string, error) {
	return s.tokens.Mint(u.Email, domain.TokenPurposeSession, s.ttls.Session, jwtinfra.Extra{
		UserID: u.UserID,
		Role:   u.Role,
	})
}
