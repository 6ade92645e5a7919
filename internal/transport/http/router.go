package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/learnhub/user-service/internal/application/auth"
	"github.com/learnhub/user-service/internal/application/otp"
	"github.com/learnhub/user-service/internal/config"
	"github.com/learnhub/user-service/internal/transport/http/handler"
	appmiddleware "github.com/learnhub/user-service/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:       deps.OTPStore,
		Notifier:    deps.OTPNotifier,
		CodeLength:  cfg.OTPLength,
		TTL:         cfg.OTPTTL,
		MaxAttempts: cfg.OTPMaxAttempts,
	})

	authDeps := auth.ServiceDeps{
		UserRepo:   deps.UserRepo,
		OTPService: otpSvc,
		Tokens:     deps.JWTProvider,
		TTLs: auth.TokenTTLs{
			Verify:  cfg.VerifyTokenTTL,
			Reset:   cfg.ResetTokenTTL,
			Session: cfg.SessionTokenTTL,
		},
	}
	if deps.GoogleVerifier != nil {
		authDeps.GoogleVerifier = deps.GoogleVerifier
	}
	authSvc := auth.NewService(authDeps)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(authSvc)

	r.Get("/health", healthH.Check)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// ── Public routes (no auth) ──────────────────────────────────
			r.With(sensitiveRL.Limit).Post("/pre-signup", authH.PreSignup)
			r.With(sensitiveRL.Limit).Post("/send-verification-otp", authH.SendVerificationOTP)
			r.With(sensitiveRL.Limit).Post("/verify-email-otp", authH.VerifyEmailOTP)
			r.Post("/complete-signup", authH.CompleteSignup)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.With(sensitiveRL.Limit).Post("/forgot-password", authH.ForgotPassword)
			r.With(sensitiveRL.Limit).Post("/verify-reset-otp", authH.VerifyResetOTP)
			r.Post("/reset-password", authH.ResetPassword)
			r.Post("/google-login", authH.GoogleLogin)
			r.Post("/apple-login", authH.AppleLogin)
			r.Get("/user-by-email", authH.UserByEmail)

			// ── Authenticated routes ─────────────────────────────────────
			r.With(authMw).Get("/verify", authH.Verify)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authMw)
			r.Get("/me", userH.Me)
		})
	})

	return r
}
