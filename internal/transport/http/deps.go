package http

import (
	"github.com/learnhub/user-service/internal/application/otp"
	"github.com/learnhub/user-service/internal/infrastructure/dynamo"
	googleinfra "github.com/learnhub/user-service/internal/infrastructure/google"
	jwtinfra "github.com/learnhub/user-service/internal/infrastructure/jwt"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo *dynamo.UserRepo

	// OTPStore and OTPNotifier back the one-time-code flow; the store may be
	// the in-memory map or the DynamoDB table, the notifier email or SMS.
	OTPStore    otp.Store
	OTPNotifier otp.Notifier

	JWTProvider *jwtinfra.Provider

	// GoogleVerifier is optional; nil means Google sign-in profiles are
	// accepted without checking the ID token with Google.
	GoogleVerifier *googleinfra.Verifier
}
