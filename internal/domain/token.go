package domain

// TokenPurpose scopes a signed token to one workflow. A token minted for one
// purpose must never validate under another.
type TokenPurpose string

const (
	TokenPurposeEmailVerification TokenPurpose = "email_verification"
	TokenPurposePasswordReset     TokenPurpose = "password_reset"
	TokenPurposeSession           TokenPurpose = "session"
)
