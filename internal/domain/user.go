package domain

import "time"

// Roles recognised by the platform.
const (
	RoleStudent   = "student"
	RoleTeacher   = "teacher"
	RoleInstitute = "institute"
	RoleParent    = "parent"
)

// ValidRole reports whether role is one of the platform roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleInstitute, RoleParent:
		return true
	}
	return false
}

// Auth providers for federated accounts.
const (
	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
	AuthProviderApple  = "apple"
)

type User struct {
	UserID         string     `json:"id" dynamodbav:"user_id"`
	Email          string     `json:"email" dynamodbav:"email"`
	Phone          string     `json:"phone,omitempty" dynamodbav:"phone"`
	PasswordHash   string     `json:"-" dynamodbav:"password_hash"`
	Role           string     `json:"role" dynamodbav:"role"`
	FirstName      string     `json:"firstName" dynamodbav:"first_name"`
	LastName       string     `json:"lastName" dynamodbav:"last_name"`
	EmailConfirmed bool       `json:"email_verified" dynamodbav:"email_confirmed"`
	AuthProvider   string     `json:"auth_provider,omitempty" dynamodbav:"auth_provider"`
	Enable         int        `json:"enable" dynamodbav:"enable"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt      time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// Profile carries the user attributes collected during signup or asserted by
// a federated identity provider.
type Profile struct {
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Role      string `json:"role" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
