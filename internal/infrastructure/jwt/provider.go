package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/learnhub/user-service/internal/config"
	"github.com/learnhub/user-service/internal/domain"
)

// Claims holds the signed token payload. Subject (in RegisteredClaims) is the
// identity the token was minted for; Purpose scopes it to one workflow.
// UserID and Role are extras carried on reset and session tokens.
type Claims struct {
	Purpose string `json:"purpose"`
	UserID  string `json:"user_id,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Extra are the optional claims a caller attaches at mint time.
type Extra struct {
	UserID string
	Role   string
}

// Provider signs and validates RS256 purpose-scoped tokens. The key pair is
// loaded once at startup and never rotated at runtime; deployments that need
// rotation must version the key and run validation against the known set.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{privateKey: privKey, publicKey: pubKey}, nil
}

// NewProviderWithKeys builds a Provider from an in-memory key pair.
func NewProviderWithKeys(priv *rsa.PrivateKey) *Provider {
	return &Provider{privateKey: priv, publicKey: &priv.PublicKey}
}

// Mint produces a signed token for subject, scoped to purpose, valid for ttl.
func (p *Provider) Mint(subject string, purpose domain.TokenPurpose, ttl time.Duration, extra Extra) (string, error) {
	now := time.Now()
	claims := Claims{
		Purpose: string(purpose),
		UserID:  extra.UserID,
		Role:    extra.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

// Validate parses and checks the token. Any failure — bad signature,
// tampering, expiry, or a purpose other than expected — comes back as
// domain.ErrTokenInvalid so callers can't distinguish the cases.
func (p *Provider) Validate(tokenStr string, expected domain.TokenPurpose) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", domain.ErrTokenInvalid)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token claims: %w", domain.ErrTokenInvalid)
	}
	if claims.Purpose != string(expected) {
		return nil, fmt.Errorf("token purpose: %w", domain.ErrTokenInvalid)
	}
	return claims, nil
}
