package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the custom claims carried by access tokens.
type Claims struct {
	UserID string
	jwt.RegisteredClaims
}

// TokenService issues and validates the short-lived access token bound to a
// user id. Tokens are stateless and independently verifiable; they are never
// stored. This abstracts the signing mechanism from the use cases.
type TokenService interface {
	// IssueAccessToken creates a signed, time-bound access token for a user.
	IssueAccessToken(userID string) (string, error)

	// ValidateAccessToken checks a token's signature and expiry.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// AccessTokenExpiry returns the configured access-token lifetime.
	AccessTokenExpiry() time.Duration
}
