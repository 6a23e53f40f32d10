// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"ziplink/config"
	"ziplink/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret    string        // Secret key for signing access tokens.
	accessTTL time.Duration // Time-to-live for access tokens.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.Auth == nil || cfg.Auth.SigningSecret == "" {
		return nil, errors.New("jwt signing secret must be provided")
	}

	return &jwtService{
		secret:    cfg.Auth.SigningSecret,
		accessTTL: cfg.Auth.AccessTokenExpiry,
	}, nil
}

// IssueAccessToken creates a signed, short-lived claims token binding the user id.
func (s *jwtService) IssueAccessToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,                      // Subject (who the token is for)
		"iat":  now.Unix(),                  // Issued At
		"exp":  now.Add(s.accessTTL).Unix(), // Expiration Time
		"type": "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}

	return signed, nil
}

// ValidateAccessToken checks the validity of a token string against the signing secret.
func (s *jwtService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse access token")
	}
	if !token.Valid {
		return nil, errors.New("access token is not valid")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected access token claims")
	}

	userID, ok := mapClaims["sub"].(string)
	if !ok || userID == "" {
		return nil, errors.New("access token missing subject")
	}

	return &service.Claims{UserID: userID}, nil
}

// AccessTokenExpiry returns the configured duration for access tokens.
func (s *jwtService) AccessTokenExpiry() time.Duration {
	return s.accessTTL
}
