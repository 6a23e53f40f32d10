package auth

import (
	"testing"
	"time"

	"ziplink/config"

	"github.com/stretchr/testify/assert"
)

func newTestConfig(expiry time.Duration) *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			SigningSecret:     "test_signing_secret_key_very_long_for_testing",
			AccessTokenExpiry: expiry,
		},
	}
}

func TestJWTService_IssueAndValidateAccessToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(15 * time.Minute))
	assert.NoError(t, err)
	assert.NotNil(t, jwtService)

	accessToken, err := jwtService.IssueAccessToken("42")
	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	claims, err := jwtService.ValidateAccessToken(accessToken)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, "42", claims.UserID)
}

func TestJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService(&config.Config{Auth: &config.AuthConfig{}})
	assert.Error(t, err)

	_, err = NewJWTService(&config.Config{})
	assert.Error(t, err)
}

func TestJWTService_InvalidToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(15 * time.Minute))
	assert.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(-time.Minute))
	assert.NoError(t, err)

	token, err := jwtService.IssueAccessToken("42")
	assert.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_TamperedToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(15 * time.Minute))
	assert.NoError(t, err)

	otherService, err := NewJWTService(&config.Config{
		Auth: &config.AuthConfig{
			SigningSecret:     "a_completely_different_secret_key",
			AccessTokenExpiry: 15 * time.Minute,
		},
	})
	assert.NoError(t, err)

	token, err := otherService.IssueAccessToken("42")
	assert.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_AccessTokenExpiry(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(time.Minute))
	assert.NoError(t, err)
	assert.Equal(t, time.Minute, jwtService.AccessTokenExpiry())
}
