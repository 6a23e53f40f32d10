package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ziplink/config"
	"ziplink/internal/delivery/http/middleware"
	"ziplink/internal/delivery/http/validator"
	"ziplink/internal/infra/auth"
	"ziplink/internal/infra/cache"
	"ziplink/internal/infra/random"
	"ziplink/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSignInTestServer wires the sign-in endpoints against in-memory stores.
func newSignInTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := &config.Config{
		Auth: &config.AuthConfig{
			SigningSecret:      "integration-secret",
			CodeAlphabet:       "0123456789",
			CodeLength:         6,
			CodeTTL:            5 * time.Minute,
			TokenAlphabet:      "abcdefghijklmnopqrstuvwxyz0123456789",
			TokenLength:        32,
			ConnectionLifetime: 24 * time.Hour,
			AccessTokenExpiry:  15 * time.Minute,
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	identityUC := impl.NewIdentityService(impl.IdentityServiceParams{
		CodeStore:    cache.NewMemoryCodeStore(),
		ConnStore:    cache.NewMemoryConnectionStore(cfg.Auth.ConnectionLifetime, 0),
		Generator:    random.NewGenerator(),
		TokenService: tokenService,
		Config:       cfg,
		Logger:       logger,
	})

	identityHandler := NewIdentityHandler(identityUC, logger)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError

	e.POST("/auth/code", identityHandler.RequestCode)
	e.POST("/auth/signin", identityHandler.SignIn)
	e.POST("/auth/refresh", identityHandler.RefreshToken)
	e.GET("/connections", identityHandler.ListConnections, authMiddleware.Authenticate)
	e.DELETE("/connections/:id", identityHandler.CloseConnection, authMiddleware.Authenticate)

	return e
}

func doJSON(e *echo.Echo, method, target, body, bearer string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder, key string) string {
	t.Helper()

	var payload struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	value, _ := payload.Data[key].(string)

	return value
}

func TestIdentityHandler_SignInFlow_Integration(t *testing.T) {
	e := newSignInTestServer(t)

	// Issue a code.
	rec := doJSON(e, http.MethodPost, "/auth/code", `{"user_id":"user-1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	code := dataField(t, rec, "code")
	require.Len(t, code, 6)

	// Exchange it for a session.
	rec = doJSON(e, http.MethodPost, "/auth/signin", `{"code":"`+code+`","info":{"os":"linux"}}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	accessToken := dataField(t, rec, "access_token")
	refreshToken := dataField(t, rec, "refresh_token")
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)

	// The code is single-use.
	rec = doJSON(e, http.MethodPost, "/auth/signin", `{"code":"`+code+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_CODE")

	// The session shows up in the list.
	rec = doJSON(e, http.MethodGet, "/connections?page=0&size=10", "", accessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), refreshToken)

	// Rotate it.
	rec = doJSON(e, http.MethodPost, "/auth/refresh", `{"user_id":"user-1","refresh_token":"`+refreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := dataField(t, rec, "refresh_token")
	require.NotEmpty(t, rotated)
	assert.NotEqual(t, refreshToken, rotated)

	// The old refresh token is dead.
	rec = doJSON(e, http.MethodPost, "/auth/refresh", `{"user_id":"user-1","refresh_token":"`+refreshToken+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REFRESH_TOKEN")

	// Close the rotated connection.
	rec = doJSON(e, http.MethodDelete, "/connections/"+rotated, "", accessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/connections/"+rotated, "", accessToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "CONNECTION_NOT_FOUND")
}

func TestIdentityHandler_Authentication_Integration(t *testing.T) {
	e := newSignInTestServer(t)

	rec := doJSON(e, http.MethodGet, "/connections", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodGet, "/connections", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/auth/code", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}
