// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ziplink/internal/delivery/http/middleware"
	"ziplink/internal/delivery/http/response"
	"ziplink/internal/domain/entity"
	"ziplink/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// IdentityHandler holds dependencies for sign-in and session handlers.
type IdentityHandler struct {
	uc     usecase.IdentityUsecase
	logger *slog.Logger
}

// NewIdentityHandler is the constructor for IdentityHandler, injected by Fx.
func NewIdentityHandler(uc usecase.IdentityUsecase, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{uc: uc, logger: logger}
}

type requestCodeRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type requestCodeResponse struct {
	Code      string `json:"code"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// RequestCode issues a one-time sign-in code for a user.
func (h *IdentityHandler) RequestCode(c echo.Context) error {
	var req requestCodeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid code request input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.RequestCode(c.Request().Context(), usecase.RequestCodeInput{UserID: req.UserID})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, requestCodeResponse{
		Code:      output.Code,
		ExpiresIn: int64(output.TTL / time.Second),
	}, "Code issued")
}

type connectionInfoRequest struct {
	OS       string `json:"os"`
	Browser  string `json:"browser"`
	Location string `json:"location"`
	IP       string `json:"ip"`
}

type signInRequest struct {
	Code string                `json:"code" validate:"required"`
	Info connectionInfoRequest `json:"info"`
}

type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignIn exchanges a verification code for a credential pair.
func (h *IdentityHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid sign-in input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.SignIn(c.Request().Context(), usecase.SignInInput{
		Code: req.Code,
		Info: h.connectionInfo(c, req.Info),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sessionResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
	}, "Signed in")
}

type refreshRequest struct {
	UserID       string                `json:"user_id" validate:"required"`
	RefreshToken string                `json:"refresh_token" validate:"required"`
	Info         connectionInfoRequest `json:"info"`
}

// RefreshToken rotates a session's credential pair. The access token may
// already be expired at this point, so the route is unauthenticated and
// ownership is proven by the refresh token itself.
func (h *IdentityHandler) RefreshToken(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid refresh input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.RefreshToken(c.Request().Context(), usecase.RefreshInput{
		UserID:       req.UserID,
		RefreshToken: req.RefreshToken,
		Info:         h.connectionInfo(c, req.Info),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sessionResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
	}, "Token refreshed")
}

// CloseConnection terminates one of the caller's sessions.
func (h *IdentityHandler) CloseConnection(c echo.Context) error {
	connectionID := c.Param("id")

	err := h.uc.CloseConnection(c.Request().Context(), usecase.CloseConnectionInput{
		UserID:       middleware.UserID(c),
		ConnectionID: connectionID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"connection_id": connectionID}, "Connection closed")
}

type connectionResponse struct {
	ID        string    `json:"id"`
	OS        string    `json:"os,omitempty"`
	Browser   string    `json:"browser,omitempty"`
	Location  string    `json:"location,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type connectionPageResponse struct {
	Items     []connectionResponse `json:"items"`
	PageIndex int                  `json:"page_index"`
	PageCount int                  `json:"page_count"`
}

// ListConnections returns one page of the caller's sessions, newest first.
func (h *IdentityHandler) ListConnections(c echo.Context) error {
	pageIndex, err := queryInt(c, "page", 0)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "page must be an integer")
	}
	pageSize, err := queryInt(c, "size", 10)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "size must be an integer")
	}

	page, err := h.uc.ListConnections(c.Request().Context(), usecase.ListConnectionsInput{
		UserID:    middleware.UserID(c),
		PageIndex: pageIndex,
		PageSize:  pageSize,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	items := make([]connectionResponse, 0, len(page.Items))
	for _, conn := range page.Items {
		items = append(items, connectionResponse{
			ID:        conn.ID,
			OS:        conn.Info.OS,
			Browser:   conn.Info.Browser,
			Location:  conn.Info.Location,
			IP:        conn.Info.IP,
			CreatedAt: conn.CreatedAt,
		})
	}

	return response.Success(c, http.StatusOK, connectionPageResponse{
		Items:     items,
		PageIndex: page.PageIndex,
		PageCount: page.PageCount,
	}, "")
}

// connectionInfo fills in the caller's address when the client did not send one.
func (h *IdentityHandler) connectionInfo(c echo.Context, req connectionInfoRequest) entity.ConnectionInfo {
	info := entity.ConnectionInfo{
		OS:       req.OS,
		Browser:  req.Browser,
		Location: req.Location,
		IP:       req.IP,
	}
	if info.IP == "" {
		info.IP = c.RealIP()
	}

	return info
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}

	return strconv.Atoi(raw)
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
