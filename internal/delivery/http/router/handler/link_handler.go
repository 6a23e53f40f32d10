package handler

import (
	"log/slog"
	"net/http"

	"ziplink/internal/delivery/http/middleware"
	"ziplink/internal/delivery/http/response"
	"ziplink/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// LinkHandler holds dependencies for short-link handlers.
type LinkHandler struct {
	uc     usecase.LinkUsecase
	logger *slog.Logger
}

// NewLinkHandler is the constructor for LinkHandler, injected by Fx.
func NewLinkHandler(uc usecase.LinkUsecase, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{uc: uc, logger: logger}
}

type createLinkRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type linkResponse struct {
	Alias    string `json:"alias"`
	URL      string `json:"url"`
	ShortURL string `json:"short_url,omitempty"`
}

// CreateLink mints a short link for the caller's URL.
func (h *LinkHandler) CreateLink(c echo.Context) error {
	var req createLinkRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid link input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.CreateLink(c.Request().Context(), usecase.CreateLinkInput{
		URL:       req.URL,
		CreatedBy: middleware.UserID(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, linkResponse{
		Alias:    output.Link.Alias,
		URL:      output.Link.URL,
		ShortURL: output.ShortURL,
	}, "Link created")
}

// Redirect resolves an alias and redirects to the original URL.
func (h *LinkHandler) Redirect(c echo.Context) error {
	link, err := h.uc.ResolveAlias(c.Request().Context(), c.Param("alias"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Redirect(http.StatusMovedPermanently, link.URL)
}

// ListLinks returns the caller's links, newest first.
func (h *LinkHandler) ListLinks(c echo.Context) error {
	links, err := h.uc.ListUserLinks(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	items := make([]linkResponse, 0, len(links))
	for _, link := range links {
		items = append(items, linkResponse{Alias: link.Alias, URL: link.URL})
	}

	return response.Success(c, http.StatusOK, items, "")
}

// DeleteLink removes one of the caller's links.
func (h *LinkHandler) DeleteLink(c echo.Context) error {
	alias := c.Param("alias")

	if err := h.uc.DeleteLink(c.Request().Context(), middleware.UserID(c), alias); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"alias": alias}, "Link deleted")
}

// LinkQR serves a PNG QR code for an alias.
func (h *LinkHandler) LinkQR(c echo.Context) error {
	png, err := h.uc.LinkQR(c.Request().Context(), c.Param("alias"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
