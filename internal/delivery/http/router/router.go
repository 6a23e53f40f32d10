// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"ziplink/internal/delivery/http/middleware"
	"ziplink/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	IdentityHandler *handler.IdentityHandler
	LinkHandler     *handler.LinkHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	identityHandler *handler.IdentityHandler
	linkHandler     *handler.LinkHandler
	authMiddleware  *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		identityHandler: params.IdentityHandler,
		linkHandler:     params.LinkHandler,
		authMiddleware:  params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Sign-in flow. Refresh is unauthenticated: the refresh token is the credential.
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/code", r.identityHandler.RequestCode)
		authGroup.POST("/signin", r.identityHandler.SignIn)
		authGroup.POST("/refresh", r.identityHandler.RefreshToken)
	}

	// Session management requires a live access token.
	connGroup := e.Group("/connections")
	connGroup.Use(r.authMiddleware.Authenticate)
	{
		connGroup.GET("", r.identityHandler.ListConnections)
		connGroup.DELETE("/:id", r.identityHandler.CloseConnection)
	}

	// Link management for signed-in users.
	linkGroup := e.Group("/links")
	linkGroup.Use(r.authMiddleware.Authenticate)
	{
		linkGroup.POST("", r.linkHandler.CreateLink)
		linkGroup.GET("", r.linkHandler.ListLinks)
		linkGroup.DELETE("/:alias", r.linkHandler.DeleteLink)
	}

	// Public resolution endpoints.
	e.GET("/:alias", r.linkHandler.Redirect)
	e.GET("/:alias/qr", r.linkHandler.LinkQR)
}
