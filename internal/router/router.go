// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-auth/internal/handler"
	"github.com/iliyamo/ecommerce-auth/internal/middleware"
	"github.com/iliyamo/ecommerce-auth/internal/model"
	"github.com/iliyamo/ecommerce-auth/internal/token"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check used by load balancers and
// monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated credential operations live under /v1/auth, protected
// endpoints under /v1 behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, codec *token.Codec) {
	g := e.Group("/v1/auth")
	g.POST("/otp", a.SendOTP)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token: the submitted token is spent whether or
	// not the caller stores the replacement.
	g.POST("/refresh-token", a.Refresh)
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.ForgotPassword)
	g.GET("/google-link", a.GoogleLink)
	g.GET("/google/callback", a.GoogleCallback)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(codec))
	auth.Use(middleware.RequireRole(model.RoleClient, model.RoleAdmin))
	auth.GET("/me", a.Me)
}
