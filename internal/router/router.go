// Package router wires handlers and middleware onto the Echo instance.
// Everything is mounted under /api; route groups carry their own auth.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/handler"
	"github.com/purefire/storefront-api/internal/middleware"
	"github.com/purefire/storefront-api/internal/repository"
)

// Deps collects everything route registration needs.  Redis may be nil, in
// which case rate limiting and response caching degrade to passthrough.
type Deps struct {
	Cfg      config.Config
	Redis    *redis.Client
	Sessions *repository.SessionRepo
	Admins   *repository.AdminUserRepo
	Keys     *repository.APIKeyRepo
	Audit    *repository.AuditRepo

	Auth      *handler.AuthHandler
	Orders    *handler.OrderHandler
	AdminAuth *handler.AdminAuthHandler
	Products  *handler.ProductHandler
	Users     *handler.UserHandler
	Bulk      *handler.BulkHandler
	AuditLogs *handler.AuditHandler
	APIKeys   *handler.APIKeyHandler
	AI        *handler.AIHandler
}

// Register mounts every route on the Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/health", handler.Health)

	api := e.Group("/api")
	registerStorefront(api, d)
	registerAdmin(api, d)
	registerAI(api, d)
}

// registerStorefront mounts customer auth and order capture.  Order
// creation and lookup work for guests; listing requires a session.
func registerStorefront(api *echo.Group, d Deps) {
	auth := api.Group("/auth")
	auth.POST("/signup", d.Auth.Signup)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/profile", d.Auth.Profile,
		middleware.Authenticate(d.Cfg.JWTSecret, d.Sessions))

	optional := middleware.OptionalAuth(d.Cfg.JWTSecret, d.Sessions)
	api.POST("/orders", d.Orders.Create, optional)
	api.GET("/orders", d.Orders.List,
		middleware.Authenticate(d.Cfg.JWTSecret, d.Sessions))
	api.GET("/orders/:orderNumber", d.Orders.Get, optional)
	api.PATCH("/orders/:orderNumber/status", d.Orders.UpdateStatus, optional)
}
