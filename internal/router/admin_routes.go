package router

import (
	"github.com/labstack/echo/v4"

	"github.com/purefire/storefront-api/internal/middleware"
	"github.com/purefire/storefront-api/internal/model"
)

// registerAdmin mounts the back-office surface.  The token endpoints are
// open; everything else requires a live access token, with admin-only
// gates on prices, catalog lifecycle, user management, API keys, bulk
// imports and the audit trail.  Catalog reads and descriptive edits are
// open to content editors too.
func registerAdmin(api *echo.Group, d Deps) {
	aa := api.Group("/admin/auth")
	aa.POST("/login", d.AdminAuth.Login)
	aa.POST("/refresh", d.AdminAuth.Refresh)
	aa.POST("/logout", d.AdminAuth.Logout)

	admin := api.Group("/admin",
		middleware.AdminAuth(d.Cfg.JWTSecret, d.Admins))
	admin.GET("/auth/me", d.AdminAuth.Me)
	admin.POST("/auth/change-password", d.AdminAuth.ChangePassword)

	adminOnly := middleware.RequireRole(model.RoleAdmin)
	editors := middleware.RequireRole(model.RoleAdmin, model.RoleContentEditor)

	// catalog; mutations go through the audit hook
	admin.GET("/products", d.Products.List, editors)
	admin.GET("/products/:id", d.Products.Get, editors)
	admin.POST("/products", d.Products.Create, adminOnly,
		middleware.AuditLog(d.Audit, "product.create", "product"))
	admin.PUT("/products/:id", d.Products.Update, editors,
		middleware.AuditLog(d.Audit, "product.update", "product"))
	admin.PATCH("/products/:id/price", d.Products.UpdatePrice, adminOnly,
		middleware.AuditLog(d.Audit, "product.price_update", "product"))
	admin.PATCH("/products/:id/stock", d.Products.UpdateStock, editors,
		middleware.AuditLog(d.Audit, "product.stock_update", "product"))
	admin.DELETE("/products/:id", d.Products.Delete, adminOnly,
		middleware.AuditLog(d.Audit, "product.delete", "product"))

	// bulk CSV pipeline
	admin.POST("/bulk/preview", d.Bulk.Preview, adminOnly)
	admin.POST("/bulk/apply", d.Bulk.Apply, adminOnly)
	admin.GET("/bulk/template", d.Bulk.Template)
	admin.GET("/bulk/export", d.Bulk.Export)

	// audit trail (read only)
	admin.GET("/audit/logs", d.AuditLogs.List, adminOnly)
	admin.GET("/audit/logs/:entityType/:entityId", d.AuditLogs.ForEntity, adminOnly)
	admin.GET("/audit/stats", d.AuditLogs.Stats, adminOnly)

	// back-office users
	admin.GET("/users", d.Users.List, adminOnly)
	admin.POST("/users", d.Users.Create, adminOnly)
	admin.PATCH("/users/:id/role", d.Users.UpdateRole, adminOnly)
	admin.PATCH("/users/:id/toggle-active", d.Users.ToggleActive, adminOnly)
	admin.DELETE("/users/:id", d.Users.Delete, adminOnly)

	// machine credentials
	admin.GET("/api-keys", d.APIKeys.List, adminOnly)
	admin.POST("/api-keys", d.APIKeys.Create, adminOnly)
	admin.PATCH("/api-keys/:id/revoke", d.APIKeys.Revoke, adminOnly)
	admin.DELETE("/api-keys/:id", d.APIKeys.Delete, adminOnly)
}
