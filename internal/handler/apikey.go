package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/middleware"
	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/repository"
)

// APIKeyHandler manages machine credentials for the AI surface.  The secret
// is generated server side and returned exactly once at creation; only its
// digest is stored, so there is no way to show it again.
type APIKeyHandler struct {
	Cfg   config.Config
	Keys  *repository.APIKeyRepo
	Audit middleware.AuditRecorder
}

func NewAPIKeyHandler(cfg config.Config, k *repository.APIKeyRepo, audit middleware.AuditRecorder) *APIKeyHandler {
	return &APIKeyHandler{Cfg: cfg, Keys: k, Audit: audit}
}

type createKeyReq struct {
	Name          string   `json:"name"`
	Permissions   []string `json:"permissions"`
	ExpiresInDays *int     `json:"expires_in_days"`
}

func (h *APIKeyHandler) Create(c echo.Context) error {
	var req createKeyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if len(req.Permissions) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one permission is required"})
	}
	for _, p := range req.Permissions {
		if !validPermission(p) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   "invalid permission " + strconv.Quote(p),
				"allowed": model.ValidPermissions,
			})
		}
	}
	var expiresAt *time.Time
	if req.ExpiresInDays != nil {
		if *req.ExpiresInDays < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "expires_in_days must be positive"})
		}
		t := time.Now().AddDate(0, 0, *req.ExpiresInDays)
		expiresAt = &t
	}

	secret, err := repository.GenerateSecret()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate key"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Keys.Create(ctx, secret, req.Name, req.Permissions, middleware.AdminID(c), expiresAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create key"})
	}
	middleware.RecordManual(c, h.Audit, "api_key.create", "api_key",
		strconv.FormatUint(id, 10), echo.Map{"name": req.Name, "permissions": req.Permissions})

	return c.JSON(http.StatusCreated, echo.Map{
		"id":          id,
		"name":        req.Name,
		"key":         secret, // shown once, store it now
		"permissions": req.Permissions,
		"expires_at":  expiresAt,
	})
}

func (h *APIKeyHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	keys, err := h.Keys.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list keys"})
	}
	return c.JSON(http.StatusOK, echo.Map{"api_keys": keys})
}

// Revoke deactivates a key without deleting its row, so audit references
// stay resolvable.
func (h *APIKeyHandler) Revoke(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid key id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Keys.Revoke(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "key not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to revoke key"})
	}
	middleware.RecordManual(c, h.Audit, "api_key.revoke", "api_key", c.Param("id"), nil)
	return c.JSON(http.StatusOK, echo.Map{"message": "key revoked"})
}

func (h *APIKeyHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid key id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Keys.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "key not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete key"})
	}
	middleware.RecordManual(c, h.Audit, "api_key.delete", "api_key", c.Param("id"), nil)
	return c.JSON(http.StatusOK, echo.Map{"message": "key deleted"})
}

func validPermission(p string) bool {
	for _, v := range model.ValidPermissions {
		if p == v {
			return true
		}
	}
	return false
}
