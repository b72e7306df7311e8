package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/repository"
)

// AuditHandler exposes the read-only audit trail: filtered listing, per-
// entity history, and aggregate stats.
type AuditHandler struct {
	Cfg  config.Config
	Logs *repository.AuditRepo
}

func NewAuditHandler(cfg config.Config, a *repository.AuditRepo) *AuditHandler {
	return &AuditHandler{Cfg: cfg, Logs: a}
}

// List returns audit entries newest first.  Query params: user_id,
// entity_type, start_date, end_date (RFC 3339 or YYYY-MM-DD), limit, offset.
func (h *AuditHandler) List(c echo.Context) error {
	var f repository.Filter
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		f.UserID = id
	}
	f.EntityType = c.QueryParam("entity_type")
	if raw := c.QueryParam("start_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
		}
		f.StartDate = &t
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
		}
		f.EndDate = &t
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be between 1 and 1000"})
		}
		f.Limit = n
	}
	if raw := c.QueryParam("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offset"})
		}
		f.Offset = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	logs, err := h.Logs.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list audit logs"})
	}
	return c.JSON(http.StatusOK, echo.Map{"logs": logs, "count": len(logs)})
}

// ForEntity returns the full history of one entity.
func (h *AuditHandler) ForEntity(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	logs, err := h.Logs.FindByEntity(ctx, c.Param("entityType"), c.Param("entityId"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load entity history"})
	}
	return c.JSON(http.StatusOK, echo.Map{"logs": logs, "count": len(logs)})
}

// Stats returns aggregate audit activity.
func (h *AuditHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	stats, err := h.Logs.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute stats"})
	}
	return c.JSON(http.StatusOK, stats)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
