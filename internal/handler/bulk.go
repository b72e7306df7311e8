package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/purefire/storefront-api/internal/bulk"
	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/middleware"
	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/repository"
)

// BulkStore is the slice of the product repository the CSV pipeline needs.
// *repository.ProductRepo satisfies it; tests substitute a stub.
type BulkStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]model.Product, error)
	ApplyBulk(ctx context.Context, updates []repository.BulkUpdate) error
}

// BulkHandler drives the CSV price/stock pipeline: preview validates
// without writing, apply commits in one transaction, and template/export
// produce round-trippable CSV.
type BulkHandler struct {
	Cfg      config.Config
	Products BulkStore
	Audit    middleware.AuditRecorder
}

func NewBulkHandler(cfg config.Config, p BulkStore, audit middleware.AuditRecorder) *BulkHandler {
	return &BulkHandler{Cfg: cfg, Products: p, Audit: audit}
}

type bulkReq struct {
	CSV   string `json:"csv"`
	Force bool   `json:"force"`
}

// previewValidLimit caps how many parsed updates the preview echoes back.
const previewValidLimit = 10

// Preview parses and validates the CSV without applying anything.
func (h *BulkHandler) Preview(c echo.Context) error {
	var req bulkReq
	if err := c.Bind(&req); err != nil || req.CSV == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "csv content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	rows, err := bulk.Parse(req.CSV)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	res, err := bulk.Validate(ctx, rows, h.Products.Exists)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validation query failed"})
	}

	preview := res.Valid
	if len(preview) > previewValidLimit {
		preview = preview[:previewValidLimit]
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_rows":  res.TotalRows,
		"valid_count": len(res.Valid),
		"error_count": len(res.Errors),
		"errors":      res.Errors,
		"preview":     preview,
	})
}

// Apply validates and commits.  Any failing row blocks the whole batch
// unless force is set, in which case the valid subset is applied.
func (h *BulkHandler) Apply(c echo.Context) error {
	var req bulkReq
	if err := c.Bind(&req); err != nil || req.CSV == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "csv content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	rows, err := bulk.Parse(req.CSV)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	res, err := bulk.Validate(ctx, rows, h.Products.Exists)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validation query failed"})
	}
	if len(res.Errors) > 0 && !req.Force {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":       "validation failed; fix the rows below or set force to apply the valid subset",
			"total_rows":  res.TotalRows,
			"valid_count": len(res.Valid),
			"error_count": len(res.Errors),
			"errors":      res.Errors,
		})
	}
	if len(res.Valid) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid rows to apply", "errors": res.Errors})
	}

	if err := h.Products.ApplyBulk(ctx, res.Valid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to apply updates"})
	}
	middleware.RecordManual(c, h.Audit, "bulk.price_update", "product", "batch", echo.Map{
		"applied": len(res.Valid),
		"skipped": len(res.Errors),
		"forced":  req.Force,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message":       fmt.Sprintf("applied %d update(s)", len(res.Valid)),
		"applied_count": len(res.Valid),
		"skipped_count": len(res.Errors),
		"errors":        res.Errors,
	})
}

// Template serves a commented starter CSV.
func (h *BulkHandler) Template(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="price-update-template.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(bulk.Template()))
}

// Export dumps the current catalog in the import-compatible shape.
func (h *BulkHandler) Export(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()
	products, err := h.Products.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list products"})
	}
	out, err := bulk.Export(products)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build export"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products-export.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(out))
}
