package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/middleware"
	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/repository"
)

// AIHandler is the read-only machine surface.  Every route sits behind
// API-key auth plus a per-route permission check; rate limiting and caching
// are applied at the router.
type AIHandler struct {
	Cfg      config.Config
	Products *repository.ProductRepo
}

func NewAIHandler(cfg config.Config, p *repository.ProductRepo) *AIHandler {
	return &AIHandler{Cfg: cfg, Products: p}
}

// trainingProduct is the export shape consumed by model training jobs.
// It flattens the catalog entry and keeps only textual, non-operational
// fields.
type trainingProduct struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Description     *string              `json:"description"`
	Category        string               `json:"category"`
	ProductType     string               `json:"product_type"`
	Disclaimer      string               `json:"disclaimer"`
	SupplementFacts *string              `json:"supplement_facts"`
	InStock         bool                 `json:"in_stock"`
	DosageOptions   []model.DosageOption `json:"dosage_options"`
}

func toTraining(p model.Product) trainingProduct {
	return trainingProduct{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Category:        p.Category,
		ProductType:     p.ProductType,
		Disclaimer:      p.Disclaimer,
		SupplementFacts: p.SupplementFacts,
		InStock:         p.InStock,
		DosageOptions:   p.DosageOptions,
	}
}

// TrainingProducts dumps the whole catalog in training shape.
func (h *AIHandler) TrainingProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()
	products, err := h.Products.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list products"})
	}
	out := make([]trainingProduct, 0, len(products))
	for _, p := range products {
		out = append(out, toTraining(p))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"products":     out,
		"count":        len(out),
		"generated_at": time.Now().UTC(),
	})
}

type productQueryReq struct {
	ProductID string `json:"product_id"`
}

// QueryProduct looks a single product up by slug.
func (h *AIHandler) QueryProduct(c echo.Context) error {
	var req productQueryReq
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, err := h.Products.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"product": toTraining(p)})
}

// maxBatchIDs bounds one batch lookup.
const maxBatchIDs = 50

type batchQueryReq struct {
	ProductIDs []string `json:"product_ids"`
}

// QueryBatch resolves up to maxBatchIDs products; unknown ids are simply
// absent from the response rather than failing the call.
func (h *AIHandler) QueryBatch(c echo.Context) error {
	var req batchQueryReq
	if err := c.Bind(&req); err != nil || len(req.ProductIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_ids required"})
	}
	if len(req.ProductIDs) > maxBatchIDs {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at most 50 product ids per request"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	found := make([]trainingProduct, 0, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		p, err := h.Products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		found = append(found, toTraining(p))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"products":        found,
		"requested_count": len(req.ProductIDs),
		"found_count":     len(found),
	})
}

// Health echoes the authenticated key so integrators can confirm their
// credential and its grants.
func (h *AIHandler) Health(c echo.Context) error {
	key := middleware.APIKeyFrom(c)
	if key == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":      "ok",
		"key_name":    key.Name,
		"permissions": key.Permissions,
		"timestamp":   time.Now().UTC(),
	})
}
