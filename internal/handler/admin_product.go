package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/repository"
)

// ProductHandler serves the back-office catalog surface.  Route-level role
// middleware decides who gets here; the handler itself only validates
// payloads.
type ProductHandler struct {
	Cfg      config.Config
	Products *repository.ProductRepo
}

func NewProductHandler(cfg config.Config, p *repository.ProductRepo) *ProductHandler {
	return &ProductHandler{Cfg: cfg, Products: p}
}

// product ids are slugs shared with the storefront and CSV imports
var productIDPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// List returns the full catalog with dosage options attached.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	products, err := h.Products.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list products"})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products, "count": len(products)})
}

// Get returns a single product by slug.
func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, err := h.Products.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"product": p})
}

type createProductReq struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Description     *string              `json:"description"`
	Category        string               `json:"category"`
	ProductType     string               `json:"product_type"`
	Disclaimer      string               `json:"disclaimer"`
	Image           *string              `json:"image"`
	SupplementFacts *string              `json:"supplement_facts"`
	InStock         *bool                `json:"in_stock"`
	DosageOptions   []model.DosageOption `json:"dosage_options"`
}

// Create inserts a catalog entry.  A product created without a disclaimer
// gets the default text for its type.
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ID == "" || req.Name == "" || req.Category == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id, name and category are required"})
	}
	if !productIDPattern.MatchString(req.ID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id must be a lowercase slug"})
	}
	if len(req.DosageOptions) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one dosage option is required"})
	}
	for _, o := range req.DosageOptions {
		if o.Size == "" || o.PriceUSD < 0 || o.PriceEUR < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each dosage option needs a size and non-negative prices"})
		}
	}
	ptype := req.ProductType
	if ptype == "" {
		ptype = model.ProductTypeSupplement
	}
	if ptype != model.ProductTypeSupplement && ptype != model.ProductTypeResearch {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product_type"})
	}
	disclaimer := req.Disclaimer
	if disclaimer == "" {
		disclaimer = model.DefaultDisclaimer(ptype)
	}
	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.Create(ctx, model.Product{
		ID:              req.ID,
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		ProductType:     ptype,
		Disclaimer:      disclaimer,
		Image:           req.Image,
		SupplementFacts: req.SupplementFacts,
		InStock:         inStock,
		DosageOptions:   req.DosageOptions,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "product id already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"product": p})
}

type updateProductReq struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	Category        *string `json:"category"`
	Image           *string `json:"image"`
	SupplementFacts *string `json:"supplement_facts"`
}

// Update applies a partial field update.  Only descriptive fields are
// editable here; prices and stock have their own endpoints so they can be
// gated and audited separately.
func (h *ProductHandler) Update(c echo.Context) error {
	var req updateProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.SupplementFacts != nil {
		updates["supplement_facts"] = *req.SupplementFacts
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.Update(ctx, c.Param("id"), updates)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}
	return c.JSON(http.StatusOK, echo.Map{"product": p})
}

type updatePriceReq struct {
	DosageIndex int      `json:"dosage_index"`
	PriceUSD    *float64 `json:"price_usd"`
	PriceEUR    *float64 `json:"price_eur"`
}

// UpdatePrice sets both currency prices on one dosage option, addressed by
// its position in the product's option list.
func (h *ProductHandler) UpdatePrice(c echo.Context) error {
	var req updatePriceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PriceUSD == nil || req.PriceEUR == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_usd and price_eur are required"})
	}
	if *req.PriceUSD < 0 || *req.PriceEUR < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prices must be non-negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.UpdatePrice(ctx, c.Param("id"), req.DosageIndex, *req.PriceUSD, *req.PriceEUR)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "dosage index out of range"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update price"})
	}
	return c.JSON(http.StatusOK, echo.Map{"product": p})
}

type updateStockReq struct {
	InStock *bool `json:"in_stock"`
}

// UpdateStock flips the in-stock flag.
func (h *ProductHandler) UpdateStock(c echo.Context) error {
	var req updateStockReq
	if err := c.Bind(&req); err != nil || req.InStock == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "in_stock is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.UpdateStock(ctx, c.Param("id"), *req.InStock)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update stock"})
	}
	return c.JSON(http.StatusOK, echo.Map{"product": p})
}

// Delete removes a product and its dosage options.
func (h *ProductHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Products.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
