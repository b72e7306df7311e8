package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/middleware"
	"github.com/purefire/storefront-api/internal/repository"
	"github.com/purefire/storefront-api/internal/utils"
)

// OrderEvents publishes order lifecycle events.  Nil is allowed: capture
// works without a broker.
type OrderEvents interface {
	PublishOrderCreated(orderNumber string, totalUSD, totalEUR float64, itemCount int)
}

type OrderHandler struct {
	Cfg    config.Config
	Orders *repository.OrderRepo
	Events OrderEvents
}

func NewOrderHandler(cfg config.Config, o *repository.OrderRepo, ev OrderEvents) *OrderHandler {
	return &OrderHandler{Cfg: cfg, Orders: o, Events: ev}
}

type createOrderReq struct {
	Items       []orderItemReq         `json:"items"`
	SubtotalUSD float64                `json:"subtotal_usd"`
	SubtotalEUR float64                `json:"subtotal_eur"`
	ShippingUSD float64                `json:"shipping_usd"`
	ShippingEUR float64                `json:"shipping_eur"`
	TaxUSD      float64                `json:"tax_usd"`
	TaxEUR      float64                `json:"tax_eur"`
	TotalUSD    float64                `json:"total_usd"`
	TotalEUR    float64                `json:"total_eur"`
	Currency    string                 `json:"currency"`
	Notes       *string                `json:"notes"`
	Address     *repository.NewAddress `json:"shipping_address"`
}

type orderItemReq struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Dosage      string  `json:"dosage"`
	Quantity    int     `json:"quantity"`
	PriceUSD    float64 `json:"price_usd"`
	PriceEUR    float64 `json:"price_eur"`
}

// Create captures an order.  Authentication is optional: a valid session
// attaches the order (and address) to the account, otherwise it is a guest
// order.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order must contain at least one item"})
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each item needs a product_id and a positive quantity"})
		}
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	if currency != "USD" && currency != "EUR" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported currency"})
	}

	no := repository.NewOrder{
		OrderNumber: utils.GenerateOrderNumber(),
		SubtotalUSD: req.SubtotalUSD,
		SubtotalEUR: req.SubtotalEUR,
		ShippingUSD: req.ShippingUSD,
		ShippingEUR: req.ShippingEUR,
		TaxUSD:      req.TaxUSD,
		TaxEUR:      req.TaxEUR,
		TotalUSD:    req.TotalUSD,
		TotalEUR:    req.TotalEUR,
		Currency:    currency,
		Notes:       req.Notes,
	}
	if id := middleware.AccountID(c); id != 0 {
		no.AccountID = &id
		no.Address = req.Address // addresses are only stored for known accounts
	}
	for _, it := range req.Items {
		no.Items = append(no.Items, repository.NewOrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Dosage:      it.Dosage,
			Quantity:    it.Quantity,
			PriceUSD:    it.PriceUSD,
			PriceEUR:    it.PriceEUR,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Orders.Create(ctx, no); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}
	if h.Events != nil {
		h.Events.PublishOrderCreated(no.OrderNumber, no.TotalUSD, no.TotalEUR, len(no.Items))
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"order_number": no.OrderNumber,
		"status":       "pending",
		"total_usd":    no.TotalUSD,
		"total_eur":    no.TotalEUR,
	})
}

// List returns the authenticated account's orders, newest first.
func (h *OrderHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	orders, err := h.Orders.ListByAccount(ctx, middleware.AccountID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list orders"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// Get looks an order up by its public number.  Guests may fetch any order
// (the number is the shared secret); an authenticated caller fetching an
// order that belongs to someone else gets 403.
func (h *OrderHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	o, err := h.Orders.GetByNumber(ctx, c.Param("orderNumber"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if id := middleware.AccountID(c); id != 0 && o.AccountID != nil && *o.AccountID != id {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your order"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": o})
}

type orderStatusReq struct {
	Status          *string `json:"status"`
	PaymentIntentID *string `json:"payment_intent_id"`
	PaymentStatus   *string `json:"payment_status"`
}

var orderStatuses = map[string]bool{
	"pending": true, "paid": true, "processing": true,
	"shipped": true, "delivered": true, "cancelled": true,
}

// UpdateStatus patches order lifecycle and payment fields.  Used by the
// payment follow-up call after checkout.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req orderStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status == nil && req.PaymentIntentID == nil && req.PaymentStatus == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if req.Status != nil && !orderStatuses[*req.Status] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Orders.UpdateStatus(ctx, c.Param("orderNumber"), req.Status, req.PaymentIntentID, req.PaymentStatus)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "order updated"})
}
