package model

import "time"

// Order records a checkout snapshot.  All money fields are fixed at creation
// time from the caller-submitted cart and are never recomputed against the
// live catalog afterwards.  AccountID is null for guest checkouts.
//
// Fields:
//  ID                – primary key identifier.
//  AccountID         – owning account (null for guests).
//  OrderNumber       – unique generated identifier exposed to customers.
//  Status            – order lifecycle state (pending, paid, shipped, ...).
//  Subtotal/Shipping/Tax/Total – per-currency amounts snapshotted at checkout.
//  Currency          – the currency the customer chose to pay in.
//  PaymentIntentID   – external payment reference, if any.
//  PaymentStatus     – state reported by the payment follow-up call.
//  ShippingAddressID – captured address row, if one was supplied.
//  Notes             – free-form customer notes.
type Order struct {
    ID                uint64     `json:"id"`                  // orders.id
    AccountID         *uint64    `json:"account_id"`          // orders.account_id (nullable)
    OrderNumber       string     `json:"order_number"`        // orders.order_number
    Status            string     `json:"status"`              // orders.status
    SubtotalUSD       float64    `json:"subtotal_usd"`        // orders.subtotal_usd
    SubtotalEUR       float64    `json:"subtotal_eur"`        // orders.subtotal_eur
    ShippingUSD       float64    `json:"shipping_usd"`        // orders.shipping_usd
    ShippingEUR       float64    `json:"shipping_eur"`        // orders.shipping_eur
    TaxUSD            float64    `json:"tax_usd"`             // orders.tax_usd
    TaxEUR            float64    `json:"tax_eur"`             // orders.tax_eur
    TotalUSD          float64    `json:"total_usd"`           // orders.total_usd
    TotalEUR          float64    `json:"total_eur"`           // orders.total_eur
    Currency          string     `json:"currency"`            // orders.currency
    PaymentIntentID   *string    `json:"payment_intent_id"`   // orders.payment_intent_id (nullable)
    PaymentStatus     string     `json:"payment_status"`      // orders.payment_status
    ShippingAddressID *uint64    `json:"shipping_address_id"` // orders.shipping_address_id (nullable)
    Notes             *string    `json:"notes"`               // orders.notes (nullable)
    Items             []OrderItem `json:"items,omitempty"`    // attached from order_items
    Address           *Address    `json:"address,omitempty"`  // attached from addresses
    CreatedAt         time.Time  `json:"created_at"`          // orders.created_at
    UpdatedAt         time.Time  `json:"updated_at"`          // orders.updated_at
}

// OrderItem is an immutable line-item snapshot.  Product name, dosage and
// prices are copied at order time so later catalog edits cannot change what
// the customer agreed to pay.
type OrderItem struct {
    ID          uint64  `json:"id"`           // order_items.id
    OrderID     uint64  `json:"order_id"`     // order_items.order_id
    ProductID   string  `json:"product_id"`   // order_items.product_id
    ProductName string  `json:"product_name"` // order_items.product_name
    Dosage      string  `json:"dosage"`       // order_items.dosage
    Quantity    int     `json:"quantity"`     // order_items.quantity
    PriceUSD    float64 `json:"price_usd"`    // order_items.price_usd
    PriceEUR    float64 `json:"price_eur"`    // order_items.price_eur
}
