// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCreatedEvent is published after an order commits. It carries enough
// for downstream consumers to log, notify, or feed analytics without
// querying the primary database.
type OrderCreatedEvent struct {
	EventID     string  `json:"event_id"`
	OrderNumber string  `json:"order_number"`
	TotalUSD    float64 `json:"total_usd"`
	TotalEUR    float64 `json:"total_eur"`
	ItemCount   int     `json:"item_count"`
	CreatedAt   string  `json:"created_at"`
}
