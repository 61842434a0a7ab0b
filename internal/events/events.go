// Package events fans out sale and inventory lifecycle events. Events
// are published to redis channels and bridged to dashboard clients over
// WebSocket. Publishing is best-effort: failures are logged and never
// fail the operation that produced the event.
package events

import (
	"context"
	"time"
)

const (
	TypeSaleCreated     = "sale.created"
	TypeSaleCompleted   = "sale.completed"
	TypeSaleCancelled   = "sale.cancelled"
	TypeSaleRefunded    = "sale.refunded"
	TypePaymentRecorded = "sale.payment_recorded"
	TypeStockAdjusted   = "inventory.adjusted"
	TypeStockDecrement  = "inventory.sale_decrement"
)

type Event struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher discards events. Used in tests and when redis is
// not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
