package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderEvent describes a committed sale or purchase and the stock movements it
// appended to the ledger.
type OrderEvent struct {
	Type       TransactionType `json:"type"`
	OrderID    string          `json:"order_id"`
	TenantID   string          `json:"tenant_id"`
	Total      decimal.Decimal `json:"total"`
	Movements  []LedgerEntry   `json:"movements"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Publisher receives committed orders. It is called after commit, so an error
// never undoes the order.
type Publisher interface {
	PublishOrder(ctx context.Context, ev OrderEvent) error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) PublishOrder(context.Context, OrderEvent) error { return nil }
