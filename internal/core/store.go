package core

import (
	"context"
	"time"
)

// Reader is the tenant-scoped read side of the ledger store. Every method
// filters on tenantID; a row owned by another tenant is reported as ErrNotFound.
type Reader interface {
	GetMedicine(ctx context.Context, tenantID, medicineID string) (*Medicine, error)
	ListMedicines(ctx context.Context, tenantID string) ([]Medicine, error)

	GetBatch(ctx context.Context, tenantID, batchID string) (*Batch, error)
	// ListBatches returns batches in insertion order. An empty medicineID lists
	// every batch of the tenant.
	ListBatches(ctx context.Context, tenantID, medicineID string) ([]Batch, error)

	// SumStock returns Σ quantity_change per batch in a single grouped query.
	// Batches with no ledger entries are absent from the map. A nil batchIDs
	// sums every batch of the tenant.
	SumStock(ctx context.Context, tenantID string, batchIDs []string) (map[string]int64, error)
	// ListLedger returns a batch's entries oldest first.
	ListLedger(ctx context.Context, tenantID, batchID string) ([]LedgerEntry, error)

	GetSale(ctx context.Context, tenantID, saleID string) (*Sale, error)
	// ListSalesSince returns sale headers (no items) created at or after since.
	ListSalesSince(ctx context.Context, tenantID string, since time.Time) ([]Sale, error)
	GetPurchase(ctx context.Context, tenantID, purchaseID string) (*Purchase, error)
}

// Tx is one unit of work. Writes become visible to other readers only when the
// function passed to Store.WithinTx returns nil.
type Tx interface {
	Reader

	// LockMedicineBatches serializes writers on every batch of the given
	// medicines. Locks are taken in ascending batch id order.
	LockMedicineBatches(ctx context.Context, tenantID string, medicineIDs []string) error
	// LockBatches serializes writers on the given batches in ascending id order.
	LockBatches(ctx context.Context, tenantID string, batchIDs []string) error

	InsertMedicine(ctx context.Context, m *Medicine) error
	InsertBatch(ctx context.Context, b *Batch) error
	InsertSale(ctx context.Context, s *Sale) error
	InsertPurchase(ctx context.Context, p *Purchase) error
	AppendLedger(ctx context.Context, entries []LedgerEntry) error
}

// Store is the injected storage handle.
type Store interface {
	Reader
	// WithinTx runs fn in a single unit of work. If fn returns an error every
	// write made through tx is discarded and the error is returned unchanged.
	// Storage-level conflicts surface as ErrTransactionAborted.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
