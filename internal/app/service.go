package app

import (
	"context"

	"pharmacy-erp/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println and no display logic of any kind.
type ApplicationService interface {
	// CreateMedicine registers a medicine in the tenant's catalog.
	CreateMedicine(ctx context.Context, req CreateMedicineRequest) (*core.Medicine, error)

	// ListMedicines returns the tenant's catalog in registration order.
	ListMedicines(ctx context.Context, tenantID string) (*MedicineListResult, error)

	// CreateBatch registers a new lot of an existing medicine with zero stock.
	CreateBatch(ctx context.Context, req CreateBatchRequest) (*core.Batch, error)

	// CreateSale allocates stock for every line and records the sale atomically.
	CreateSale(ctx context.Context, req CreateSaleRequest) (*SaleResult, error)

	// GetSale returns a recorded sale with its items.
	GetSale(ctx context.Context, tenantID, saleID string) (*SaleResult, error)

	// CreatePurchase records received packs against existing batches atomically.
	CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResult, error)

	// GetPurchase returns a recorded purchase with its items.
	GetPurchase(ctx context.Context, tenantID, purchaseID string) (*PurchaseResult, error)

	// GetBatchStock returns a batch with its stock derived from the ledger.
	GetBatchStock(ctx context.Context, tenantID, batchID string) (*BatchStockResult, error)

	// GetBatchLedger returns every ledger entry of a batch in recording order.
	GetBatchLedger(ctx context.Context, tenantID, batchID string) (*LedgerResult, error)

	// GetStockLevels returns every batch of the tenant with its current stock.
	GetStockLevels(ctx context.Context, tenantID string) (*StockResult, error)

	// SearchMedicines finds in-stock medicines whose composition contains term.
	SearchMedicines(ctx context.Context, tenantID, term string) (*SearchResult, error)

	// GetLowStock lists medicines below the configured alert threshold.
	GetLowStock(ctx context.Context, tenantID string) (*LowStockResult, error)

	// GetExpiringBatches lists in-stock batches expiring within withinDays.
	// Zero uses the configured window.
	GetExpiringBatches(ctx context.Context, tenantID string, withinDays int) (*ExpiringResult, error)

	// GetSalesSummary totals sales recorded on or after since (YYYY-MM-DD).
	// An empty since means today.
	GetSalesSummary(ctx context.Context, tenantID, since string) (*core.SalesSummary, error)
}
