package app

import "pharmacy-erp/internal/core"

// MedicineListResult is returned by ListMedicines.
type MedicineListResult struct {
	Medicines []core.Medicine `json:"medicines"`
}

// SaleResult is returned by sale operations.
type SaleResult struct {
	Sale *core.Sale `json:"sale"`
}

// PurchaseResult is returned by purchase operations.
type PurchaseResult struct {
	Purchase *core.Purchase `json:"purchase"`
}

// BatchStockResult is returned by GetBatchStock.
type BatchStockResult struct {
	Batch *core.Batch `json:"batch"`
	Stock int64       `json:"stock"`
}

// LedgerResult is returned by GetBatchLedger.
type LedgerResult struct {
	BatchID string             `json:"batch_id"`
	Entries []core.LedgerEntry `json:"entries"`
	Stock   int64              `json:"stock"`
}

// StockResult is returned by GetStockLevels.
type StockResult struct {
	TenantID string            `json:"tenant_id"`
	Levels   []core.BatchStock `json:"levels"`
}

// SearchResult is returned by SearchMedicines.
type SearchResult struct {
	Term      string               `json:"term"`
	Medicines []core.MedicineStock `json:"medicines"`
}

// LowStockResult is returned by GetLowStock.
type LowStockResult struct {
	Threshold int64               `json:"threshold"`
	Items     []core.LowStockItem `json:"items"`
}

// ExpiringResult is returned by GetExpiringBatches.
type ExpiringResult struct {
	WithinDays int               `json:"within_days"`
	Batches    []core.BatchStock `json:"batches"`
}
