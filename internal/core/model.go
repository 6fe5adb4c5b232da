package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of movement recorded by a ledger entry.
type TransactionType string

const (
	TransactionPurchase TransactionType = "PURCHASE"
	TransactionSale     TransactionType = "SALE"
)

// Composition is one active ingredient of a medicine.
type Composition struct {
	Drug     string `json:"drug"`
	Strength string `json:"strength"`
}

type Medicine struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenant_id"`
	BrandName    string          `json:"brand_name"`
	Manufacturer string          `json:"manufacturer"`
	DosageForm   string          `json:"dosage_form"`
	Composition  []Composition   `json:"composition"`
	TaxRate      decimal.Decimal `json:"tax_rate"` // percent, e.g. 12 for 12%
	CreatedAt    time.Time       `json:"created_at"`
}

// Batch is one manufacturing lot of a medicine. Stock is never stored on the
// batch; it is always derived from the ledger.
type Batch struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenant_id"`
	MedicineID   string          `json:"medicine_id"`
	BatchNumber  string          `json:"batch_number"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	UnitsPerPack int64           `json:"units_per_pack"`
	CreatedAt    time.Time       `json:"created_at"`
}

// LedgerEntry is an immutable signed stock delta for one batch.
// Corrections are recorded as new offsetting entries.
type LedgerEntry struct {
	ID             string          `json:"id"`
	TenantID       string          `json:"tenant_id"`
	BatchID        string          `json:"batch_id"`
	QuantityChange int64           `json:"quantity_change"`
	Type           TransactionType `json:"transaction_type"`
	ReferenceID    string          `json:"reference_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

type Sale struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenant_id"`
	StaffID    string          `json:"staff_id"`
	CustomerID string          `json:"customer_id,omitempty"`
	SubTotal   decimal.Decimal `json:"sub_total"`
	TotalTax   decimal.Decimal `json:"total_tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []SaleItem      `json:"items"`
}

type SaleItem struct {
	ID              string          `json:"id"`
	SaleID          string          `json:"sale_id"`
	Line            int             `json:"line"`
	MedicineID      string          `json:"medicine_id"`
	BatchID         string          `json:"batch_id"`
	QuantityInUnits int64           `json:"quantity_in_units"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	LineTotal       decimal.Decimal `json:"line_total"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	CentralTax      decimal.Decimal `json:"central_tax"`
	StateTax        decimal.Decimal `json:"state_tax"`
}

type Purchase struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	SupplierID  string          `json:"supplier_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []PurchaseItem  `json:"items"`
}

type PurchaseItem struct {
	ID                string          `json:"id"`
	PurchaseID        string          `json:"purchase_id"`
	Line              int             `json:"line"`
	BatchID           string          `json:"batch_id"`
	QuantityInPacks   int64           `json:"quantity_in_packs"`
	QuantityInUnits   int64           `json:"quantity_in_units"`
	UnitPurchasePrice decimal.Decimal `json:"unit_purchase_price"`
	LineTotal         decimal.Decimal `json:"line_total"`
}

// SaleLineInput is one requested line of a sale.
type SaleLineInput struct {
	MedicineID      string `json:"medicine_id"`
	QuantityInUnits int64  `json:"quantity_in_units"`
}

// PurchaseLineInput is one received line of a purchase.
type PurchaseLineInput struct {
	BatchID           string          `json:"batch_id"`
	QuantityInPacks   int64           `json:"quantity_in_packs"`
	UnitPurchasePrice decimal.Decimal `json:"unit_purchase_price"`
}

// BatchStock is a batch together with its derived stock.
type BatchStock struct {
	Batch
	MedicineName string `json:"medicine_name"`
	Stock        int64  `json:"stock"`
}

// MedicineStock is a medicine with its in-stock batches, earliest expiry first.
type MedicineStock struct {
	Medicine
	TotalStock int64        `json:"total_stock"`
	Batches    []BatchStock `json:"batches"`
}

// LowStockItem is a medicine whose total stock fell below the alert threshold.
type LowStockItem struct {
	MedicineID string `json:"medicine_id"`
	BrandName  string `json:"brand_name"`
	TotalStock int64  `json:"total_stock"`
	Threshold  int64  `json:"threshold"`
	Urgency    string `json:"urgency"` // "high" or "medium"
}

// SalesSummary aggregates sales recorded since a point in time.
type SalesSummary struct {
	Since       time.Time       `json:"since"`
	SaleCount   int             `json:"sale_count"`
	SubTotal    decimal.Decimal `json:"sub_total"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	// RecentSales holds up to RecentSalesLimit sale headers, newest first.
	RecentSales []Sale          `json:"recent_sales"`
}
