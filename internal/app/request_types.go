package app

import (
	"pharmacy-erp/internal/core"

	"github.com/shopspring/decimal"
)

// CreateMedicineRequest is the input for registering a medicine.
type CreateMedicineRequest struct {
	TenantID     string
	BrandName    string
	Manufacturer string
	DosageForm   string
	Composition  []core.Composition
	TaxRate      decimal.Decimal
}

// CreateBatchRequest is the input for registering a batch.
type CreateBatchRequest struct {
	TenantID     string
	MedicineID   string
	BatchNumber  string
	ExpiryDate   string // YYYY-MM-DD
	PricePerUnit decimal.Decimal
	UnitsPerPack int64
}

// CreateSaleRequest is the input for recording a sale. CustomerID is empty
// for walk-in customers.
type CreateSaleRequest struct {
	TenantID   string
	StaffID    string
	CustomerID string
	Lines      []core.SaleLineInput
}

// CreatePurchaseRequest is the input for recording a supplier delivery.
type CreatePurchaseRequest struct {
	TenantID   string
	SupplierID string
	Lines      []core.PurchaseLineInput
}
