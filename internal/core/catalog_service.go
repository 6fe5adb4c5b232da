package core

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"pharmacy-erp/internal/id"

	"github.com/shopspring/decimal"
)

// MedicineInput is the master data needed to register a medicine.
type MedicineInput struct {
	BrandName    string          `json:"brand_name"`
	Manufacturer string          `json:"manufacturer"`
	DosageForm   string          `json:"dosage_form"`
	Composition  []Composition   `json:"composition"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
}

// BatchInput registers a new lot of an existing medicine. A batch starts with
// zero stock; units arrive through purchases.
type BatchInput struct {
	MedicineID   string          `json:"medicine_id"`
	BatchNumber  string          `json:"batch_number"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	UnitsPerPack int64           `json:"units_per_pack"`
}

// CatalogService maintains medicines and batches. Batches are never modified
// once created; the sale path only reads them.
type CatalogService interface {
	CreateMedicine(ctx context.Context, tenantID string, in MedicineInput) (*Medicine, error)
	CreateBatch(ctx context.Context, tenantID string, in BatchInput) (*Batch, error)
	GetMedicine(ctx context.Context, tenantID, medicineID string) (*Medicine, error)
	ListMedicines(ctx context.Context, tenantID string) ([]Medicine, error)
	GetBatch(ctx context.Context, tenantID, batchID string) (*Batch, error)
	ListBatches(ctx context.Context, tenantID, medicineID string) ([]Batch, error)
}

type catalogService struct {
	store Store
	now   func() time.Time
}

func NewCatalogService(store Store) CatalogService {
	return &catalogService{store: store, now: time.Now}
}

func (s *catalogService) CreateMedicine(ctx context.Context, tenantID string, in MedicineInput) (*Medicine, error) {
	if tenantID == "" {
		return nil, validationf("tenant id is required")
	}
	in.BrandName = strings.TrimSpace(in.BrandName)
	if in.BrandName == "" {
		return nil, validationf("brand name is required")
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) {
		return nil, validationf("tax rate must be between 0 and 100, got %s", in.TaxRate)
	}
	if !fitsPlaces(in.TaxRate, TaxRatePlaces) {
		return nil, validationf("tax rate allows at most %d decimal places, got %s", TaxRatePlaces, in.TaxRate)
	}
	for i, c := range in.Composition {
		if strings.TrimSpace(c.Drug) == "" {
			return nil, validationf("composition %d: drug name is required", i+1)
		}
	}

	m := &Medicine{
		ID:           id.New(id.PrefixMedicine),
		TenantID:     tenantID,
		BrandName:    in.BrandName,
		Manufacturer: strings.TrimSpace(in.Manufacturer),
		DosageForm:   strings.TrimSpace(in.DosageForm),
		Composition:  in.Composition,
		TaxRate:      in.TaxRate,
		CreatedAt:    s.now().UTC(),
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.InsertMedicine(ctx, m)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create medicine: %w", err)
	}
	return m, nil
}

func (s *catalogService) CreateBatch(ctx context.Context, tenantID string, in BatchInput) (*Batch, error) {
	if tenantID == "" {
		return nil, validationf("tenant id is required")
	}
	if in.MedicineID == "" {
		return nil, validationf("medicine id is required")
	}
	if strings.TrimSpace(in.BatchNumber) == "" {
		return nil, validationf("batch number is required")
	}
	if in.ExpiryDate.IsZero() {
		return nil, validationf("expiry date is required")
	}
	if err := checkPrice("price per unit", in.PricePerUnit); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if in.UnitsPerPack < 1 || in.UnitsPerPack > math.MaxInt32 {
		return nil, validationf("units per pack must be between 1 and %d, got %d", math.MaxInt32, in.UnitsPerPack)
	}

	y, mo, d := in.ExpiryDate.Date()
	b := &Batch{
		ID:           id.New(id.PrefixBatch),
		TenantID:     tenantID,
		MedicineID:   in.MedicineID,
		BatchNumber:  strings.TrimSpace(in.BatchNumber),
		ExpiryDate:   time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
		PricePerUnit: in.PricePerUnit,
		UnitsPerPack: in.UnitsPerPack,
		CreatedAt:    s.now().UTC(),
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetMedicine(ctx, tenantID, in.MedicineID); err != nil {
			return err
		}
		return tx.InsertBatch(ctx, b)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	return b, nil
}

func (s *catalogService) GetMedicine(ctx context.Context, tenantID, medicineID string) (*Medicine, error) {
	return s.store.GetMedicine(ctx, tenantID, medicineID)
}

func (s *catalogService) ListMedicines(ctx context.Context, tenantID string) ([]Medicine, error) {
	return s.store.ListMedicines(ctx, tenantID)
}

func (s *catalogService) GetBatch(ctx context.Context, tenantID, batchID string) (*Batch, error) {
	return s.store.GetBatch(ctx, tenantID, batchID)
}

func (s *catalogService) ListBatches(ctx context.Context, tenantID, medicineID string) ([]Batch, error) {
	return s.store.ListBatches(ctx, tenantID, medicineID)
}
