package app

import (
	"context"
	"fmt"
	"time"

	"pharmacy-erp/internal/core"
)

const dateLayout = "2006-01-02"

// Options carries the configured defaults the facade applies to reports.
type Options struct {
	LowStockThreshold int64
	LowStockLimit     int
	ExpiryWindowDays  int
}

type appService struct {
	catalog     core.CatalogService
	coordinator core.TransactionCoordinator
	inventory   core.InventoryService
	reporting   core.ReportingService
	opts        Options
	now         func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	catalog core.CatalogService,
	coordinator core.TransactionCoordinator,
	inventory core.InventoryService,
	reporting core.ReportingService,
	opts Options,
) ApplicationService {
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = 50
	}
	if opts.LowStockLimit <= 0 {
		opts.LowStockLimit = 10
	}
	if opts.ExpiryWindowDays <= 0 {
		opts.ExpiryWindowDays = 30
	}
	return &appService{
		catalog:     catalog,
		coordinator: coordinator,
		inventory:   inventory,
		reporting:   reporting,
		opts:        opts,
		now:         time.Now,
	}
}

// New wires the core services over one store.
func New(store core.Store, allocator *core.Allocator, publisher core.Publisher, opts Options) ApplicationService {
	return NewAppService(
		core.NewCatalogService(store),
		core.NewTransactionCoordinator(store, allocator, publisher),
		core.NewInventoryService(store),
		core.NewReportingService(store),
		opts,
	)
}

func (s *appService) CreateMedicine(ctx context.Context, req CreateMedicineRequest) (*core.Medicine, error) {
	return s.catalog.CreateMedicine(ctx, req.TenantID, core.MedicineInput{
		BrandName:    req.BrandName,
		Manufacturer: req.Manufacturer,
		DosageForm:   req.DosageForm,
		Composition:  req.Composition,
		TaxRate:      req.TaxRate,
	})
}

func (s *appService) ListMedicines(ctx context.Context, tenantID string) (*MedicineListResult, error) {
	meds, err := s.catalog.ListMedicines(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &MedicineListResult{Medicines: meds}, nil
}

func (s *appService) CreateBatch(ctx context.Context, req CreateBatchRequest) (*core.Batch, error) {
	expiry, err := parseDate("expiry date", req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	return s.catalog.CreateBatch(ctx, req.TenantID, core.BatchInput{
		MedicineID:   req.MedicineID,
		BatchNumber:  req.BatchNumber,
		ExpiryDate:   expiry,
		PricePerUnit: req.PricePerUnit,
		UnitsPerPack: req.UnitsPerPack,
	})
}

func (s *appService) CreateSale(ctx context.Context, req CreateSaleRequest) (*SaleResult, error) {
	sale, err := s.coordinator.CreateSale(ctx, req.TenantID, req.StaffID, req.CustomerID, req.Lines)
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) GetSale(ctx context.Context, tenantID, saleID string) (*SaleResult, error) {
	sale, err := s.reporting.GetSale(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResult, error) {
	p, err := s.coordinator.CreatePurchase(ctx, req.TenantID, req.SupplierID, req.Lines)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Purchase: p}, nil
}

func (s *appService) GetPurchase(ctx context.Context, tenantID, purchaseID string) (*PurchaseResult, error) {
	p, err := s.reporting.GetPurchase(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Purchase: p}, nil
}

func (s *appService) GetBatchStock(ctx context.Context, tenantID, batchID string) (*BatchStockResult, error) {
	b, err := s.catalog.GetBatch(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}
	stock, err := s.inventory.CurrentStock(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}
	return &BatchStockResult{Batch: b, Stock: stock}, nil
}

func (s *appService) GetBatchLedger(ctx context.Context, tenantID, batchID string) (*LedgerResult, error) {
	entries, err := s.inventory.BatchLedger(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}
	var stock int64
	for _, e := range entries {
		stock += e.QuantityChange
	}
	return &LedgerResult{BatchID: batchID, Entries: entries, Stock: stock}, nil
}

func (s *appService) GetStockLevels(ctx context.Context, tenantID string) (*StockResult, error) {
	levels, err := s.inventory.StockLevels(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &StockResult{TenantID: tenantID, Levels: levels}, nil
}

func (s *appService) SearchMedicines(ctx context.Context, tenantID, term string) (*SearchResult, error) {
	meds, err := s.inventory.SearchByDrug(ctx, tenantID, term)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Term: term, Medicines: meds}, nil
}

func (s *appService) GetLowStock(ctx context.Context, tenantID string) (*LowStockResult, error) {
	items, err := s.inventory.LowStock(ctx, tenantID, s.opts.LowStockThreshold, s.opts.LowStockLimit)
	if err != nil {
		return nil, err
	}
	return &LowStockResult{Threshold: s.opts.LowStockThreshold, Items: items}, nil
}

func (s *appService) GetExpiringBatches(ctx context.Context, tenantID string, withinDays int) (*ExpiringResult, error) {
	if withinDays == 0 {
		withinDays = s.opts.ExpiryWindowDays
	}
	batches, err := s.inventory.ExpiringBatches(ctx, tenantID, s.now(), withinDays)
	if err != nil {
		return nil, err
	}
	return &ExpiringResult{WithinDays: withinDays, Batches: batches}, nil
}

func (s *appService) GetSalesSummary(ctx context.Context, tenantID, since string) (*core.SalesSummary, error) {
	var from time.Time
	if since == "" {
		y, m, d := s.now().UTC().Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	} else {
		var err error
		if from, err = parseDate("since", since); err != nil {
			return nil, err
		}
	}
	return s.reporting.SalesSummary(ctx, tenantID, from)
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", core.ErrValidation, field, value)
	}
	return t, nil
}
