package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// InventoryService answers stock questions. Every figure is derived from the
// ledger at read time; nothing is cached.
type InventoryService interface {
	CurrentStock(ctx context.Context, tenantID, batchID string) (int64, error)
	StockByBatch(ctx context.Context, tenantID string, batchIDs []string) (map[string]int64, error)
	// StockLevels lists every batch of the tenant with its stock, in insertion order.
	StockLevels(ctx context.Context, tenantID string) ([]BatchStock, error)
	// SearchByDrug finds medicines containing a drug whose name matches term
	// (case-insensitive substring). Only batches with stock > 0 are returned and
	// medicines left without any are omitted.
	SearchByDrug(ctx context.Context, tenantID, term string) ([]MedicineStock, error)
	// LowStock lists medicines with at least one batch whose total stock is
	// below threshold. limit <= 0 returns all.
	LowStock(ctx context.Context, tenantID string, threshold int64, limit int) ([]LowStockItem, error)
	// ExpiringBatches lists in-stock batches expiring on or before asOf+withinDays,
	// earliest expiry first.
	ExpiringBatches(ctx context.Context, tenantID string, asOf time.Time, withinDays int) ([]BatchStock, error)
	BatchLedger(ctx context.Context, tenantID, batchID string) ([]LedgerEntry, error)
}

type inventoryService struct {
	store Reader
}

func NewInventoryService(store Reader) InventoryService {
	return &inventoryService{store: store}
}

func (s *inventoryService) CurrentStock(ctx context.Context, tenantID, batchID string) (int64, error) {
	return CurrentStock(ctx, s.store, tenantID, batchID)
}

func (s *inventoryService) StockByBatch(ctx context.Context, tenantID string, batchIDs []string) (map[string]int64, error) {
	return StockByBatch(ctx, s.store, tenantID, batchIDs)
}

// snapshot loads the tenant's medicines, batches and stock with one grouped sum.
func (s *inventoryService) snapshot(ctx context.Context, tenantID string) ([]Medicine, []Batch, map[string]int64, error) {
	meds, err := s.store.ListMedicines(ctx, tenantID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	batches, err := s.store.ListBatches(ctx, tenantID, "")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list batches: %w", err)
	}
	stock, err := s.store.SumStock(ctx, tenantID, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to sum ledger: %w", err)
	}
	return meds, batches, stock, nil
}

func (s *inventoryService) StockLevels(ctx context.Context, tenantID string) ([]BatchStock, error) {
	meds, batches, stock, err := s.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(meds))
	for _, m := range meds {
		names[m.ID] = m.BrandName
	}

	levels := make([]BatchStock, 0, len(batches))
	for _, b := range batches {
		levels = append(levels, BatchStock{Batch: b, MedicineName: names[b.MedicineID], Stock: stock[b.ID]})
	}
	return levels, nil
}

func (s *inventoryService) SearchByDrug(ctx context.Context, tenantID, term string) ([]MedicineStock, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, validationf("search term is required")
	}
	meds, batches, stock, err := s.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	byMedicine := make(map[string][]Batch)
	for _, b := range batches {
		byMedicine[b.MedicineID] = append(byMedicine[b.MedicineID], b)
	}

	var out []MedicineStock
	for _, m := range meds {
		if !containsDrug(m.Composition, term) {
			continue
		}
		ms := MedicineStock{Medicine: m}
		for _, b := range byMedicine[m.ID] {
			if qty := stock[b.ID]; qty > 0 {
				ms.Batches = append(ms.Batches, BatchStock{Batch: b, MedicineName: m.BrandName, Stock: qty})
				ms.TotalStock += qty
			}
		}
		if len(ms.Batches) == 0 {
			continue
		}
		sort.SliceStable(ms.Batches, func(i, j int) bool {
			return ms.Batches[i].ExpiryDate.Before(ms.Batches[j].ExpiryDate)
		})
		out = append(out, ms)
	}
	return out, nil
}

func containsDrug(comp []Composition, term string) bool {
	for _, c := range comp {
		if strings.Contains(strings.ToLower(c.Drug), term) {
			return true
		}
	}
	return false
}

func (s *inventoryService) LowStock(ctx context.Context, tenantID string, threshold int64, limit int) ([]LowStockItem, error) {
	if threshold <= 0 {
		return nil, validationf("threshold must be positive, got %d", threshold)
	}
	meds, batches, stock, err := s.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int64)
	hasBatch := make(map[string]bool)
	for _, b := range batches {
		hasBatch[b.MedicineID] = true
		totals[b.MedicineID] += stock[b.ID]
	}

	var out []LowStockItem
	for _, m := range meds {
		if !hasBatch[m.ID] {
			continue
		}
		current := totals[m.ID]
		if current >= threshold {
			continue
		}
		urgency := "medium"
		if current*2 < threshold {
			urgency = "high"
		}
		out = append(out, LowStockItem{
			MedicineID: m.ID,
			BrandName:  m.BrandName,
			TotalStock: current,
			Threshold:  threshold,
			Urgency:    urgency,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *inventoryService) ExpiringBatches(ctx context.Context, tenantID string, asOf time.Time, withinDays int) ([]BatchStock, error) {
	if withinDays < 0 {
		return nil, validationf("window must not be negative, got %d days", withinDays)
	}
	levels, err := s.StockLevels(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	y, m, d := asOf.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, withinDays)

	var out []BatchStock
	for _, l := range levels {
		if l.Stock > 0 && !l.ExpiryDate.After(cutoff) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpiryDate.Before(out[j].ExpiryDate)
	})
	return out, nil
}

func (s *inventoryService) BatchLedger(ctx context.Context, tenantID, batchID string) ([]LedgerEntry, error) {
	if _, err := s.store.GetBatch(ctx, tenantID, batchID); err != nil {
		return nil, err
	}
	return s.store.ListLedger(ctx, tenantID, batchID)
}
