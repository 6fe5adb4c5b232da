package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"pharmacy-erp/internal/id"

	"github.com/shopspring/decimal"
)

// TransactionCoordinator records sales and purchases. Each call is one unit of
// work: either the order header, every item and every ledger entry are stored,
// or nothing is.
type TransactionCoordinator interface {
	// CreateSale allocates each line to a batch, prices it and appends one
	// negative ledger entry per allocated batch. customerID may be empty for
	// walk-in sales.
	CreateSale(ctx context.Context, tenantID, staffID, customerID string, items []SaleLineInput) (*Sale, error)
	// CreatePurchase converts packs to units and appends one positive ledger
	// entry per line.
	CreatePurchase(ctx context.Context, tenantID, supplierID string, items []PurchaseLineInput) (*Purchase, error)
}

type transactionCoordinator struct {
	store     Store
	allocator *Allocator
	publisher Publisher
	now       func() time.Time
}

// NewTransactionCoordinator wires the coordinator. A nil publisher discards events.
func NewTransactionCoordinator(store Store, allocator *Allocator, publisher Publisher) TransactionCoordinator {
	if allocator == nil {
		allocator = NewAllocator(PolicyFEFOSingle, false)
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &transactionCoordinator{store: store, allocator: allocator, publisher: publisher, now: time.Now}
}

func (c *transactionCoordinator) CreateSale(ctx context.Context, tenantID, staffID, customerID string, items []SaleLineInput) (*Sale, error) {
	if tenantID == "" {
		return nil, validationf("tenant id is required")
	}
	if staffID == "" {
		return nil, validationf("staff id is required")
	}
	if len(items) == 0 {
		return nil, validationf("sale must have at least one item")
	}
	for i, in := range items {
		if in.MedicineID == "" {
			return nil, &LineError{Line: i + 1, Err: ErrValidation, Detail: "medicine id is required"}
		}
		if in.QuantityInUnits <= 0 {
			return nil, &LineError{Line: i + 1, MedicineID: in.MedicineID, Err: ErrValidation,
				Detail: fmt.Sprintf("quantity must be positive, got %d", in.QuantityInUnits)}
		}
	}

	now := c.now().UTC()
	sale := &Sale{
		ID:         id.New(id.PrefixSale),
		TenantID:   tenantID,
		StaffID:    staffID,
		CustomerID: customerID,
		CreatedAt:  now,
	}
	var entries []LedgerEntry

	err := c.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.LockMedicineBatches(ctx, tenantID, uniqueSorted(items, func(in SaleLineInput) string { return in.MedicineID })); err != nil {
			return fmt.Errorf("failed to lock batches: %w", err)
		}

		var totals SaleTotals
		drawn := make(map[string]int64)
		for i, in := range items {
			line := i + 1
			med, err := tx.GetMedicine(ctx, tenantID, in.MedicineID)
			if err != nil {
				return lineError(line, in.MedicineID, "", err)
			}

			allocs, err := c.allocator.Allocate(ctx, tx, tenantID, in.MedicineID, in.QuantityInUnits, drawn)
			if err != nil {
				return lineError(line, in.MedicineID, "", err)
			}

			for _, a := range allocs {
				p := PriceSaleLine(a.UnitPrice, a.Quantity, med.TaxRate)
				totals.Add(p)
				drawn[a.BatchID] += a.Quantity

				sale.Items = append(sale.Items, SaleItem{
					ID:              id.New(id.PrefixSaleItem),
					SaleID:          sale.ID,
					Line:            line,
					MedicineID:      in.MedicineID,
					BatchID:         a.BatchID,
					QuantityInUnits: a.Quantity,
					UnitPrice:       a.UnitPrice,
					TaxRate:         med.TaxRate,
					LineTotal:       p.LineTotal,
					TaxAmount:       p.TaxAmount,
					CentralTax:      p.CentralTax,
					StateTax:        p.StateTax,
				})
				entries = append(entries, LedgerEntry{
					ID:             id.New(id.PrefixLedgerEntry),
					TenantID:       tenantID,
					BatchID:        a.BatchID,
					QuantityChange: -a.Quantity,
					Type:           TransactionSale,
					ReferenceID:    sale.ID,
					CreatedAt:      now,
				})
			}
		}

		sale.SubTotal = totals.SubTotal
		sale.TotalTax = totals.TotalTax
		sale.GrandTotal = totals.GrandTotal

		if err := tx.InsertSale(ctx, sale); err != nil {
			return fmt.Errorf("failed to insert sale: %w", err)
		}
		if err := tx.AppendLedger(ctx, entries); err != nil {
			return fmt.Errorf("failed to append ledger entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, OrderEvent{
		Type:       TransactionSale,
		OrderID:    sale.ID,
		TenantID:   tenantID,
		Total:      sale.GrandTotal,
		Movements:  entries,
		OccurredAt: now,
	})
	return sale, nil
}

func (c *transactionCoordinator) CreatePurchase(ctx context.Context, tenantID, supplierID string, items []PurchaseLineInput) (*Purchase, error) {
	if tenantID == "" {
		return nil, validationf("tenant id is required")
	}
	if supplierID == "" {
		return nil, validationf("supplier id is required")
	}
	if len(items) == 0 {
		return nil, validationf("purchase must have at least one item")
	}
	for i, in := range items {
		if in.BatchID == "" {
			return nil, &LineError{Line: i + 1, Err: ErrValidation, Detail: "batch id is required"}
		}
		if in.QuantityInPacks <= 0 {
			return nil, &LineError{Line: i + 1, BatchID: in.BatchID, Err: ErrValidation,
				Detail: fmt.Sprintf("quantity in packs must be positive, got %d", in.QuantityInPacks)}
		}
		if err := checkPrice("unit purchase price", in.UnitPurchasePrice); err != nil {
			return nil, &LineError{Line: i + 1, BatchID: in.BatchID, Err: ErrValidation, Detail: err.Error()}
		}
	}

	now := c.now().UTC()
	purchase := &Purchase{
		ID:         id.New(id.PrefixPurchase),
		TenantID:   tenantID,
		SupplierID: supplierID,
		CreatedAt:  now,
	}
	var entries []LedgerEntry

	err := c.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		batchIDs := uniqueSorted(items, func(in PurchaseLineInput) string { return in.BatchID })
		if err := tx.LockBatches(ctx, tenantID, batchIDs); err != nil {
			return fmt.Errorf("failed to lock batches: %w", err)
		}
		stock, err := tx.SumStock(ctx, tenantID, batchIDs)
		if err != nil {
			return fmt.Errorf("failed to read stock: %w", err)
		}

		total := decimal.Zero
		for i, in := range items {
			line := i + 1
			batch, err := tx.GetBatch(ctx, tenantID, in.BatchID)
			if err != nil {
				return lineError(line, "", in.BatchID, err)
			}

			if in.QuantityInPacks > math.MaxInt64/batch.UnitsPerPack {
				return &LineError{Line: line, BatchID: in.BatchID, Err: ErrValidation,
					Detail: fmt.Sprintf("%d packs of %d units is out of range", in.QuantityInPacks, batch.UnitsPerPack)}
			}
			units := in.QuantityInPacks * batch.UnitsPerPack
			if stock[in.BatchID] > math.MaxInt64-units {
				return &LineError{Line: line, BatchID: in.BatchID, Err: ErrValidation,
					Detail: fmt.Sprintf("receiving %d units would overflow stock of %d", units, stock[in.BatchID])}
			}
			stock[in.BatchID] += units
			lineTotal := PricePurchaseLine(in.UnitPurchasePrice, units)
			total = total.Add(lineTotal)
			if total.GreaterThanOrEqual(maxAmount) {
				return &LineError{Line: line, BatchID: in.BatchID, Err: ErrValidation,
					Detail: fmt.Sprintf("purchase total must be below %s", maxAmount)}
			}

			purchase.Items = append(purchase.Items, PurchaseItem{
				ID:                id.New(id.PrefixPurchaseItem),
				PurchaseID:        purchase.ID,
				Line:              line,
				BatchID:           in.BatchID,
				QuantityInPacks:   in.QuantityInPacks,
				QuantityInUnits:   units,
				UnitPurchasePrice: in.UnitPurchasePrice,
				LineTotal:         lineTotal,
			})
			entries = append(entries, LedgerEntry{
				ID:             id.New(id.PrefixLedgerEntry),
				TenantID:       tenantID,
				BatchID:        in.BatchID,
				QuantityChange: units,
				Type:           TransactionPurchase,
				ReferenceID:    purchase.ID,
				CreatedAt:      now,
			})
		}
		purchase.TotalAmount = total

		if err := tx.InsertPurchase(ctx, purchase); err != nil {
			return fmt.Errorf("failed to insert purchase: %w", err)
		}
		if err := tx.AppendLedger(ctx, entries); err != nil {
			return fmt.Errorf("failed to append ledger entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, OrderEvent{
		Type:       TransactionPurchase,
		OrderID:    purchase.ID,
		TenantID:   tenantID,
		Total:      purchase.TotalAmount,
		Movements:  entries,
		OccurredAt: now,
	})
	return purchase, nil
}

func (c *transactionCoordinator) publish(ctx context.Context, ev OrderEvent) {
	if err := c.publisher.PublishOrder(ctx, ev); err != nil {
		log.Printf("publish %s %s failed: %v", ev.Type, ev.OrderID, err)
	}
}

// lineError attaches line context to domain errors. Infrastructure errors
// (including ErrTransactionAborted) pass through unchanged.
func lineError(line int, medicineID, batchID string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrValidation) {
		return &LineError{Line: line, MedicineID: medicineID, BatchID: batchID, Err: err}
	}
	return fmt.Errorf("line %d: %w", line, err)
}

func uniqueSorted[T any](items []T, key func(T) string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		k := key(it)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
