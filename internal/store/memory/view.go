package memory

import (
	"fmt"
	"slices"
	"time"

	"pharmacy-erp/internal/core"
)

// view reads across layers of data, committed state first. Callers hold the
// appropriate lock. Returned values never alias stored slices.
type view []*data

func (v view) getMedicine(tenantID, medicineID string) (*core.Medicine, error) {
	for _, d := range v {
		if m, ok := d.medicines[medicineID]; ok && m.TenantID == tenantID {
			m.Composition = slices.Clone(m.Composition)
			return &m, nil
		}
	}
	return nil, fmt.Errorf("medicine %s: %w", medicineID, core.ErrNotFound)
}

func (v view) listMedicines(tenantID string) []core.Medicine {
	var out []core.Medicine
	for _, d := range v {
		for _, id := range d.medicineOrder {
			if m := d.medicines[id]; m.TenantID == tenantID {
				m.Composition = slices.Clone(m.Composition)
				out = append(out, m)
			}
		}
	}
	return out
}

func (v view) getBatch(tenantID, batchID string) (*core.Batch, error) {
	for _, d := range v {
		if b, ok := d.batches[batchID]; ok && b.TenantID == tenantID {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("batch %s: %w", batchID, core.ErrNotFound)
}

func (v view) listBatches(tenantID, medicineID string) []core.Batch {
	var out []core.Batch
	for _, d := range v {
		for _, id := range d.batchOrder {
			b := d.batches[id]
			if b.TenantID != tenantID {
				continue
			}
			if medicineID != "" && b.MedicineID != medicineID {
				continue
			}
			out = append(out, b)
		}
	}
	return out
}

func (v view) sumStock(tenantID string, batchIDs []string) map[string]int64 {
	var want map[string]bool
	if batchIDs != nil {
		want = make(map[string]bool, len(batchIDs))
		for _, id := range batchIDs {
			want[id] = true
		}
	}
	sums := make(map[string]int64)
	for _, d := range v {
		for _, e := range d.ledger {
			if e.TenantID != tenantID {
				continue
			}
			if want != nil && !want[e.BatchID] {
				continue
			}
			sums[e.BatchID] += e.QuantityChange
		}
	}
	return sums
}

func (v view) listLedger(tenantID, batchID string) []core.LedgerEntry {
	var out []core.LedgerEntry
	for _, d := range v {
		for _, e := range d.ledger {
			if e.TenantID == tenantID && e.BatchID == batchID {
				out = append(out, e)
			}
		}
	}
	return out
}

func (v view) getSale(tenantID, saleID string) (*core.Sale, error) {
	for _, d := range v {
		if s, ok := d.sales[saleID]; ok && s.TenantID == tenantID {
			s.Items = slices.Clone(s.Items)
			return &s, nil
		}
	}
	return nil, fmt.Errorf("sale %s: %w", saleID, core.ErrNotFound)
}

func (v view) listSalesSince(tenantID string, since time.Time) []core.Sale {
	var out []core.Sale
	for _, d := range v {
		for _, id := range d.saleOrder {
			s := d.sales[id]
			if s.TenantID == tenantID && !s.CreatedAt.Before(since) {
				s.Items = nil
				out = append(out, s)
			}
		}
	}
	return out
}

func (v view) getPurchase(tenantID, purchaseID string) (*core.Purchase, error) {
	for _, d := range v {
		if p, ok := d.purchases[purchaseID]; ok && p.TenantID == tenantID {
			p.Items = slices.Clone(p.Items)
			return &p, nil
		}
	}
	return nil, fmt.Errorf("purchase %s: %w", purchaseID, core.ErrNotFound)
}
