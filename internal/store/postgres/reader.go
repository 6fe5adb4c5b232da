package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharmacy-erp/internal/core"

	"github.com/jackc/pgx/v5"
)

type reader struct {
	q querier
}

func (r reader) GetMedicine(ctx context.Context, tenantID, medicineID string) (*core.Medicine, error) {
	var m core.Medicine
	err := r.q.QueryRow(ctx, `
		SELECT id, tenant_id, brand_name, manufacturer, dosage_form, tax_rate, created_at
		FROM medicines
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, medicineID).Scan(&m.ID, &m.TenantID, &m.BrandName, &m.Manufacturer, &m.DosageForm, &m.TaxRate, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("medicine %s: %w", medicineID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch medicine: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT drug, strength FROM medicine_compositions
		WHERE tenant_id = $1 AND medicine_id = $2
		ORDER BY position
	`, tenantID, medicineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query composition: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c core.Composition
		if err := rows.Scan(&c.Drug, &c.Strength); err != nil {
			return nil, fmt.Errorf("failed to scan composition: %w", err)
		}
		m.Composition = append(m.Composition, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read composition: %w", err)
	}
	return &m, nil
}

func (r reader) ListMedicines(ctx context.Context, tenantID string) ([]core.Medicine, error) {
	comps, err := r.compositions(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, brand_name, manufacturer, dosage_form, tax_rate, created_at
		FROM medicines
		WHERE tenant_id = $1
		ORDER BY seq
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query medicines: %w", err)
	}
	defer rows.Close()

	var meds []core.Medicine
	for rows.Next() {
		var m core.Medicine
		if err := rows.Scan(&m.ID, &m.TenantID, &m.BrandName, &m.Manufacturer, &m.DosageForm, &m.TaxRate, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan medicine: %w", err)
		}
		m.Composition = comps[m.ID]
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func (r reader) compositions(ctx context.Context, tenantID string) (map[string][]core.Composition, error) {
	rows, err := r.q.Query(ctx, `
		SELECT medicine_id, drug, strength FROM medicine_compositions
		WHERE tenant_id = $1
		ORDER BY medicine_id, position
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query compositions: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]core.Composition)
	for rows.Next() {
		var medicineID string
		var c core.Composition
		if err := rows.Scan(&medicineID, &c.Drug, &c.Strength); err != nil {
			return nil, fmt.Errorf("failed to scan composition: %w", err)
		}
		out[medicineID] = append(out[medicineID], c)
	}
	return out, rows.Err()
}

const batchColumns = `id, tenant_id, medicine_id, batch_number, expiry_date, price_per_unit, units_per_pack, created_at`

func scanBatch(row pgx.Row, b *core.Batch) error {
	return row.Scan(&b.ID, &b.TenantID, &b.MedicineID, &b.BatchNumber, &b.ExpiryDate, &b.PricePerUnit, &b.UnitsPerPack, &b.CreatedAt)
}

func (r reader) GetBatch(ctx context.Context, tenantID, batchID string) (*core.Batch, error) {
	var b core.Batch
	err := scanBatch(r.q.QueryRow(ctx,
		`SELECT `+batchColumns+` FROM medicine_batches WHERE tenant_id = $1 AND id = $2`,
		tenantID, batchID), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("batch %s: %w", batchID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch batch: %w", err)
	}
	return &b, nil
}

func (r reader) ListBatches(ctx context.Context, tenantID, medicineID string) ([]core.Batch, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+batchColumns+`
		FROM medicine_batches
		WHERE tenant_id = $1 AND ($2 = '' OR medicine_id = $2)
		ORDER BY seq
	`, tenantID, medicineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []core.Batch
	for rows.Next() {
		var b core.Batch
		if err := scanBatch(rows, &b); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (r reader) SumStock(ctx context.Context, tenantID string, batchIDs []string) (map[string]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT batch_id, SUM(unit_quantity_change)::BIGINT
		FROM inventory_transactions
		WHERE tenant_id = $1 AND ($2::TEXT[] IS NULL OR batch_id = ANY($2))
		GROUP BY batch_id
	`, tenantID, batchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum inventory transactions: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]int64)
	for rows.Next() {
		var id string
		var qty int64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan stock sum: %w", err)
		}
		sums[id] = qty
	}
	return sums, rows.Err()
}

func (r reader) ListLedger(ctx context.Context, tenantID, batchID string) ([]core.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, batch_id, unit_quantity_change, transaction_type, reference_id, created_at
		FROM inventory_transactions
		WHERE tenant_id = $1 AND batch_id = $2
		ORDER BY seq
	`, tenantID, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory transactions: %w", err)
	}
	defer rows.Close()

	var entries []core.LedgerEntry
	for rows.Next() {
		var e core.LedgerEntry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.BatchID, &e.QuantityChange, &e.Type, &e.ReferenceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory transaction: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r reader) GetSale(ctx context.Context, tenantID, saleID string) (*core.Sale, error) {
	var s core.Sale
	var customerID *string
	err := r.q.QueryRow(ctx, `
		SELECT id, tenant_id, staff_id, customer_id, sub_total, total_gst_amount, total_amount, created_at
		FROM sales
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, saleID).Scan(&s.ID, &s.TenantID, &s.StaffID, &customerID, &s.SubTotal, &s.TotalTax, &s.GrandTotal, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sale %s: %w", saleID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch sale: %w", err)
	}
	if customerID != nil {
		s.CustomerID = *customerID
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, line, medicine_id, batch_id, quantity, unit_price, tax_rate,
		       line_total, gst_amount, cgst_amount, sgst_amount
		FROM sale_items
		WHERE tenant_id = $1 AND sale_id = $2
		ORDER BY seq
	`, tenantID, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it core.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.Line, &it.MedicineID, &it.BatchID, &it.QuantityInUnits,
			&it.UnitPrice, &it.TaxRate, &it.LineTotal, &it.TaxAmount, &it.CentralTax, &it.StateTax); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		s.Items = append(s.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sale items: %w", err)
	}
	return &s, nil
}

func (r reader) ListSalesSince(ctx context.Context, tenantID string, since time.Time) ([]core.Sale, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, staff_id, COALESCE(customer_id, ''), sub_total, total_gst_amount, total_amount, created_at
		FROM sales
		WHERE tenant_id = $1 AND created_at >= $2
		ORDER BY seq
	`, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []core.Sale
	for rows.Next() {
		var s core.Sale
		if err := rows.Scan(&s.ID, &s.TenantID, &s.StaffID, &s.CustomerID, &s.SubTotal, &s.TotalTax, &s.GrandTotal, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r reader) GetPurchase(ctx context.Context, tenantID, purchaseID string) (*core.Purchase, error) {
	var p core.Purchase
	err := r.q.QueryRow(ctx, `
		SELECT id, tenant_id, supplier_id, total_amount, created_at
		FROM purchases
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, purchaseID).Scan(&p.ID, &p.TenantID, &p.SupplierID, &p.TotalAmount, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase %s: %w", purchaseID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch purchase: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_id, line, batch_id, quantity_in_packs, quantity_in_units, unit_purchase_price, line_total
		FROM purchase_items
		WHERE tenant_id = $1 AND purchase_id = $2
		ORDER BY seq
	`, tenantID, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it core.PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.Line, &it.BatchID, &it.QuantityInPacks, &it.QuantityInUnits,
			&it.UnitPurchasePrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan purchase item: %w", err)
		}
		p.Items = append(p.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read purchase items: %w", err)
	}
	return &p, nil
}
