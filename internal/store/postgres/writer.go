package postgres

import (
	"context"
	"fmt"

	"pharmacy-erp/internal/core"

	"github.com/jackc/pgx/v5"
)

type txn struct {
	reader
	tx pgx.Tx
}

var _ core.Tx = (*txn)(nil)

// LockMedicineBatches takes FOR NO KEY UPDATE on the medicine rows and then
// FOR UPDATE on all their batch rows, both in ascending id order. Holding the
// medicine row keeps a batch created mid-sale from escaping the lock set;
// NO KEY UPDATE still lets new batches reference the medicine.
func (t *txn) LockMedicineBatches(ctx context.Context, tenantID string, medicineIDs []string) error {
	if len(medicineIDs) == 0 {
		return nil
	}
	if err := t.lockRows(ctx, `
		SELECT id FROM medicines
		WHERE tenant_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR NO KEY UPDATE
	`, tenantID, medicineIDs); err != nil {
		return fmt.Errorf("failed to lock medicines: %w", err)
	}
	if err := t.lockRows(ctx, `
		SELECT id FROM medicine_batches
		WHERE tenant_id = $1 AND medicine_id = ANY($2)
		ORDER BY id
		FOR UPDATE
	`, tenantID, medicineIDs); err != nil {
		return fmt.Errorf("failed to lock medicine batches: %w", err)
	}
	return nil
}

func (t *txn) LockBatches(ctx context.Context, tenantID string, batchIDs []string) error {
	if len(batchIDs) == 0 {
		return nil
	}
	if err := t.lockRows(ctx, `
		SELECT id FROM medicine_batches
		WHERE tenant_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE
	`, tenantID, batchIDs); err != nil {
		return fmt.Errorf("failed to lock batches: %w", err)
	}
	return nil
}

func (t *txn) lockRows(ctx context.Context, sql string, args ...any) error {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}

func (t *txn) InsertMedicine(ctx context.Context, m *core.Medicine) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO medicines (id, tenant_id, brand_name, manufacturer, dosage_form, tax_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID, m.TenantID, m.BrandName, m.Manufacturer, m.DosageForm, m.TaxRate, m.CreatedAt)
	if err != nil {
		return writeErr("medicine "+m.ID, err)
	}
	for i, c := range m.Composition {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO medicine_compositions (medicine_id, position, tenant_id, drug, strength)
			VALUES ($1, $2, $3, $4, $5)
		`, m.ID, i, m.TenantID, c.Drug, c.Strength)
		if err != nil {
			return writeErr("composition of medicine "+m.ID, err)
		}
	}
	return nil
}

func (t *txn) InsertBatch(ctx context.Context, b *core.Batch) error {
	if _, err := t.GetMedicine(ctx, b.TenantID, b.MedicineID); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO medicine_batches (id, tenant_id, medicine_id, batch_number, expiry_date, price_per_unit, units_per_pack, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, b.ID, b.TenantID, b.MedicineID, b.BatchNumber, b.ExpiryDate, b.PricePerUnit, b.UnitsPerPack, b.CreatedAt)
	if err != nil {
		return writeErr("batch "+b.ID, err)
	}
	return nil
}

func (t *txn) InsertSale(ctx context.Context, s *core.Sale) error {
	var customerID *string
	if s.CustomerID != "" {
		customerID = &s.CustomerID
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO sales (id, tenant_id, staff_id, customer_id, sub_total, total_gst_amount, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, s.ID, s.TenantID, s.StaffID, customerID, s.SubTotal, s.TotalTax, s.GrandTotal, s.CreatedAt)
	if err != nil {
		return writeErr("sale "+s.ID, err)
	}

	for _, it := range s.Items {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO sale_items (id, tenant_id, sale_id, line, medicine_id, batch_id, quantity, unit_price,
			                        tax_rate, line_total, gst_amount, cgst_amount, sgst_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, it.ID, s.TenantID, s.ID, it.Line, it.MedicineID, it.BatchID, it.QuantityInUnits, it.UnitPrice,
			it.TaxRate, it.LineTotal, it.TaxAmount, it.CentralTax, it.StateTax)
		if err != nil {
			return writeErr(fmt.Sprintf("sale item for line %d", it.Line), err)
		}
	}
	return nil
}

func (t *txn) InsertPurchase(ctx context.Context, p *core.Purchase) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO purchases (id, tenant_id, supplier_id, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.TenantID, p.SupplierID, p.TotalAmount, p.CreatedAt)
	if err != nil {
		return writeErr("purchase "+p.ID, err)
	}

	for _, it := range p.Items {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO purchase_items (id, tenant_id, purchase_id, line, batch_id, quantity_in_packs,
			                            quantity_in_units, unit_purchase_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, it.ID, p.TenantID, p.ID, it.Line, it.BatchID, it.QuantityInPacks, it.QuantityInUnits,
			it.UnitPurchasePrice, it.LineTotal)
		if err != nil {
			return writeErr(fmt.Sprintf("purchase item for line %d", it.Line), err)
		}
	}
	return nil
}

// AppendLedger inserts entries in order. The table rejects UPDATE and DELETE.
func (t *txn) AppendLedger(ctx context.Context, entries []core.LedgerEntry) error {
	for _, e := range entries {
		tag, err := t.tx.Exec(ctx, `
			INSERT INTO inventory_transactions (id, tenant_id, batch_id, unit_quantity_change, transaction_type, reference_id, created_at)
			SELECT $1, $2, b.id, $4, $5, $6, $7
			FROM medicine_batches b
			WHERE b.tenant_id = $2 AND b.id = $3
		`, e.ID, e.TenantID, e.BatchID, e.QuantityChange, string(e.Type), e.ReferenceID, e.CreatedAt)
		if err != nil {
			return writeErr("inventory transaction for batch "+e.BatchID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("batch %s: %w", e.BatchID, core.ErrNotFound)
		}
	}
	return nil
}
