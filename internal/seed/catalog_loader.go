// Package seed loads a tenant's opening catalog and stock from CSV.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"pharmacy-erp/internal/app"
	"pharmacy-erp/internal/core"

	"github.com/shopspring/decimal"
)

// Columns expected in the header row, in any order. opening_packs and
// unit_cost may be left empty for batches that start with no stock.
var columns = []string{
	"brand_name", "manufacturer", "dosage_form", "composition", "tax_rate",
	"batch_number", "expiry_date", "price_per_unit", "units_per_pack",
	"opening_packs", "unit_cost",
}

// Stats reports what a load created.
type Stats struct {
	Medicines int
	Batches   int
	Purchases int
	Skipped   int
}

// LoadCatalog reads rows from r and registers each brand once, one batch per
// row, and an opening-stock purchase from supplierID when opening_packs is set.
// Malformed rows are logged and skipped; service failures other than
// validation stop the load.
func LoadCatalog(ctx context.Context, svc app.ApplicationService, tenantID, supplierID string, r io.Reader) (Stats, error) {
	var stats Stats
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return stats, fmt.Errorf("unable to read catalog header: %w", err)
	}
	idx, err := indexColumns(header)
	if err != nil {
		return stats, err
	}

	medicineIDs := make(map[string]string)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("catalog line %d: unable to read row: %v", line, err)
			stats.Skipped++
			continue
		}
		field := func(name string) string { return strings.TrimSpace(record[idx[name]]) }

		row, err := parseRow(field)
		if err != nil {
			log.Printf("catalog line %d: %v", line, err)
			stats.Skipped++
			continue
		}

		key := strings.ToLower(row.medicine.BrandName)
		medicineID, ok := medicineIDs[key]
		if !ok {
			row.medicine.TenantID = tenantID
			m, err := svc.CreateMedicine(ctx, row.medicine)
			if err != nil {
				if skip(line, err, &stats) {
					continue
				}
				return stats, fmt.Errorf("catalog line %d: %w", line, err)
			}
			medicineID = m.ID
			medicineIDs[key] = medicineID
			stats.Medicines++
		}

		row.batch.TenantID = tenantID
		row.batch.MedicineID = medicineID
		b, err := svc.CreateBatch(ctx, row.batch)
		if err != nil {
			if skip(line, err, &stats) {
				continue
			}
			return stats, fmt.Errorf("catalog line %d: %w", line, err)
		}
		stats.Batches++

		if row.openingPacks == 0 {
			continue
		}
		_, err = svc.CreatePurchase(ctx, app.CreatePurchaseRequest{
			TenantID:   tenantID,
			SupplierID: supplierID,
			Lines: []core.PurchaseLineInput{{
				BatchID:           b.ID,
				QuantityInPacks:   row.openingPacks,
				UnitPurchasePrice: row.unitCost,
			}},
		})
		if err != nil {
			return stats, fmt.Errorf("catalog line %d: opening stock: %w", line, err)
		}
		stats.Purchases++
	}
	return stats, nil
}

func skip(line int, err error, stats *Stats) bool {
	if !errors.Is(err, core.ErrValidation) {
		return false
	}
	log.Printf("catalog line %d: %v", line, err)
	stats.Skipped++
	return true
}

type catalogRow struct {
	medicine     app.CreateMedicineRequest
	batch        app.CreateBatchRequest
	openingPacks int64
	unitCost     decimal.Decimal
}

func parseRow(field func(string) string) (catalogRow, error) {
	var row catalogRow
	taxRate, err := decimal.NewFromString(field("tax_rate"))
	if err != nil {
		return row, fmt.Errorf("invalid tax_rate %q", field("tax_rate"))
	}
	price, err := decimal.NewFromString(field("price_per_unit"))
	if err != nil {
		return row, fmt.Errorf("invalid price_per_unit %q", field("price_per_unit"))
	}
	perPack, err := strconv.ParseInt(field("units_per_pack"), 10, 64)
	if err != nil {
		return row, fmt.Errorf("invalid units_per_pack %q", field("units_per_pack"))
	}

	row.medicine = app.CreateMedicineRequest{
		BrandName:    field("brand_name"),
		Manufacturer: field("manufacturer"),
		DosageForm:   field("dosage_form"),
		Composition:  parseComposition(field("composition")),
		TaxRate:      taxRate,
	}
	row.batch = app.CreateBatchRequest{
		BatchNumber:  field("batch_number"),
		ExpiryDate:   field("expiry_date"),
		PricePerUnit: price,
		UnitsPerPack: perPack,
	}

	if raw := field("opening_packs"); raw != "" {
		packs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || packs < 0 {
			return row, fmt.Errorf("invalid opening_packs %q", raw)
		}
		row.openingPacks = packs
	}
	if raw := field("unit_cost"); raw != "" {
		if row.unitCost, err = decimal.NewFromString(raw); err != nil {
			return row, fmt.Errorf("invalid unit_cost %q", raw)
		}
	}
	return row, nil
}

// parseComposition reads "Drug:Strength|Drug:Strength". Strength is optional.
func parseComposition(raw string) []core.Composition {
	var out []core.Composition
	for _, part := range strings.Split(raw, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		drug, strength, _ := strings.Cut(part, ":")
		out = append(out, core.Composition{Drug: strings.TrimSpace(drug), Strength: strings.TrimSpace(strength)})
	}
	return out
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("catalog header is missing column %q", c)
		}
	}
	return idx, nil
}
