package core_test

import (
	"math"
	"testing"
	"time"

	"pharmacy-erp/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventory_StockLevelsAndStockByBatch(t *testing.T) {
	f := newFixture(t, core.PolicyFEFOSingle)
	m := f.medicine(t, tenant, "Paracip", "Paracetamol", "12")
	a := f.batch(t, tenant, m.ID, "A", "2025-01-01", "5.00", 10)
	b := f.batch(t, tenant, m.ID, "B", "2025-06-01", "5.50", 0)
	f.batch(t, otherTenant, f.medicine(t, otherTenant, "Other", "Paracetamol", "12").ID, "Z", "2025-01-01", "1.00", 99)

	levels, err := f.inventory.StockLevels(f.ctx, tenant)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, a.ID, levels[0].ID)
	assert.Equal(t, "Paracip", levels[0].MedicineName)
	assert.Equal(t, int64(10), levels[0].Stock)
	assert.Equal(t, b.ID, levels[1].ID)
	assert.Equal(t, int64(0), levels[1].Stock)

	byBatch, err := f.inventory.StockByBatch(f.ctx, tenant, []string{a.ID, b.ID, "bat_unknown"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{a.ID: 10, b.ID: 0, "bat_unknown": 0}, byBatch)

	_, err = f.inventory.CurrentStock(f.ctx, tenant, "bat_unknown")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInventory_StockIsIdempotentRead(t *testing.T) {
	f := newFixture(t, core.PolicyFEFOSingle)
	m := f.medicine(t, tenant, "Paracip", "Paracetamol", "12")
	a := f.batch(t, tenant, m.ID, "A", "2025-01-01", "5.00", 10)

	first := f.stock(t, tenant, a.ID)
	second := f.stock(t, tenant, a.ID)
	assert.Equal(t, first, second)

	entries, err := f.inventory.BatchLedger(f.ctx, tenant, a.ID)
	require.NoError(t, err)
	var sum int64
	for _, e := range entries {
		sum += e.QuantityChange
	}
	assert.Equal(t, first, sum)
}

func TestInventory_SearchByDrug(t *testing.T) {
	f := newFixture(t, core.PolicyFEFOSingle)
	para := f.medicine(t, tenant, "Paracip", "Paracetamol", "12")
	late := f.batch(t, tenant, para.ID, "L", "2026-01-01", "5.00", 5)
	early := f.batch(t, tenant, para.ID, "E", "2025-01-01", "5.00", 3)
	f.batch(t, tenant, para.ID, "EMPTY", "2024-01-01", "5.00", 0)

	calpol := f.medicine(t, tenant, "Calpol", "paracetamol", "12")
	f.batch(t, tenant, calpol.ID, "C", "2025-01-01", "5.00", 0)
	f.medicine(t, tenant, "Amoxil", "Amoxicillin", "12")

	results, err := f.inventory.SearchByDrug(f.ctx, tenant, "PARACET")
	require.NoError(t, err)
	require.Len(t, results, 1, "medicines without stock are omitted")
	got := results[0]
	assert.Equal(t, para.ID, got.ID)
	assert.Equal(t, int64(8), got.TotalStock)
	require.Len(t, got.Batches, 2)
	assert.Equal(t, early.ID, got.Batches[0].ID)
	assert.Equal(t, late.ID, got.Batches[1].ID)

	_, err = f.inventory.SearchByDrug(f.ctx, tenant, "  ")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestInventory_LowStock(t *testing.T) {
	f := newFixture(t, core.PolicyFEFOSingle)
	high := f.medicine(t, tenant, "Scarce", "Drug A", "5")
	f.batch(t, tenant, high.ID, "H", "2026-01-01", "1.00", 10)
	medium := f.medicine(t, tenant, "Thin", "Drug B", "5")
	f.batch(t, tenant, medium.ID, "M", "2026-01-01", "1.00", 30)
	plenty := f.medicine(t, tenant, "Plenty", "Drug C", "5")
	f.batch(t, tenant, plenty.ID, "P", "2026-01-01", "1.00", 80)
	f.medicine(t, tenant, "NoBatches", "Drug D", "5")

	items, err := f.inventory.LowStock(f.ctx, tenant, 50, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, high.ID, items[0].MedicineID)
	assert.Equal(t, "high", items[0].Urgency)
	assert.Equal(t, int64(10), items[0].TotalStock)
	assert.Equal(t, medium.ID, items[1].MedicineID)
	assert.Equal(t, "medium", items[1].Urgency)

	limited, err := f.inventory.LowStock(f.ctx, tenant, 50, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = f.inventory.LowStock(f.ctx, tenant, 0, 0)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestInventory_ExpiringBatches(t *testing.T) {
	f := newFixture(t, core.PolicyFEFOSingle)
	m := f.medicine(t, tenant, "Paracip", "Paracetamol", "12")
	soon := f.batch(t, tenant, m.ID, "SOON", "2025-03-20", "5.00", 5)
	expired := f.batch(t, tenant, m.ID, "OLD", "2025-02-01", "5.00", 5)
	f.batch(t, tenant, m.ID, "FAR", "2026-01-01", "5.00", 5)
	f.batch(t, tenant, m.ID, "EMPTY", "2025-03-01", "5.00", 0)

	asOf := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	got, err := f.inventory.ExpiringBatches(f.ctx, tenant, asOf, 30)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, expired.ID, got[0].ID)
	assert.Equal(t, soon.ID, got[1].ID)
}

func TestReporting_SalesSummary(t *testing.T) {
	f := newFixture(t, core.PolicyFEFOSingle)
	m := f.medicine(t, tenant, "Amoxil", "Amoxicillin", "12")
	f.batch(t, tenant, m.ID, "X", "2027-01-01", "10.00", 50)
	reports := core.NewReportingService(f.store)

	start := time.Now().UTC().Add(-time.Minute)
	var saleIDs []string
	for i := 0; i < 6; i++ {
		sale, err := f.coord.CreateSale(f.ctx, tenant, staff, "", []core.SaleLineInput{
			{MedicineID: m.ID, QuantityInUnits: 5},
		})
		require.NoError(t, err)
		saleIDs = append(saleIDs, sale.ID)
	}

	sum, err := reports.SalesSummary(f.ctx, tenant, start)
	require.NoError(t, err)
	assert.Equal(t, 6, sum.SaleCount)
	assert.Equal(t, "300.00", sum.SubTotal.StringFixed(2))
	assert.Equal(t, "36.00", sum.TotalTax.StringFixed(2))
	assert.Equal(t, "336.00", sum.GrandTotal.StringFixed(2))

	require.Len(t, sum.RecentSales, core.RecentSalesLimit)
	assert.Equal(t, saleIDs[5], sum.RecentSales[0].ID)
	assert.Equal(t, saleIDs[1], sum.RecentSales[4].ID)

	none, err := reports.SalesSummary(f.ctx, otherTenant, start)
	require.NoError(t, err)
	assert.Equal(t, 0, none.SaleCount)
	assert.True(t, none.GrandTotal.IsZero())
	assert.Empty(t, none.RecentSales)

	_, err = reports.GetSale(f.ctx, tenant, "sale_missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCatalog_Validation(t *testing.T) {
	f := newFixture(t, core.PolicyFEFOSingle)

	_, err := f.catalog.CreateMedicine(f.ctx, tenant, core.MedicineInput{BrandName: " "})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = f.catalog.CreateMedicine(f.ctx, tenant, core.MedicineInput{BrandName: "X", TaxRate: d("101")})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = f.catalog.CreateMedicine(f.ctx, tenant, core.MedicineInput{BrandName: "X", TaxRate: d("12.125")})
	assert.ErrorIs(t, err, core.ErrValidation)
	trailing, err := f.catalog.CreateMedicine(f.ctx, tenant, core.MedicineInput{BrandName: "X", TaxRate: d("12.500")})
	require.NoError(t, err, "trailing zeros do not add precision")
	assert.True(t, trailing.TaxRate.Equal(d("12.5")))

	m := f.medicine(t, tenant, "Paracip", "Paracetamol", "12")
	valid := core.BatchInput{MedicineID: m.ID, BatchNumber: "A", ExpiryDate: date("2026-01-01"), PricePerUnit: d("1"), UnitsPerPack: 10}

	bad := valid
	bad.UnitsPerPack = 0
	_, err = f.catalog.CreateBatch(f.ctx, tenant, bad)
	assert.ErrorIs(t, err, core.ErrValidation)

	bad = valid
	bad.PricePerUnit = d("1.00005")
	_, err = f.catalog.CreateBatch(f.ctx, tenant, bad)
	assert.ErrorIs(t, err, core.ErrValidation)

	bad = valid
	bad.UnitsPerPack = math.MaxInt32 + 1
	_, err = f.catalog.CreateBatch(f.ctx, tenant, bad)
	assert.ErrorIs(t, err, core.ErrValidation)

	bad = valid
	bad.ExpiryDate = time.Time{}
	_, err = f.catalog.CreateBatch(f.ctx, tenant, bad)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = f.catalog.CreateBatch(f.ctx, otherTenant, valid)
	assert.ErrorIs(t, err, core.ErrNotFound)

	b, err := f.catalog.CreateBatch(f.ctx, tenant, valid)
	require.NoError(t, err)
	dup, err := f.catalog.CreateBatch(f.ctx, tenant, valid)
	require.NoError(t, err, "batch numbers are not unique")
	assert.NotEqual(t, b.ID, dup.ID)
}
