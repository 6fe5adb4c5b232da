package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"pharmacy-erp/internal/adapters/cli"
	"pharmacy-erp/internal/app"
	"pharmacy-erp/internal/core"
	"pharmacy-erp/internal/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (app.ApplicationService, *core.Medicine, *core.Batch) {
	t.Helper()
	ctx := context.Background()
	svc := app.New(memory.New(), nil, nil, app.Options{})
	m, err := svc.CreateMedicine(ctx, app.CreateMedicineRequest{
		TenantID:    "t1",
		BrandName:   "Cetzine 10",
		Composition: []core.Composition{{Drug: "Cetirizine", Strength: "10mg"}},
		TaxRate:     decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	b, err := svc.CreateBatch(ctx, app.CreateBatchRequest{
		TenantID:     "t1",
		MedicineID:   m.ID,
		BatchNumber:  "CTZ-9",
		ExpiryDate:   time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		PricePerUnit: decimal.RequireFromString("2.10"),
		UnitsPerPack: 10,
	})
	require.NoError(t, err)
	return svc, m, b
}

func TestRun_PurchaseThenSell(t *testing.T) {
	svc, m, b := seed(t)
	ctx := context.Background()

	var out bytes.Buffer
	in := strings.NewReader(`{"supplier_id":"sup-1","items":[{"batch_id":"` + b.ID + `","quantity_in_packs":3,"unit_purchase_price":"15.00"}]}`)
	require.NoError(t, cli.Run(ctx, svc, "t1", []string{"purchase"}, in, &out))
	assert.Contains(t, out.String(), `"total_amount": "450"`)

	out.Reset()
	in = strings.NewReader(`{"staff_id":"staff-1","items":[{"medicine_id":"` + m.ID + `","quantity_in_units":4}]}`)
	require.NoError(t, cli.Run(ctx, svc, "t1", []string{"sell"}, in, &out))
	assert.Contains(t, out.String(), b.ID)

	out.Reset()
	require.NoError(t, cli.Run(ctx, svc, "t1", []string{"stock"}, nil, &out))
	assert.Contains(t, out.String(), "CTZ-9")
	assert.Contains(t, out.String(), " 26 ")

	out.Reset()
	require.NoError(t, cli.Run(ctx, svc, "t1", []string{"stock", b.ID}, nil, &out))
	assert.Contains(t, out.String(), "26 units")

	out.Reset()
	require.NoError(t, cli.Run(ctx, svc, "t1", []string{"expiring", "10"}, nil, &out))
	assert.Contains(t, out.String(), "CTZ-9")

	out.Reset()
	require.NoError(t, cli.Run(ctx, svc, "t1", []string{"summary"}, nil, &out))
	assert.Contains(t, out.String(), "1 sales")
	assert.Contains(t, out.String(), "staff-1")
}

func TestRun_Errors(t *testing.T) {
	svc, m, _ := seed(t)
	ctx := context.Background()
	var out bytes.Buffer

	err := cli.Run(ctx, svc, "t1", []string{"sell"},
		strings.NewReader(`{"staff_id":"s","items":[{"medicine_id":"`+m.ID+`","quantity_in_units":1}]}`), &out)
	assert.ErrorIs(t, err, core.ErrInsufficientStock)

	assert.Error(t, cli.Run(ctx, svc, "t1", []string{"bogus"}, nil, &out))
	assert.Error(t, cli.Run(ctx, svc, "", []string{"stock"}, nil, &out))
	assert.Error(t, cli.Run(ctx, svc, "t1", []string{"expiring", "-3"}, nil, &out))
	assert.Error(t, cli.Run(ctx, svc, "t1", []string{"sell"}, strings.NewReader("not json"), &out))
}
