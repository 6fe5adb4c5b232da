package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharmacy-erp/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) (core.Medicine, core.Batch) {
	t.Helper()
	m := core.Medicine{ID: "med_1", TenantID: "t1", BrandName: "Paracip",
		Composition: []core.Composition{{Drug: "Paracetamol", Strength: "500mg"}}, TaxRate: decimal.NewFromInt(12)}
	b := core.Batch{ID: "bat_1", TenantID: "t1", MedicineID: "med_1", BatchNumber: "A",
		ExpiryDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), PricePerUnit: decimal.NewFromInt(5), UnitsPerPack: 10}
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx core.Tx) error {
		if err := tx.InsertMedicine(ctx, &m); err != nil {
			return err
		}
		if err := tx.InsertBatch(ctx, &b); err != nil {
			return err
		}
		return tx.AppendLedger(ctx, []core.LedgerEntry{
			{ID: "txn_1", TenantID: "t1", BatchID: "bat_1", QuantityChange: 10, Type: core.TransactionPurchase, ReferenceID: "pur_1"},
		})
	})
	require.NoError(t, err)
	return m, b
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s)

	got, err := s.GetMedicine(ctx, "t1", "med_1")
	require.NoError(t, err)
	assert.Equal(t, "Paracip", got.BrandName)

	sums, err := s.SumStock(ctx, "t1", []string{"bat_1"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), sums["bat_1"])
}

func TestWithinTx_DiscardsOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx core.Tx) error {
		err := tx.AppendLedger(ctx, []core.LedgerEntry{
			{ID: "txn_2", TenantID: "t1", BatchID: "bat_1", QuantityChange: -4, Type: core.TransactionSale, ReferenceID: "sale_1"},
		})
		require.NoError(t, err)

		sums, err := tx.SumStock(ctx, "t1", []string{"bat_1"})
		require.NoError(t, err)
		assert.Equal(t, int64(6), sums["bat_1"], "a unit of work sees its own writes")

		outside, err := s.read().getBatch("t1", "bat_1")
		require.NoError(t, err)
		assert.Equal(t, "bat_1", outside.ID)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	sums, err := s.SumStock(ctx, "t1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), sums["bat_1"])

	entries, err := s.ListLedger(ctx, "t1", "bat_1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWithinTx_CancelledContextAborts(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithinTx(ctx, func(context.Context, core.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, core.ErrTransactionAborted)
	assert.False(t, called)
}

func TestStore_TenantScoping(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s)

	_, err := s.GetMedicine(ctx, "t2", "med_1")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.GetBatch(ctx, "t2", "bat_1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	batches, err := s.ListBatches(ctx, "t2", "")
	require.NoError(t, err)
	assert.Empty(t, batches)

	sums, err := s.SumStock(ctx, "t2", nil)
	require.NoError(t, err)
	assert.Empty(t, sums)

	err = s.WithinTx(ctx, func(ctx context.Context, tx core.Tx) error {
		return tx.AppendLedger(ctx, []core.LedgerEntry{{ID: "txn_x", TenantID: "t2", BatchID: "bat_1", QuantityChange: 1}})
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_ReturnedValuesDoNotAlias(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s)

	m, err := s.GetMedicine(ctx, "t1", "med_1")
	require.NoError(t, err)
	m.Composition[0].Drug = "changed"

	again, err := s.GetMedicine(ctx, "t1", "med_1")
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", again.Composition[0].Drug)
}

func TestStore_ListBatchesInsertionOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s)

	err := s.WithinTx(ctx, func(ctx context.Context, tx core.Tx) error {
		for _, id := range []string{"bat_3", "bat_2"} {
			b := core.Batch{ID: id, TenantID: "t1", MedicineID: "med_1", UnitsPerPack: 1}
			if err := tx.InsertBatch(ctx, &b); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	batches, err := s.ListBatches(ctx, "t1", "med_1")
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, []string{"bat_1", "bat_3", "bat_2"}, []string{batches[0].ID, batches[1].ID, batches[2].ID})

	err = s.WithinTx(ctx, func(ctx context.Context, tx core.Tx) error {
		b := core.Batch{ID: "bat_9", TenantID: "t1", MedicineID: "med_missing", UnitsPerPack: 1}
		return tx.InsertBatch(ctx, &b)
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}
