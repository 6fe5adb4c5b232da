package core_test

import (
	"testing"
	"time"

	"pharmacy-erp/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func candidate(id, expiry, price string, available int64) core.Candidate {
	return core.Candidate{
		Batch:     core.Batch{ID: id, ExpiryDate: date(expiry), PricePerUnit: d(price), UnitsPerPack: 10},
		Available: available,
	}
}

func TestAllocationPolicy_IsValid(t *testing.T) {
	assert.True(t, core.PolicyFEFOSingle.IsValid())
	assert.True(t, core.PolicyFEFOSplit.IsValid())
	assert.False(t, core.AllocationPolicy("LIFO").IsValid())

	a := core.NewAllocator("LIFO", false)
	assert.Equal(t, core.PolicyFEFOSingle, a.Policy)
}

func TestAllocator_SelectSingle(t *testing.T) {
	a := core.NewAllocator(core.PolicyFEFOSingle, false)

	t.Run("earliest expiry wins", func(t *testing.T) {
		got, err := a.Select([]core.Candidate{
			candidate("B", "2025-06-01", "5.50", 10),
			candidate("A", "2025-01-01", "5.00", 10),
		}, 8)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "A", got[0].BatchID)
		assert.Equal(t, int64(8), got[0].Quantity)
		assert.True(t, got[0].UnitPrice.Equal(d("5.00")))
	})

	t.Run("skips batches that cannot cover the line alone", func(t *testing.T) {
		got, err := a.Select([]core.Candidate{
			candidate("A", "2025-01-01", "5.00", 5),
			candidate("B", "2025-06-01", "5.50", 10),
		}, 8)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "B", got[0].BatchID)
		assert.True(t, got[0].UnitPrice.Equal(d("5.50")))
	})

	t.Run("equal expiry keeps insertion order", func(t *testing.T) {
		got, err := a.Select([]core.Candidate{
			candidate("first", "2025-03-01", "4.00", 10),
			candidate("second", "2025-03-01", "4.50", 10),
		}, 3)
		require.NoError(t, err)
		assert.Equal(t, "first", got[0].BatchID)
	})

	t.Run("combined stock is not enough", func(t *testing.T) {
		_, err := a.Select([]core.Candidate{
			candidate("A", "2025-01-01", "5.00", 10),
			candidate("B", "2025-06-01", "5.50", 10),
		}, 15)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInsufficientStock)
		assert.Contains(t, err.Error(), "largest has 10")
	})

	t.Run("no batches", func(t *testing.T) {
		_, err := a.Select(nil, 1)
		assert.ErrorIs(t, err, core.ErrInsufficientStock)
	})

	t.Run("empty and negative batches are ignored", func(t *testing.T) {
		got, err := a.Select([]core.Candidate{
			candidate("drained", "2024-01-01", "1.00", 0),
			candidate("oversold", "2024-02-01", "1.00", -3),
			candidate("ok", "2026-01-01", "2.00", 4),
		}, 4)
		require.NoError(t, err)
		assert.Equal(t, "ok", got[0].BatchID)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := a.Select([]core.Candidate{candidate("A", "2025-01-01", "5.00", 10)}, 0)
		assert.ErrorIs(t, err, core.ErrValidation)
	})
}

func TestAllocator_SelectSplit(t *testing.T) {
	a := core.NewAllocator(core.PolicyFEFOSplit, false)

	got, err := a.Select([]core.Candidate{
		candidate("B", "2025-06-01", "5.50", 10),
		candidate("A", "2025-01-01", "5.00", 10),
	}, 15)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].BatchID)
	assert.Equal(t, int64(10), got[0].Quantity)
	assert.Equal(t, "B", got[1].BatchID)
	assert.Equal(t, int64(5), got[1].Quantity)

	_, err = a.Select([]core.Candidate{candidate("A", "2025-01-01", "5.00", 10)}, 11)
	assert.ErrorIs(t, err, core.ErrInsufficientStock)
}

func TestAllocator_SkipExpired(t *testing.T) {
	a := core.NewAllocator(core.PolicyFEFOSingle, true)
	a.Now = func() time.Time { return date("2025-03-15").Add(10 * time.Hour) }

	got, err := a.Select([]core.Candidate{
		candidate("expired", "2025-03-14", "5.00", 10),
		candidate("today", "2025-03-15", "5.00", 10),
		candidate("later", "2025-04-01", "5.00", 10),
	}, 5)
	require.NoError(t, err)
	assert.Equal(t, "today", got[0].BatchID)

	_, err = a.Select([]core.Candidate{candidate("expired", "2025-03-14", "5.00", 10)}, 5)
	assert.ErrorIs(t, err, core.ErrInsufficientStock)
}

func TestAllocator_SkipExpiredUsesUTCDate(t *testing.T) {
	a := core.NewAllocator(core.PolicyFEFOSingle, true)
	ist := time.FixedZone("IST", 5*60*60+30*60)
	// 01:00 on the 15th in IST is still the 14th in UTC
	a.Now = func() time.Time { return time.Date(2025, 3, 15, 1, 0, 0, 0, ist) }

	got, err := a.Select([]core.Candidate{
		candidate("ends-14th", "2025-03-14", "5.00", 10),
		candidate("later", "2025-04-01", "5.00", 10),
	}, 5)
	require.NoError(t, err)
	assert.Equal(t, "ends-14th", got[0].BatchID)
}
