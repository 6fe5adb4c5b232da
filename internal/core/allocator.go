package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AllocationPolicy decides how a sale line is matched to batches.
type AllocationPolicy string

const (
	// PolicyFEFOSingle fills a line from the earliest-expiring batch that can
	// cover it on its own.
	PolicyFEFOSingle AllocationPolicy = "FEFO_SINGLE"
	// PolicyFEFOSplit drains batches in expiry order until the line is covered.
	PolicyFEFOSplit AllocationPolicy = "FEFO_SPLIT"
)

func (p AllocationPolicy) IsValid() bool {
	return p == PolicyFEFOSingle || p == PolicyFEFOSplit
}

// Candidate is a batch offered to the allocator with its available units.
type Candidate struct {
	Batch     Batch
	Available int64
}

// Allocation is the portion of a sale line drawn from one batch.
type Allocation struct {
	BatchID   string
	Quantity  int64
	UnitPrice decimal.Decimal
	Expiry    time.Time
}

// Allocator is the Batch Allocator. It never writes; the coordinator records
// what it decides.
type Allocator struct {
	Policy      AllocationPolicy
	SkipExpired bool
	Now         func() time.Time
}

// NewAllocator returns an allocator for policy. An unknown policy falls back
// to PolicyFEFOSingle.
func NewAllocator(policy AllocationPolicy, skipExpired bool) *Allocator {
	if !policy.IsValid() {
		policy = PolicyFEFOSingle
	}
	return &Allocator{Policy: policy, SkipExpired: skipExpired, Now: time.Now}
}

// Allocate chooses batches of medicineID for requested units. Stock comes from
// one grouped sum over the ledger; drawn holds units already taken from a batch
// earlier in the same unit of work and is subtracted from availability.
func (a *Allocator) Allocate(ctx context.Context, r Reader, tenantID, medicineID string, requested int64, drawn map[string]int64) ([]Allocation, error) {
	batches, err := r.ListBatches(ctx, tenantID, medicineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}

	ids := make([]string, len(batches))
	for i, b := range batches {
		ids[i] = b.ID
	}
	stock, err := StockByBatch(ctx, r, tenantID, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(batches))
	for _, b := range batches {
		candidates = append(candidates, Candidate{Batch: b, Available: stock[b.ID] - drawn[b.ID]})
	}
	return a.Select(candidates, requested)
}

// Select applies the policy to candidates, which must be in insertion order.
// Batches with equal expiry keep that order.
func (a *Allocator) Select(candidates []Candidate, requested int64) ([]Allocation, error) {
	if requested <= 0 {
		return nil, validationf("requested quantity must be positive, got %d", requested)
	}

	eligible := make([]Candidate, 0, len(candidates))
	var cutoff time.Time
	if a.SkipExpired {
		now := time.Now
		if a.Now != nil {
			now = a.Now
		}
		y, m, d := now().UTC().Date()
		cutoff = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	for _, c := range candidates {
		if c.Available <= 0 {
			continue
		}
		if a.SkipExpired && c.Batch.ExpiryDate.Before(cutoff) {
			continue
		}
		eligible = append(eligible, c)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Batch.ExpiryDate.Before(eligible[j].Batch.ExpiryDate)
	})

	if a.Policy == PolicyFEFOSplit {
		return splitAcross(eligible, requested)
	}

	for _, c := range eligible {
		if c.Available >= requested {
			return []Allocation{allocationOf(c, requested)}, nil
		}
	}
	return nil, fmt.Errorf("%w: requested %d units, no single batch holds enough (largest has %d)",
		ErrInsufficientStock, requested, largest(eligible))
}

func splitAcross(eligible []Candidate, requested int64) ([]Allocation, error) {
	var total int64
	for _, c := range eligible {
		total += c.Available
	}
	if total < requested {
		return nil, fmt.Errorf("%w: requested %d units, only %d available", ErrInsufficientStock, requested, total)
	}

	var out []Allocation
	remaining := requested
	for _, c := range eligible {
		if remaining == 0 {
			break
		}
		take := min(c.Available, remaining)
		out = append(out, allocationOf(c, take))
		remaining -= take
	}
	return out, nil
}

func allocationOf(c Candidate, qty int64) Allocation {
	return Allocation{
		BatchID:   c.Batch.ID,
		Quantity:  qty,
		UnitPrice: c.Batch.PricePerUnit,
		Expiry:    c.Batch.ExpiryDate,
	}
}

func largest(cs []Candidate) int64 {
	var m int64
	for _, c := range cs {
		m = max(m, c.Available)
	}
	return m
}
