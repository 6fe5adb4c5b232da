package core

import (
	"context"
	"fmt"
)

// CurrentStock returns Σ quantity_change over the ledger entries of batchID.
// A batch that does not exist in the tenant yields ErrNotFound; an existing
// batch with no entries has stock 0.
func CurrentStock(ctx context.Context, r Reader, tenantID, batchID string) (int64, error) {
	if _, err := r.GetBatch(ctx, tenantID, batchID); err != nil {
		return 0, err
	}
	sums, err := r.SumStock(ctx, tenantID, []string{batchID})
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger for batch %s: %w", batchID, err)
	}
	return sums[batchID], nil
}

// StockByBatch returns the stock of each batch in batchIDs using one grouped
// sum. Every requested id is present in the result, with 0 when it has no
// ledger entries.
func StockByBatch(ctx context.Context, r Reader, tenantID string, batchIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(batchIDs))
	if len(batchIDs) == 0 {
		return out, nil
	}
	sums, err := r.SumStock(ctx, tenantID, batchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger: %w", err)
	}
	for _, id := range batchIDs {
		out[id] = sums[id]
	}
	return out, nil
}
