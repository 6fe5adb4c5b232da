// Package memory is an in-process implementation of core.Store.
//
// A unit of work holds the store-wide write lock for its whole duration, so
// concurrent sales are fully serialized. Writes made inside a unit of work are
// staged and only merged into the committed state when it succeeds.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"pharmacy-erp/internal/core"
)

type data struct {
	medicines     map[string]core.Medicine
	medicineOrder []string
	batches       map[string]core.Batch
	batchOrder    []string
	ledger        []core.LedgerEntry
	sales         map[string]core.Sale
	saleOrder     []string
	purchases     map[string]core.Purchase
}

func newData() *data {
	return &data{
		medicines: make(map[string]core.Medicine),
		batches:   make(map[string]core.Batch),
		sales:     make(map[string]core.Sale),
		purchases: make(map[string]core.Purchase),
	}
}

// merge appends everything staged in p onto d.
func (d *data) merge(p *data) {
	for _, id := range p.medicineOrder {
		d.medicines[id] = p.medicines[id]
		d.medicineOrder = append(d.medicineOrder, id)
	}
	for _, id := range p.batchOrder {
		d.batches[id] = p.batches[id]
		d.batchOrder = append(d.batchOrder, id)
	}
	d.ledger = append(d.ledger, p.ledger...)
	for _, id := range p.saleOrder {
		d.sales[id] = p.sales[id]
		d.saleOrder = append(d.saleOrder, id)
	}
	for id, pur := range p.purchases {
		d.purchases[id] = pur
	}
}

type Store struct {
	mu        sync.RWMutex
	committed *data
}

func New() *Store {
	return &Store{committed: newData()}
}

var _ core.Store = (*Store)(nil)

func (s *Store) read() view {
	return view{s.committed}
}

func (s *Store) GetMedicine(ctx context.Context, tenantID, medicineID string) (*core.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().getMedicine(tenantID, medicineID)
}

func (s *Store) ListMedicines(ctx context.Context, tenantID string) ([]core.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().listMedicines(tenantID), nil
}

func (s *Store) GetBatch(ctx context.Context, tenantID, batchID string) (*core.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().getBatch(tenantID, batchID)
}

func (s *Store) ListBatches(ctx context.Context, tenantID, medicineID string) ([]core.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().listBatches(tenantID, medicineID), nil
}

func (s *Store) SumStock(ctx context.Context, tenantID string, batchIDs []string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().sumStock(tenantID, batchIDs), nil
}

func (s *Store) ListLedger(ctx context.Context, tenantID, batchID string) ([]core.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().listLedger(tenantID, batchID), nil
}

func (s *Store) GetSale(ctx context.Context, tenantID, saleID string) (*core.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().getSale(tenantID, saleID)
}

func (s *Store) ListSalesSince(ctx context.Context, tenantID string, since time.Time) ([]core.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().listSalesSince(tenantID, since), nil
}

func (s *Store) GetPurchase(ctx context.Context, tenantID, purchaseID string) (*core.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().getPurchase(tenantID, purchaseID)
}

// WithinTx runs fn while holding the write lock. Staged writes are merged only
// when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx core.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrTransactionAborted, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &txn{base: s.committed, staged: newData()}
	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrTransactionAborted, err)
	}
	s.committed.merge(t.staged)
	return nil
}

type txn struct {
	base   *data
	staged *data
}

var _ core.Tx = (*txn)(nil)

func (t *txn) read() view {
	return view{t.base, t.staged}
}

func (t *txn) GetMedicine(ctx context.Context, tenantID, medicineID string) (*core.Medicine, error) {
	return t.read().getMedicine(tenantID, medicineID)
}

func (t *txn) ListMedicines(ctx context.Context, tenantID string) ([]core.Medicine, error) {
	return t.read().listMedicines(tenantID), nil
}

func (t *txn) GetBatch(ctx context.Context, tenantID, batchID string) (*core.Batch, error) {
	return t.read().getBatch(tenantID, batchID)
}

func (t *txn) ListBatches(ctx context.Context, tenantID, medicineID string) ([]core.Batch, error) {
	return t.read().listBatches(tenantID, medicineID), nil
}

func (t *txn) SumStock(ctx context.Context, tenantID string, batchIDs []string) (map[string]int64, error) {
	return t.read().sumStock(tenantID, batchIDs), nil
}

func (t *txn) ListLedger(ctx context.Context, tenantID, batchID string) ([]core.LedgerEntry, error) {
	return t.read().listLedger(tenantID, batchID), nil
}

func (t *txn) GetSale(ctx context.Context, tenantID, saleID string) (*core.Sale, error) {
	return t.read().getSale(tenantID, saleID)
}

func (t *txn) ListSalesSince(ctx context.Context, tenantID string, since time.Time) ([]core.Sale, error) {
	return t.read().listSalesSince(tenantID, since), nil
}

func (t *txn) GetPurchase(ctx context.Context, tenantID, purchaseID string) (*core.Purchase, error) {
	return t.read().getPurchase(tenantID, purchaseID)
}

// The store-wide lock held by WithinTx already serializes every writer.
func (t *txn) LockMedicineBatches(ctx context.Context, tenantID string, medicineIDs []string) error {
	return nil
}

func (t *txn) LockBatches(ctx context.Context, tenantID string, batchIDs []string) error {
	return nil
}

func (t *txn) InsertMedicine(ctx context.Context, m *core.Medicine) error {
	if _, err := t.read().getMedicine(m.TenantID, m.ID); err == nil {
		return fmt.Errorf("medicine %s already exists", m.ID)
	}
	c := *m
	c.Composition = slices.Clone(m.Composition)
	t.staged.medicines[m.ID] = c
	t.staged.medicineOrder = append(t.staged.medicineOrder, m.ID)
	return nil
}

func (t *txn) InsertBatch(ctx context.Context, b *core.Batch) error {
	if _, err := t.read().getMedicine(b.TenantID, b.MedicineID); err != nil {
		return err
	}
	if _, err := t.read().getBatch(b.TenantID, b.ID); err == nil {
		return fmt.Errorf("batch %s already exists", b.ID)
	}
	t.staged.batches[b.ID] = *b
	t.staged.batchOrder = append(t.staged.batchOrder, b.ID)
	return nil
}

func (t *txn) InsertSale(ctx context.Context, s *core.Sale) error {
	if _, err := t.read().getSale(s.TenantID, s.ID); err == nil {
		return fmt.Errorf("sale %s already exists", s.ID)
	}
	for _, it := range s.Items {
		if _, err := t.read().getBatch(s.TenantID, it.BatchID); err != nil {
			return err
		}
	}
	c := *s
	c.Items = slices.Clone(s.Items)
	t.staged.sales[s.ID] = c
	t.staged.saleOrder = append(t.staged.saleOrder, s.ID)
	return nil
}

func (t *txn) InsertPurchase(ctx context.Context, p *core.Purchase) error {
	if _, err := t.read().getPurchase(p.TenantID, p.ID); err == nil {
		return fmt.Errorf("purchase %s already exists", p.ID)
	}
	for _, it := range p.Items {
		if _, err := t.read().getBatch(p.TenantID, it.BatchID); err != nil {
			return err
		}
	}
	c := *p
	c.Items = slices.Clone(p.Items)
	t.staged.purchases[p.ID] = c
	return nil
}

func (t *txn) AppendLedger(ctx context.Context, entries []core.LedgerEntry) error {
	for _, e := range entries {
		if _, err := t.read().getBatch(e.TenantID, e.BatchID); err != nil {
			return err
		}
	}
	t.staged.ledger = append(t.staged.ledger, entries...)
	return nil
}
