package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/UIUC-Hort-Club/PlantPass/internal/discount"
	"github.com/UIUC-Hort-Club/PlantPass/internal/txn"
)

// Store keeps transactions in process memory. It backs local development and
// tests, and the service falls back to it when no database is configured.
// Records are cloned on the way in and out so callers can never mutate the
// stored copy.
type Store struct {
	mu      sync.RWMutex
	records map[string]txn.Transaction
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[string]txn.Transaction)}
}

// Get returns the transaction stored under purchaseID.
func (s *Store) Get(ctx context.Context, purchaseID string) (txn.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.records[purchaseID]
	if !ok {
		return txn.Transaction{}, txn.ErrNotFound
	}
	return clone(t), nil
}

// Put stores the transaction, replacing any existing record.
func (s *Store) Put(ctx context.Context, t txn.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[t.PurchaseID] = clone(t)
	return nil
}

// Delete removes the record under purchaseID.
func (s *Store) Delete(ctx context.Context, purchaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[purchaseID]; !ok {
		return txn.ErrNotFound
	}
	delete(s.records, purchaseID)
	return nil
}

// Exists reports whether a record is stored under purchaseID.
func (s *Store) Exists(ctx context.Context, purchaseID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[purchaseID]
	return ok, nil
}

// Scan pages through all records in purchase id order. The cursor is the last
// purchase id of the previous page; an empty returned cursor ends the scan.
func (s *Store) Scan(ctx context.Context, cursor string, limit int) ([]txn.Transaction, string, error) {
	if limit <= 0 {
		limit = 100
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		if key > cursor {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	page := make([]txn.Transaction, 0, limit)
	next := ""
	for i, key := range keys {
		if i == limit {
			next = page[len(page)-1].PurchaseID
			break
		}
		page = append(page, clone(s.records[key]))
	}
	return page, next, nil
}

// Clear removes every record and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := int64(len(s.records))
	s.records = make(map[string]txn.Transaction)
	return count, nil
}

func clone(t txn.Transaction) txn.Transaction {
	out := t
	out.Items = append([]txn.LineItem(nil), t.Items...)
	out.Discounts = append([]discount.Applied(nil), t.Discounts...)
	return out
}
