package txn

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/UIUC-Hort-Club/PlantPass/internal/common"
	"github.com/UIUC-Hort-Club/PlantPass/internal/notify"
	"github.com/UIUC-Hort-Club/PlantPass/internal/obs"
	"github.com/UIUC-Hort-Club/PlantPass/internal/purchaseid"
)

// DefaultRecentLimit caps how many unpaid transactions the till recall list
// shows when the caller does not ask for a specific count.
const DefaultRecentLimit = 5

// Service implements the caller boundary for transactions. Every operation is
// a single stateless invocation: load, compute, write back. Concurrent writes
// to the same purchase id resolve last-write-wins at the store.
type Service struct {
	Store         Store
	Events        *notify.Bus
	MaxIDAttempts int
	ScanPage      int
	Now           func() time.Time
}

// Create records a new sale: allocates a purchase id, freezes the cart's
// pricing and discount terms, computes the receipt and persists the record.
func (s *Service) Create(ctx context.Context, cart Cart) (Transaction, error) {
	gen := purchaseid.Generator{Exists: s.Store.Exists, MaxAttempts: s.MaxIDAttempts}
	id, err := gen.Generate(ctx)
	if err != nil {
		if errors.Is(err, purchaseid.ErrExhausted) {
			obs.CountTransactionWrite("create", "id_exhausted")
			return Transaction{}, common.IDExhaustedError(err)
		}
		return Transaction{}, common.StoreError(err)
	}

	timestamp := cart.Timestamp
	if timestamp == 0 {
		timestamp = s.now().Unix()
	}
	t, err := New(cart, id, timestamp)
	if err != nil {
		obs.CountTransactionWrite("create", "invalid")
		return Transaction{}, err
	}
	if err := s.Store.Put(ctx, t); err != nil {
		obs.CountTransactionWrite("create", "store_error")
		return Transaction{}, common.StoreError(err)
	}
	obs.CountTransactionWrite("create", "ok")
	s.Events.Emit(ctx, notify.TopicTransactionCreated, t.PurchaseID, t)
	return t, nil
}

// Get loads a transaction by purchase id.
func (s *Service) Get(ctx context.Context, purchaseID string) (Transaction, error) {
	t, err := s.Store.Get(ctx, purchaseID)
	if err != nil {
		return Transaction{}, mapStoreErr(err, purchaseID)
	}
	return t, nil
}

// Update applies a partial revision and writes the recomputed record back.
func (s *Service) Update(ctx context.Context, purchaseID string, u Update) (Transaction, error) {
	t, err := s.Store.Get(ctx, purchaseID)
	if err != nil {
		return Transaction{}, mapStoreErr(err, purchaseID)
	}
	if err := t.ApplyUpdate(u); err != nil {
		obs.CountTransactionWrite("update", "invalid")
		return Transaction{}, err
	}
	if err := s.Store.Put(ctx, t); err != nil {
		obs.CountTransactionWrite("update", "store_error")
		return Transaction{}, common.StoreError(err)
	}
	obs.CountTransactionWrite("update", "ok")
	s.Events.Emit(ctx, notify.TopicTransactionUpdated, t.PurchaseID, t)
	return t, nil
}

// Delete removes the record. Deletion is terminal; nothing else references a
// transaction by id.
func (s *Service) Delete(ctx context.Context, purchaseID string) error {
	if err := s.Store.Delete(ctx, purchaseID); err != nil {
		return mapStoreErr(err, purchaseID)
	}
	obs.CountTransactionWrite("delete", "ok")
	s.Events.Emit(ctx, notify.TopicTransactionDeleted, purchaseID, map[string]any{"purchase_id": purchaseID})
	return nil
}

// RecentUnpaid lists the newest transactions still awaiting payment, newest
// first. Used by the till to recall an order the customer walked away from.
func (s *Service) RecentUnpaid(ctx context.Context, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	all, err := s.scanAll(ctx)
	if err != nil {
		return nil, common.StoreError(err)
	}
	unpaid := make([]Transaction, 0, limit)
	for _, t := range all {
		if !t.Payment.Paid {
			unpaid = append(unpaid, t)
		}
	}
	sort.Slice(unpaid, func(i, j int) bool { return unpaid[i].Timestamp > unpaid[j].Timestamp })
	if len(unpaid) > limit {
		unpaid = unpaid[:limit]
	}
	return unpaid, nil
}

// ClearAll wipes every stored transaction and reports how many were removed.
// Administrative reset between sale events.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	cleared, err := s.Store.Clear(ctx)
	if err != nil {
		obs.CountTransactionWrite("clear", "store_error")
		return 0, common.StoreError(err)
	}
	obs.CountTransactionWrite("clear", "ok")
	s.Events.Emit(ctx, notify.TopicTransactionsCleared, "", map[string]any{"cleared_count": cleared})
	return cleared, nil
}

func (s *Service) scanAll(ctx context.Context) ([]Transaction, error) {
	page := s.ScanPage
	if page <= 0 {
		page = 200
	}
	var (
		all    []Transaction
		cursor string
	)
	for {
		batch, next, err := s.Store.Scan(ctx, cursor, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func mapStoreErr(err error, purchaseID string) error {
	if errors.Is(err, ErrNotFound) {
		return common.NotFoundError("transaction not found", map[string]any{"purchase_id": purchaseID})
	}
	return common.StoreError(err)
}
