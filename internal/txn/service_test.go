package txn_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/UIUC-Hort-Club/PlantPass/internal/common"
	"github.com/UIUC-Hort-Club/PlantPass/internal/purchaseid"
	"github.com/UIUC-Hort-Club/PlantPass/internal/store/memory"
	"github.com/UIUC-Hort-Club/PlantPass/internal/txn"
)

func newService() *txn.Service {
	return &txn.Service{
		Store: memory.New(),
		Now:   func() time.Time { return time.Date(2026, 4, 18, 12, 0, 0, 0, time.UTC) },
	}
}

func TestCreateAllocatesID(t *testing.T) {
	svc := newService()
	tr, err := svc.Create(context.Background(), sampleCart())
	require.NoError(t, err)
	require.True(t, purchaseid.Valid(tr.PurchaseID))
	require.Equal(t, int64(1744968300), tr.Timestamp, "cart timestamp is honoured")

	stored, err := svc.Get(context.Background(), tr.PurchaseID)
	require.NoError(t, err)
	require.True(t, stored.Receipt.Total.Equal(tr.Receipt.Total))
}

func TestCreateDefaultsTimestampToNow(t *testing.T) {
	svc := newService()
	cart := sampleCart()
	cart.Timestamp = 0

	tr, err := svc.Create(context.Background(), cart)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 4, 18, 12, 0, 0, 0, time.UTC).Unix(), tr.Timestamp)
}

func TestCreateRejectsInvalidCart(t *testing.T) {
	svc := newService()
	_, err := svc.Create(context.Background(), txn.Cart{})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
}

func TestGetUnknownID(t *testing.T) {
	svc := newService()
	_, err := svc.Get(context.Background(), "ZZZ-ZZZ")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestUpdatePersists(t *testing.T) {
	svc := newService()
	tr, err := svc.Create(context.Background(), sampleCart())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), tr.PurchaseID, txn.Update{
		Payment: &txn.PaymentPatch{Method: strptr("card"), Paid: boolptr(true)},
	})
	require.NoError(t, err)
	require.True(t, updated.Payment.Paid)

	stored, err := svc.Get(context.Background(), tr.PurchaseID)
	require.NoError(t, err)
	require.True(t, stored.Payment.Paid)
	require.Equal(t, "card", stored.Payment.Method)
}

func TestDelete(t *testing.T) {
	svc := newService()
	tr, err := svc.Create(context.Background(), sampleCart())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), tr.PurchaseID))

	_, err = svc.Get(context.Background(), tr.PurchaseID)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)

	err = svc.Delete(context.Background(), tr.PurchaseID)
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestRecentUnpaid(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		cart := sampleCart()
		cart.Timestamp = int64(1000 + i)
		tr, err := svc.Create(ctx, cart)
		require.NoError(t, err)
		ids = append(ids, tr.PurchaseID)
	}

	// Settle the newest one; it must drop out of the recall list.
	_, err := svc.Update(ctx, ids[3], txn.Update{Payment: &txn.PaymentPatch{Paid: boolptr(true)}})
	require.NoError(t, err)

	unpaid, err := svc.RecentUnpaid(ctx, 2)
	require.NoError(t, err)
	require.Len(t, unpaid, 2)
	require.Equal(t, int64(1002), unpaid[0].Timestamp, "newest unpaid first")
	require.Equal(t, int64(1001), unpaid[1].Timestamp)
}

func TestRecentUnpaidDefaultLimit(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		cart := sampleCart()
		cart.Timestamp = int64(1000 + i)
		_, err := svc.Create(ctx, cart)
		require.NoError(t, err)
	}

	unpaid, err := svc.RecentUnpaid(ctx, 0)
	require.NoError(t, err)
	require.Len(t, unpaid, txn.DefaultRecentLimit)
}

func TestClearAll(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, sampleCart())
		require.NoError(t, err)
	}

	cleared, err := svc.ClearAll(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), cleared)

	unpaid, err := svc.RecentUnpaid(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, unpaid)
}

func TestCreateIDExhausted(t *testing.T) {
	svc := newService()
	svc.MaxIDAttempts = 3
	svc.Store = takenStore{}

	_, err := svc.Create(context.Background(), sampleCart())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeIDExhausted, appErr.Code)
	require.ErrorIs(t, err, purchaseid.ErrExhausted)
}

// takenStore reports every id as taken to starve the generator.
type takenStore struct{}

func (takenStore) Get(ctx context.Context, purchaseID string) (txn.Transaction, error) {
	return txn.Transaction{}, txn.ErrNotFound
}
func (takenStore) Put(ctx context.Context, t txn.Transaction) error   { return nil }
func (takenStore) Delete(ctx context.Context, purchaseID string) error { return txn.ErrNotFound }
func (takenStore) Exists(ctx context.Context, purchaseID string) (bool, error) {
	return true, nil
}
func (takenStore) Scan(ctx context.Context, cursor string, limit int) ([]txn.Transaction, string, error) {
	return nil, "", nil
}
func (takenStore) Clear(ctx context.Context) (int64, error) { return 0, nil }
