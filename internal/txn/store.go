package txn

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store implementations when no record exists
// under the requested purchase id.
var ErrNotFound = errors.New("transaction not found")

// Store is the persistence collaborator the transaction service depends on.
// It is assumed strongly consistent for the Exists probe used during id
// allocation. Scan pages through all records: an empty cursor starts from the
// beginning and an empty returned cursor means the scan is exhausted.
type Store interface {
	Get(ctx context.Context, purchaseID string) (Transaction, error)
	Put(ctx context.Context, t Transaction) error
	Delete(ctx context.Context, purchaseID string) error
	Exists(ctx context.Context, purchaseID string) (bool, error)
	Scan(ctx context.Context, cursor string, limit int) ([]Transaction, string, error)
	Clear(ctx context.Context) (int64, error)
}
