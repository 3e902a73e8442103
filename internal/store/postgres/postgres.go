package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UIUC-Hort-Club/PlantPass/internal/txn"
)

// Store persists transactions as JSONB rows keyed by purchase id. The paid
// flag and timestamp are lifted into their own columns so the hot list and
// scan queries never have to unpack the document.
type Store struct {
	Pool *pgxpool.Pool
}

// New wraps a pgx pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    purchase_id TEXT PRIMARY KEY,
    ts          BIGINT NOT NULL,
    paid        BOOLEAN NOT NULL DEFAULT FALSE,
    record      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_ts_idx ON transactions (ts DESC);
`

// EnsureSchema creates the transactions table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure transactions schema: %w", err)
	}
	return nil
}

// Get returns the transaction stored under purchaseID.
func (s *Store) Get(ctx context.Context, purchaseID string) (txn.Transaction, error) {
	var raw []byte
	err := s.Pool.QueryRow(ctx,
		`SELECT record FROM transactions WHERE purchase_id = $1`, purchaseID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return txn.Transaction{}, txn.ErrNotFound
		}
		return txn.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return decode(raw)
}

// Put upserts the transaction record.
func (s *Store) Put(ctx context.Context, t txn.Transaction) error {
	record, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO transactions (purchase_id, ts, paid, record)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (purchase_id)
		DO UPDATE SET ts = EXCLUDED.ts, paid = EXCLUDED.paid, record = EXCLUDED.record`,
		t.PurchaseID, t.Timestamp, t.Payment.Paid, record,
	)
	if err != nil {
		return fmt.Errorf("put transaction: %w", err)
	}
	return nil
}

// Delete removes the record under purchaseID.
func (s *Store) Delete(ctx context.Context, purchaseID string) error {
	tag, err := s.Pool.Exec(ctx,
		`DELETE FROM transactions WHERE purchase_id = $1`, purchaseID,
	)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return txn.ErrNotFound
	}
	return nil
}

// Exists reports whether a record is stored under purchaseID.
func (s *Store) Exists(ctx context.Context, purchaseID string) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE purchase_id = $1)`, purchaseID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check transaction exists: %w", err)
	}
	return exists, nil
}

// Scan pages through all records in purchase id order using keyset
// pagination. The cursor is the last purchase id of the previous page.
func (s *Store) Scan(ctx context.Context, cursor string, limit int) ([]txn.Transaction, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT record FROM transactions
		WHERE purchase_id > $1
		ORDER BY purchase_id
		LIMIT $2`,
		cursor, limit,
	)
	if err != nil {
		return nil, "", fmt.Errorf("scan transactions: %w", err)
	}
	defer rows.Close()

	page := make([]txn.Transaction, 0, limit)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, "", fmt.Errorf("scan transaction row: %w", err)
		}
		t, err := decode(raw)
		if err != nil {
			return nil, "", err
		}
		page = append(page, t)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("scan transactions: %w", err)
	}

	next := ""
	if len(page) == limit {
		next = page[len(page)-1].PurchaseID
	}
	return page, next, nil
}

// Clear removes every record and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("clear transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func decode(raw []byte) (txn.Transaction, error) {
	var t txn.Transaction
	if err := json.Unmarshal(raw, &t); err != nil {
		return txn.Transaction{}, fmt.Errorf("decode transaction record: %w", err)
	}
	return t, nil
}
