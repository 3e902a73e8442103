package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/UIUC-Hort-Club/PlantPass/internal/obs"
)

// Topic constants for events emitted after successful writes.
const (
	TopicTransactionCreated  = "transaction.created"
	TopicTransactionUpdated  = "transaction.updated"
	TopicTransactionDeleted  = "transaction.deleted"
	TopicTransactionsCleared = "transaction.cleared"
)

// Event describes a change to the transaction collection.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Topic      string          `json:"topic"`
	PurchaseID string          `json:"purchase_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Notifier reacts to an emitted event (webhook push, cache invalidation).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Bus fans events out to the configured notifiers. Delivery is strictly
// best-effort: a failing notifier is logged and never fails the write that
// triggered it. A nil bus is a valid no-op.
type Bus struct {
	Notifiers []Notifier
	Log       zerolog.Logger
	Now       func() time.Time
}

// Emit builds the event and dispatches it to all notifiers.
func (b *Bus) Emit(ctx context.Context, topic, purchaseID string, payload any) {
	if b == nil || len(b.Notifiers) == 0 {
		return
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		b.Log.Warn().Err(err).Str("topic", topic).Msg("encode event payload")
		encoded = []byte("{}")
	}
	event := Event{
		ID:         uuid.New(),
		Topic:      topic,
		PurchaseID: purchaseID,
		Payload:    encoded,
		OccurredAt: b.now(),
	}
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		name := fmt.Sprintf("%T", notifier)
		if err := notifier.Notify(ctx, event); err != nil {
			obs.CountNotifyDelivery(name, "error")
			b.Log.Warn().Err(err).Str("topic", topic).Str("purchase_id", purchaseID).Msg("notify event")
			continue
		}
		obs.CountNotifyDelivery(name, "ok")
	}
}

func (b *Bus) now() time.Time {
	if b != nil && b.Now != nil {
		return b.Now()
	}
	return time.Now().UTC()
}
