package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/UIUC-Hort-Club/PlantPass/internal/notify"
)

type recordingNotifier struct {
	events []notify.Event
	err    error
}

func (r *recordingNotifier) Notify(ctx context.Context, event notify.Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestEmitDispatchesToAllNotifiers(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{err: errors.New("boom")}
	now := time.Date(2026, 4, 18, 12, 0, 0, 0, time.UTC)
	bus := &notify.Bus{
		Notifiers: []notify.Notifier{first, second},
		Log:       zerolog.Nop(),
		Now:       func() time.Time { return now },
	}

	bus.Emit(context.Background(), notify.TopicTransactionCreated, "KXQ-PLM", map[string]any{"total": "16"})

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1, "a failing notifier does not stop the others")

	event := first.events[0]
	require.Equal(t, notify.TopicTransactionCreated, event.Topic)
	require.Equal(t, "KXQ-PLM", event.PurchaseID)
	require.Equal(t, now, event.OccurredAt)
	require.NotEqual(t, event.ID.String(), "00000000-0000-0000-0000-000000000000")

	var payload map[string]string
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	require.Equal(t, "16", payload["total"])
}

func TestEmitNilBusIsNoop(t *testing.T) {
	var bus *notify.Bus
	bus.Emit(context.Background(), notify.TopicTransactionDeleted, "KXQ-PLM", nil)
}

func TestEmitUnmarshalablePayload(t *testing.T) {
	sink := &recordingNotifier{}
	bus := &notify.Bus{Notifiers: []notify.Notifier{sink}, Log: zerolog.Nop()}

	bus.Emit(context.Background(), notify.TopicTransactionUpdated, "KXQ-PLM", func() {})

	require.Len(t, sink.events, 1, "event still goes out with an empty payload")
	require.JSONEq(t, "{}", string(sink.events[0].Payload))
}

func TestWebhookDelivers(t *testing.T) {
	var (
		gotTopic string
		gotBody  notify.Event
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTopic = r.Header.Get("X-PlantPass-Topic")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	hook := notify.Webhook{URL: server.URL}
	event := notify.Event{Topic: notify.TopicTransactionCreated, PurchaseID: "KXQ-PLM", Payload: json.RawMessage(`{}`)}
	require.NoError(t, hook.Notify(context.Background(), event))
	require.Equal(t, notify.TopicTransactionCreated, gotTopic)
	require.Equal(t, "KXQ-PLM", gotBody.PurchaseID)
}

func TestWebhookRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	hook := notify.Webhook{URL: server.URL}
	err := hook.Notify(context.Background(), notify.Event{Topic: notify.TopicTransactionCreated, Payload: json.RawMessage(`{}`)})
	require.Error(t, err)
}

func TestWebhookWithoutURLIsNoop(t *testing.T) {
	hook := notify.Webhook{}
	require.NoError(t, hook.Notify(context.Background(), notify.Event{Topic: notify.TopicTransactionCreated}))
}
