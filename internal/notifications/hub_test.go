package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	hub.PublishMonthPlanGenerated(userID, "2025-03", uuid.New())

	select {
	case event := <-ch:
		if event.Type != EventMonthPlanGenerated {
			t.Fatalf("expected event type %s, got %s", EventMonthPlanGenerated, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
		data, ok := event.Data.(map[string]string)
		if !ok || data["month_key"] != "2025-03" {
			t.Fatalf("unexpected event data: %+v", event.Data)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubIsolatesUsers проверяет, что событие не попадает чужому подписчику.
func TestHubIsolatesUsers(t *testing.T) {
	hub := NewHub()
	owner := uuid.New()
	stranger := uuid.New()

	ch, unsubscribe := hub.Subscribe(stranger)
	defer unsubscribe()

	hub.PublishItemChanged(owner, EventItemUpdated, uuid.New())

	select {
	case event := <-ch:
		t.Fatalf("stranger received event: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}
