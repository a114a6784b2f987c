package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventMonthPlanGenerated = "month_plan.generated"
	EventItemCreated        = "item.created"
	EventItemUpdated        = "item.updated"
	EventItemDeleted        = "item.deleted"
	EventSalarySaved        = "salary.saved"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe подписывает пользователя на события и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	userSubs, ok := h.subscribers[userID]
	if !ok {
		userSubs = make(map[chan Event]struct{})
		h.subscribers[userID] = userSubs
	}
	userSubs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, exists := h.subscribers[userID]; exists {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, userID)
			}
		}
		close(ch)
	}
}

// Publish отправляет событие всем подписчикам пользователя.
// Медленный подписчик событие теряет, но не блокирует остальных.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[userID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishMonthPlanGenerated уведомляет о материализации плана месяца.
func (h *Hub) PublishMonthPlanGenerated(userID uuid.UUID, monthKey string, planID uuid.UUID) {
	h.Publish(userID, Event{
		Type: EventMonthPlanGenerated,
		Data: map[string]string{
			"month_key": monthKey,
			"plan_id":   planID.String(),
		},
	})
}

// PublishItemChanged уведомляет об изменении строки плана.
func (h *Hub) PublishItemChanged(userID uuid.UUID, eventType string, itemID uuid.UUID) {
	h.Publish(userID, Event{
		Type: eventType,
		Data: map[string]string{
			"item_id": itemID.String(),
		},
	})
}

// PublishSalarySaved уведомляет о сохранении дохода за месяц.
func (h *Hub) PublishSalarySaved(userID uuid.UUID, monthKey string) {
	h.Publish(userID, Event{
		Type: EventSalarySaved,
		Data: map[string]string{
			"month_key": monthKey,
		},
	})
}
