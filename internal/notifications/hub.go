// Package notifications рассылает события изменений бюджета
// подписчикам SSE-потока. Доставка негарантированная: медленный
// подписчик теряет события, публикация никогда не блокируется.
package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Типы событий, которые рассылает сервер.
const (
	EventBudgetUpdated = "budget_updated"
	EventSwapApplied   = "swap_applied"
)

// subscriberBuffer ограничивает очередь событий на подписчика.
const subscriberBuffer = 10

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type subscriber struct {
	userID uuid.UUID
	events chan Event
}

type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe регистрирует подписку пользователя. Возвращенная функция
// отписки закрывает канал; вызывать ее можно ровно один раз.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	sub := &subscriber{
		userID: userID,
		events: make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		close(sub.events)
	}

	return sub.events, unsubscribe
}

// Publish отправляет событие всем подпискам пользователя без блокировки.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if sub.userID != userID {
			continue
		}
		select {
		case sub.events <- event:
		default:
		}
	}
}
