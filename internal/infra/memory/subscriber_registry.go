package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pill_reminder_bot/internal/domain/subscriber"
)

// SubscriberRegistry is a mutex-guarded in-memory implementation of
// subscriber.Registry, used when no DATABASE_URL is configured.
type SubscriberRegistry struct {
	mu   sync.Mutex
	subs map[int64]*subscriber.Subscriber
}

func NewSubscriberRegistry() *SubscriberRegistry {
	return &SubscriberRegistry{subs: make(map[int64]*subscriber.Subscriber)}
}

func (r *SubscriberRegistry) Add(_ context.Context, sub *subscriber.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[sub.TelegramID]; ok {
		return nil // already opted in
	}
	stored := *sub
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.subs[sub.TelegramID] = &stored
	return nil
}

// ListAll returns copies sorted by Telegram ID, detached from the registry's
// own storage so callers can iterate while Add runs concurrently.
func (r *SubscriberRegistry) ListAll(_ context.Context) ([]*subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := make([]*subscriber.Subscriber, 0, len(r.subs))
	for _, s := range r.subs {
		c := *s
		subs = append(subs, &c)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].TelegramID < subs[j].TelegramID })
	return subs, nil
}
