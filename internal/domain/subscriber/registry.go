package subscriber

import (
	"context"
)

// Registry defines the operations for persisting and retrieving Subscribers.
// There is no removal: once opted in, a subscriber stays in the campaign.
type Registry interface {
	// Add inserts a subscriber. Adding an already known Telegram ID is a no-op.
	Add(ctx context.Context, sub *Subscriber) error
	// ListAll returns a snapshot of every subscriber, safe to iterate while
	// the registry is mutated concurrently.
	ListAll(ctx context.Context) ([]*Subscriber, error)
}
