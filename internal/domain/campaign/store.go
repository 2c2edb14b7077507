// internal/domain/campaign/store.go
package campaign

import (
	"context"
	"fmt"
	"time"
)

var ErrRecordNotFound = fmt.Errorf("daily record not found")

// Store holds one DailyRecord per subscriber. All mutations are atomic: no
// caller may observe a half-reset record, and a check-and-increment can never
// race another increment or acknowledgment into exceeding the cap.
type Store interface {
	// ResetAll stamps every known record with {acknowledged:false,
	// remindersSent:0, cycleDate}.
	ResetAll(ctx context.Context, cycleDate time.Time) error

	// EnsureRecord creates a fresh record for the subscriber if none exists,
	// or restamps a stale one whose cycle date predates cycleDate. A record
	// already on cycleDate is left untouched.
	EnsureRecord(ctx context.Context, subscriberID int64, cycleDate time.Time) error

	// IncrementIfEligible atomically checks acknowledgment and the cap, and
	// increments the reminder count only when a follow-up may be sent.
	// Returns ErrRecordNotFound if the subscriber has no record.
	IncrementIfEligible(ctx context.Context, subscriberID int64, cap int) (TickOutcome, error)

	// MarkAcknowledged sets the acknowledged flag for cycleDate, creating the
	// record if the subscriber is unknown (late-arriving confirmation).
	MarkAcknowledged(ctx context.Context, subscriberID int64, cycleDate time.Time) error

	// Get returns a copy of the subscriber's record, or ErrRecordNotFound.
	Get(ctx context.Context, subscriberID int64) (*DailyRecord, error)
}
