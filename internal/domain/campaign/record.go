// internal/domain/campaign/record.go
package campaign

import "time"

// DailyRecord tracks one subscriber's progress through the current day's
// reminder cycle. Corresponds to the 'daily_records' table.
type DailyRecord struct {
	SubscriberID  int64
	Acknowledged  bool      // true once the subscriber pressed the confirmation button today
	RemindersSent int       // follow-ups sent since the day's first prompt
	CycleDate     time.Time // midnight of the cycle's date in the campaign timezone
}

// TickOutcome is the result of the atomic per-tick eligibility check.
type TickOutcome string

const (
	TickEligible      TickOutcome = "ELIGIBLE"
	TickSuppressedAck TickOutcome = "SUPPRESSED_ACKNOWLEDGED"
	TickSuppressedCap TickOutcome = "SUPPRESSED_CAP_REACHED"
)

// Suppressed reports whether the tick must not send a follow-up.
func (o TickOutcome) Suppressed() bool {
	return o != TickEligible
}
