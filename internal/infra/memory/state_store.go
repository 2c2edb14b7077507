package memory

import (
	"context"
	"sync"
	"time"

	"pill_reminder_bot/internal/domain/campaign"
)

// StateStore is a mutex-guarded in-memory implementation of campaign.Store.
// The single mutex serializes every mutation, which is what makes the
// check-and-increment in IncrementIfEligible a single atomic step.
type StateStore struct {
	mu      sync.Mutex
	records map[int64]*campaign.DailyRecord
}

func NewStateStore() *StateStore {
	return &StateStore{records: make(map[int64]*campaign.DailyRecord)}
}

func (s *StateStore) ResetAll(_ context.Context, cycleDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		rec.Acknowledged = false
		rec.RemindersSent = 0
		rec.CycleDate = cycleDate
	}
	return nil
}

func (s *StateStore) EnsureRecord(_ context.Context, subscriberID int64, cycleDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[subscriberID]
	if ok && rec.CycleDate.Equal(cycleDate) {
		return nil
	}
	s.records[subscriberID] = &campaign.DailyRecord{
		SubscriberID: subscriberID,
		CycleDate:    cycleDate,
	}
	return nil
}

func (s *StateStore) IncrementIfEligible(_ context.Context, subscriberID int64, cap int) (campaign.TickOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[subscriberID]
	if !ok {
		return "", campaign.ErrRecordNotFound
	}
	if rec.Acknowledged {
		return campaign.TickSuppressedAck, nil
	}
	if rec.RemindersSent >= cap {
		return campaign.TickSuppressedCap, nil
	}
	rec.RemindersSent++
	return campaign.TickEligible, nil
}

func (s *StateStore) MarkAcknowledged(_ context.Context, subscriberID int64, cycleDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[subscriberID]
	if !ok || !rec.CycleDate.Equal(cycleDate) {
		// Unknown subscriber or a record left over from a previous day:
		// start a fresh record for cycleDate, already acknowledged.
		s.records[subscriberID] = &campaign.DailyRecord{
			SubscriberID: subscriberID,
			Acknowledged: true,
			CycleDate:    cycleDate,
		}
		return nil
	}
	rec.Acknowledged = true
	return nil
}

func (s *StateStore) Get(_ context.Context, subscriberID int64) (*campaign.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[subscriberID]
	if !ok {
		return nil, campaign.ErrRecordNotFound
	}
	c := *rec
	return &c, nil
}
