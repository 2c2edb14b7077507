package app

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TickFunc is invoked on every timer fire. Returning false stops and removes
// that timer (self-cancellation); returning true keeps it running.
type TickFunc func(subscriberID int64) bool

type retryTimer struct {
	ticker *time.Ticker
	stop   chan struct{}
}

// RetryTimerManager owns at most one repeating reminder timer per subscriber.
// Arming a subscriber who already has a live timer cancels the old one first,
// and a tick from a cancelled timer can never remove a newer timer armed for
// the same subscriber.
type RetryTimerManager struct {
	mu     sync.Mutex
	timers map[int64]*retryTimer
	logger *logrus.Entry
}

func NewRetryTimerManager(logger *logrus.Entry) *RetryTimerManager {
	return &RetryTimerManager{
		timers: make(map[int64]*retryTimer),
		logger: logger,
	}
}

// Arm starts a repeating timer for the subscriber. The first fire happens
// after one full interval, not immediately.
func (m *RetryTimerManager) Arm(subscriberID int64, interval time.Duration, onTick TickFunc) {
	m.mu.Lock()
	if prev, ok := m.timers[subscriberID]; ok {
		prev.ticker.Stop()
		close(prev.stop)
		delete(m.timers, subscriberID)
		m.logger.WithField("subscriber_id", subscriberID).Warn("Re-arming subscriber with a live timer, previous timer cancelled")
	}
	t := &retryTimer{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
	}
	m.timers[subscriberID] = t
	m.mu.Unlock()

	go m.run(subscriberID, t, onTick)
}

func (m *RetryTimerManager) run(subscriberID int64, t *retryTimer, onTick TickFunc) {
	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C:
			select {
			case <-t.stop: // disarmed while the tick was queued
				return
			default:
			}
			if !onTick(subscriberID) {
				m.release(subscriberID, t)
				return
			}
		}
	}
}

// release removes t only while it is still the live timer for the subscriber,
// so a self-cancelling tick left over from a previous cycle cannot disarm a
// replacement timer.
func (m *RetryTimerManager) release(subscriberID int64, t *retryTimer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t.ticker.Stop()
	if cur, ok := m.timers[subscriberID]; ok && cur == t {
		delete(m.timers, subscriberID)
	}
}

// Disarm cancels the subscriber's timer if one exists; no-op otherwise.
func (m *RetryTimerManager) Disarm(subscriberID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timers[subscriberID]
	if !ok {
		return
	}
	t.ticker.Stop()
	close(t.stop)
	delete(m.timers, subscriberID)
}

// DisarmAll cancels every live timer. Called at the start of a new cycle so
// no previous day's timer survives into the new one.
func (m *RetryTimerManager) DisarmAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, t := range m.timers {
		t.ticker.Stop()
		close(t.stop)
		delete(m.timers, id)
	}
}

// Armed reports whether the subscriber currently has a live timer.
func (m *RetryTimerManager) Armed(subscriberID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.timers[subscriberID]
	return ok
}

// ArmedCount returns the number of live timers.
func (m *RetryTimerManager) ArmedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
