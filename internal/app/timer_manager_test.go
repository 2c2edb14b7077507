package app

import (
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestArmFiresRepeatedlyAfterInterval(t *testing.T) {
	m := NewRetryTimerManager(testLogger())
	defer m.DisarmAll()

	var ticks int64
	m.Arm(1, 10*time.Millisecond, func(int64) bool {
		atomic.AddInt64(&ticks, 1)
		return true
	})

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&ticks) >= 3
	}, time.Second, 5*time.Millisecond)
	assert.True(t, m.Armed(1))
}

func TestFirstFireWaitsOneInterval(t *testing.T) {
	m := NewRetryTimerManager(testLogger())
	defer m.DisarmAll()

	var ticks int64
	m.Arm(1, 200*time.Millisecond, func(int64) bool {
		atomic.AddInt64(&ticks, 1)
		return true
	})

	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 0, atomic.LoadInt64(&ticks), "timer must not fire before one full interval")
}

func TestDisarmStopsTicks(t *testing.T) {
	m := NewRetryTimerManager(testLogger())

	var ticks int64
	m.Arm(1, 10*time.Millisecond, func(int64) bool {
		atomic.AddInt64(&ticks, 1)
		return true
	})
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&ticks) >= 1
	}, time.Second, 5*time.Millisecond)

	m.Disarm(1)
	assert.False(t, m.Armed(1))

	seen := atomic.LoadInt64(&ticks)
	time.Sleep(50 * time.Millisecond)
	// One in-flight tick at the moment of disarming is tolerated, never more.
	assert.LessOrEqual(t, atomic.LoadInt64(&ticks), seen+1)
}

func TestDisarmUnknownSubscriberIsNoop(t *testing.T) {
	m := NewRetryTimerManager(testLogger())
	m.Disarm(42)
	assert.Equal(t, 0, m.ArmedCount())
}

func TestSelfCancelOnFalseReturn(t *testing.T) {
	m := NewRetryTimerManager(testLogger())
	defer m.DisarmAll()

	var ticks int64
	m.Arm(1, 10*time.Millisecond, func(int64) bool {
		return atomic.AddInt64(&ticks, 1) < 2
	})

	require.Eventually(t, func() bool {
		return !m.Armed(1)
	}, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 2, atomic.LoadInt64(&ticks))

	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 2, atomic.LoadInt64(&ticks), "no ticks after self-cancellation")
}

func TestArmReplacesExistingTimer(t *testing.T) {
	m := NewRetryTimerManager(testLogger())
	defer m.DisarmAll()

	var old, fresh int64
	m.Arm(1, 10*time.Millisecond, func(int64) bool {
		atomic.AddInt64(&old, 1)
		return true
	})
	m.Arm(1, 10*time.Millisecond, func(int64) bool {
		atomic.AddInt64(&fresh, 1)
		return true
	})

	assert.Equal(t, 1, m.ArmedCount(), "re-arming must never yield two live timers")
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fresh) >= 3
	}, time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt64(&old), int64(1), "old timer must stop after re-arm")
}

func TestStaleTickCannotCancelReplacementTimer(t *testing.T) {
	m := NewRetryTimerManager(testLogger())
	defer m.DisarmAll()

	entered := make(chan struct{})
	proceed := make(chan struct{})
	m.Arm(1, 10*time.Millisecond, func(int64) bool {
		close(entered)
		<-proceed
		return false // self-cancel, but by now a new timer owns the slot
	})

	<-entered
	var fresh int64
	m.Arm(1, 10*time.Millisecond, func(int64) bool {
		atomic.AddInt64(&fresh, 1)
		return true
	})
	close(proceed)

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fresh) >= 2
	}, time.Second, 5*time.Millisecond)
	assert.True(t, m.Armed(1), "replacement timer must survive the stale tick's self-cancel")
}

func TestDisarmAllClearsEveryTimer(t *testing.T) {
	m := NewRetryTimerManager(testLogger())

	for id := int64(1); id <= 3; id++ {
		m.Arm(id, time.Hour, func(int64) bool { return true })
	}
	require.Equal(t, 3, m.ArmedCount())

	m.DisarmAll()
	assert.Equal(t, 0, m.ArmedCount())
}
