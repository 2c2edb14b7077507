package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pill_reminder_bot/internal/domain/campaign"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGetUnknownSubscriber(t *testing.T) {
	store := NewStateStore()
	_, err := store.Get(context.Background(), 1)
	assert.Equal(t, campaign.ErrRecordNotFound, err)
}

func TestIncrementCapBoundary(t *testing.T) {
	store := NewStateStore()
	ctx := context.Background()
	day := date(2026, 3, 14)
	require.NoError(t, store.EnsureRecord(ctx, 1, day))

	const cap = 3
	for i := 0; i < cap; i++ {
		outcome, err := store.IncrementIfEligible(ctx, 1, cap)
		require.NoError(t, err)
		assert.Equal(t, campaign.TickEligible, outcome)
	}

	outcome, err := store.IncrementIfEligible(ctx, 1, cap)
	require.NoError(t, err)
	assert.Equal(t, campaign.TickSuppressedCap, outcome)

	rec, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, cap, rec.RemindersSent, "suppressed attempt must not increment")
}

func TestIncrementSuppressedAfterAcknowledgment(t *testing.T) {
	store := NewStateStore()
	ctx := context.Background()
	day := date(2026, 3, 14)
	require.NoError(t, store.EnsureRecord(ctx, 1, day))
	require.NoError(t, store.MarkAcknowledged(ctx, 1, day))

	outcome, err := store.IncrementIfEligible(ctx, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, campaign.TickSuppressedAck, outcome)

	rec, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.RemindersSent)
}

func TestIncrementMissingRecord(t *testing.T) {
	store := NewStateStore()
	_, err := store.IncrementIfEligible(context.Background(), 1, 12)
	assert.Equal(t, campaign.ErrRecordNotFound, err)
}

func TestResetAllRestampsEveryRecord(t *testing.T) {
	store := NewStateStore()
	ctx := context.Background()
	day1 := date(2026, 3, 14)
	day2 := date(2026, 3, 15)

	require.NoError(t, store.EnsureRecord(ctx, 1, day1))
	require.NoError(t, store.EnsureRecord(ctx, 2, day1))
	_, err := store.IncrementIfEligible(ctx, 1, 12)
	require.NoError(t, err)
	require.NoError(t, store.MarkAcknowledged(ctx, 2, day1))

	require.NoError(t, store.ResetAll(ctx, day2))

	for _, id := range []int64{1, 2} {
		rec, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, rec.Acknowledged)
		assert.Equal(t, 0, rec.RemindersSent)
		assert.True(t, rec.CycleDate.Equal(day2))
	}
}

func TestEnsureRecordRestampsStaleDateOnly(t *testing.T) {
	store := NewStateStore()
	ctx := context.Background()
	day1 := date(2026, 3, 14)
	day2 := date(2026, 3, 15)

	require.NoError(t, store.EnsureRecord(ctx, 1, day1))
	_, err := store.IncrementIfEligible(ctx, 1, 12)
	require.NoError(t, err)

	// Same date: untouched.
	require.NoError(t, store.EnsureRecord(ctx, 1, day1))
	rec, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.RemindersSent)

	// New date: fresh record.
	require.NoError(t, store.EnsureRecord(ctx, 1, day2))
	rec, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.RemindersSent)
	assert.True(t, rec.CycleDate.Equal(day2))
}

func TestMarkAcknowledgedCreatesMissingRecord(t *testing.T) {
	store := NewStateStore()
	ctx := context.Background()
	day := date(2026, 3, 14)

	require.NoError(t, store.MarkAcknowledged(ctx, 5, day))

	rec, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.True(t, rec.Acknowledged)
	assert.Equal(t, 0, rec.RemindersSent)
	assert.True(t, rec.CycleDate.Equal(day))
}

func TestMarkAcknowledgedRestampsStaleRecord(t *testing.T) {
	store := NewStateStore()
	ctx := context.Background()
	day1 := date(2026, 3, 14)
	day2 := date(2026, 3, 15)

	require.NoError(t, store.EnsureRecord(ctx, 1, day1))
	_, err := store.IncrementIfEligible(ctx, 1, 12)
	require.NoError(t, err)

	require.NoError(t, store.MarkAcknowledged(ctx, 1, day2))

	rec, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, rec.Acknowledged)
	assert.Equal(t, 0, rec.RemindersSent, "yesterday's count must not leak into the new day")
	assert.True(t, rec.CycleDate.Equal(day2))
}

func TestConcurrentIncrementsNeverExceedCap(t *testing.T) {
	store := NewStateStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureRecord(ctx, 1, date(2026, 3, 14)))

	const cap = 5
	var eligible int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := store.IncrementIfEligible(ctx, 1, cap)
			if err == nil && outcome == campaign.TickEligible {
				atomic.AddInt64(&eligible, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, cap, eligible)
	rec, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, cap, rec.RemindersSent)
}

func TestIncrementsRacingAcknowledgment(t *testing.T) {
	ctx := context.Background()
	day := date(2026, 3, 14)
	const cap = 5

	for iter := 0; iter < 25; iter++ {
		store := NewStateStore()
		require.NoError(t, store.EnsureRecord(ctx, 1, day))

		start := make(chan struct{})
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, _ = store.IncrementIfEligible(ctx, 1, cap)
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_ = store.MarkAcknowledged(ctx, 1, day)
		}()
		close(start)
		wg.Wait()

		rec, err := store.Get(ctx, 1)
		require.NoError(t, err)
		assert.True(t, rec.Acknowledged)
		assert.LessOrEqual(t, rec.RemindersSent, cap)

		// Once the acknowledgment has completed, no later check may pass.
		outcome, err := store.IncrementIfEligible(ctx, 1, cap)
		require.NoError(t, err)
		assert.Equal(t, campaign.TickSuppressedAck, outcome)
	}
}
