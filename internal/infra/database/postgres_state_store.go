package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pill_reminder_bot/internal/domain/campaign"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStateStore implements campaign.Store on the daily_records table.
// Every check-and-mutate is a single conditional statement, so the cap and
// acknowledgment invariants hold across concurrent connections without
// explicit locking.
type PostgresStateStore struct {
	db *sql.DB
}

func NewPostgresStateStore(db *sql.DB) *PostgresStateStore {
	return &PostgresStateStore{db: db}
}

func (s *PostgresStateStore) ResetAll(ctx context.Context, cycleDate time.Time) error {
	// Seed a fresh record for every registered subscriber and restamp any
	// existing record in one statement.
	query := `INSERT INTO daily_records (subscriber_id, acknowledged, reminders_sent, cycle_date)
	           SELECT telegram_id, FALSE, 0, $1 FROM subscribers
	           ON CONFLICT (subscriber_id) DO UPDATE
	           SET acknowledged = FALSE, reminders_sent = 0, cycle_date = EXCLUDED.cycle_date`

	if _, err := s.db.ExecContext(ctx, query, cycleDate); err != nil {
		return fmt.Errorf("error resetting daily records: %w", err)
	}
	return nil
}

func (s *PostgresStateStore) EnsureRecord(ctx context.Context, subscriberID int64, cycleDate time.Time) error {
	query := `INSERT INTO daily_records (subscriber_id, acknowledged, reminders_sent, cycle_date)
	           VALUES ($1, FALSE, 0, $2)
	           ON CONFLICT (subscriber_id) DO UPDATE
	           SET acknowledged = FALSE, reminders_sent = 0, cycle_date = EXCLUDED.cycle_date
	           WHERE daily_records.cycle_date <> EXCLUDED.cycle_date`

	if _, err := s.db.ExecContext(ctx, query, subscriberID, cycleDate); err != nil {
		return fmt.Errorf("error ensuring daily record for subscriber %d: %w", subscriberID, err)
	}
	return nil
}

func (s *PostgresStateStore) IncrementIfEligible(ctx context.Context, subscriberID int64, cap int) (campaign.TickOutcome, error) {
	query := `UPDATE daily_records
	           SET reminders_sent = reminders_sent + 1
	           WHERE subscriber_id = $1 AND NOT acknowledged AND reminders_sent < $2`

	res, err := s.db.ExecContext(ctx, query, subscriberID, cap)
	if err != nil {
		return "", fmt.Errorf("error incrementing reminder count for subscriber %d: %w", subscriberID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("error reading affected rows for subscriber %d: %w", subscriberID, err)
	}
	if affected == 1 {
		return campaign.TickEligible, nil
	}

	// The guarded update matched nothing: classify why for the caller's log.
	rec, err := s.Get(ctx, subscriberID)
	if err != nil {
		return "", err
	}
	if rec.Acknowledged {
		return campaign.TickSuppressedAck, nil
	}
	return campaign.TickSuppressedCap, nil
}

func (s *PostgresStateStore) MarkAcknowledged(ctx context.Context, subscriberID int64, cycleDate time.Time) error {
	// Upsert: a late-arriving confirmation from a subscriber without a record
	// creates one, already acknowledged. A record left over from a previous
	// day is restamped with a zeroed reminder count.
	query := `INSERT INTO daily_records (subscriber_id, acknowledged, reminders_sent, cycle_date)
	           VALUES ($1, TRUE, 0, $2)
	           ON CONFLICT (subscriber_id) DO UPDATE
	           SET acknowledged = TRUE,
	               reminders_sent = CASE WHEN daily_records.cycle_date = EXCLUDED.cycle_date
	                                     THEN daily_records.reminders_sent ELSE 0 END,
	               cycle_date = EXCLUDED.cycle_date`

	if _, err := s.db.ExecContext(ctx, query, subscriberID, cycleDate); err != nil {
		return fmt.Errorf("error marking subscriber %d acknowledged: %w", subscriberID, err)
	}
	return nil
}

func (s *PostgresStateStore) Get(ctx context.Context, subscriberID int64) (*campaign.DailyRecord, error) {
	query := `SELECT subscriber_id, acknowledged, reminders_sent, cycle_date
	           FROM daily_records WHERE subscriber_id = $1`

	rec := &campaign.DailyRecord{}
	err := s.db.QueryRowContext(ctx, query, subscriberID).
		Scan(&rec.SubscriberID, &rec.Acknowledged, &rec.RemindersSent, &rec.CycleDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, campaign.ErrRecordNotFound
		}
		return nil, fmt.Errorf("error getting daily record for subscriber %d: %w", subscriberID, err)
	}
	return rec, nil
}
