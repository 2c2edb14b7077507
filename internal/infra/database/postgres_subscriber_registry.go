package database

import (
	"context"
	"database/sql"
	"fmt"

	"pill_reminder_bot/internal/domain/subscriber"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type PostgresSubscriberRegistry struct {
	db *sql.DB
}

func NewPostgresSubscriberRegistry(db *sql.DB) *PostgresSubscriberRegistry {
	return &PostgresSubscriberRegistry{db: db}
}

// Add inserts the subscriber. ON CONFLICT DO NOTHING makes the opt-in
// idempotent at the database level, so a repeated /start is harmless.
func (r *PostgresSubscriberRegistry) Add(ctx context.Context, sub *subscriber.Subscriber) error {
	query := `INSERT INTO subscribers (telegram_id, first_name)
	           VALUES ($1, $2)
	           ON CONFLICT (telegram_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, sub.TelegramID, sub.FirstName); err != nil {
		return fmt.Errorf("error adding subscriber: %w", err)
	}
	return nil
}

func (r *PostgresSubscriberRegistry) ListAll(ctx context.Context) ([]*subscriber.Subscriber, error) {
	query := `SELECT telegram_id, first_name, created_at
	           FROM subscribers ORDER BY telegram_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing subscribers: %w", err)
	}
	defer rows.Close()

	subs := make([]*subscriber.Subscriber, 0)
	for rows.Next() {
		s := &subscriber.Subscriber{}
		if err := rows.Scan(&s.TelegramID, &s.FirstName, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning subscriber: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscribers: %w", err)
	}
	return subs, nil
}
