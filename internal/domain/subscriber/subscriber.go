package subscriber

import (
	"time"
)

// Subscriber represents a person who opted in to the daily pill reminder.
// The Telegram chat ID doubles as the stable subscriber identifier.
type Subscriber struct {
	TelegramID int64
	FirstName  string
	CreatedAt  time.Time
}
