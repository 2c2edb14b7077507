package app

import (
	"context"
	"fmt"

	"pill_reminder_bot/internal/domain/campaign"
	"pill_reminder_bot/internal/domain/subscriber"
)

var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")

// SubscriberStatus is one row of the admin overview.
type SubscriberStatus struct {
	TelegramID    int64
	FirstName     string
	Acknowledged  bool
	RemindersSent int
	Tracked       bool // false when the subscriber has no record yet
}

// AdminService exposes a read-only overview of the running campaign to the
// configured admin.
type AdminService struct {
	registry        subscriber.Registry
	store           campaign.Store
	adminTelegramID int64
}

func NewAdminService(registry subscriber.Registry, store campaign.Store, adminID int64) *AdminService {
	return &AdminService{
		registry:        registry,
		store:           store,
		adminTelegramID: adminID,
	}
}

// CampaignStatus returns today's record for every subscriber.
func (s *AdminService) CampaignStatus(ctx context.Context, performingID int64) ([]SubscriberStatus, error) {
	if s.adminTelegramID == 0 || performingID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	subs, err := s.registry.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}

	statuses := make([]SubscriberStatus, 0, len(subs))
	for _, sub := range subs {
		status := SubscriberStatus{
			TelegramID: sub.TelegramID,
			FirstName:  sub.FirstName,
		}
		rec, err := s.store.Get(ctx, sub.TelegramID)
		if err == nil {
			status.Acknowledged = rec.Acknowledged
			status.RemindersSent = rec.RemindersSent
			status.Tracked = true
		} else if err != campaign.ErrRecordNotFound {
			return nil, fmt.Errorf("failed to get record for subscriber %d: %w", sub.TelegramID, err)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
