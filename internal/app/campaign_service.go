// internal/app/campaign_service.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pill_reminder_bot/internal/domain/campaign"
	"pill_reminder_bot/internal/domain/subscriber"
	domainTelegram "pill_reminder_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	firstPromptText = "Ти випила таблетку?"
	reminderText    = "Ну шо? Випила таблетку?"
	confirmedText   = "Добре! На сьогодні більше нагадувань не буде 👍"

	// ConfirmCallback is the callback data carried by the "Так" button.
	ConfirmCallback = "confirm_yes"

	tickTimeout = 30 * time.Second
)

// CampaignService defines the operations of the daily reminder campaign.
type CampaignService interface {
	// RunDailyCycle starts a new day's cycle: disarms leftover timers, resets
	// all records, sends the first prompt and arms a retry timer per subscriber.
	RunDailyCycle(ctx context.Context) error
	// ResetDay clears state at midnight without sending anything.
	ResetDay(ctx context.Context) error
	// OnConfirm processes a subscriber's confirmation button press.
	OnConfirm(ctx context.Context, subscriberID int64) error
	// Subscribe opts a subscriber in, optionally prompting immediately when
	// the day's first prompt has already gone out.
	Subscribe(ctx context.Context, sub *subscriber.Subscriber) error
}

// CampaignConfig carries the tunables of the reminder campaign. Any interval
// and cap combination is valid, which keeps short-interval test setups from
// needing a separate code path.
type CampaignConfig struct {
	RetryInterval     time.Duration
	MaxReminders      int
	Location          *time.Location
	QuietAfterMinutes int // minutes since local midnight; negative disables quiet hours
	PromptOnLateJoin  bool
	FirstPromptCounts bool
}

// CampaignServiceImpl implements CampaignService.
type CampaignServiceImpl struct {
	registry subscriber.Registry
	store    campaign.Store
	timers   *RetryTimerManager
	client   domainTelegram.Client
	logger   *logrus.Entry
	cfg      CampaignConfig
	now      func() time.Time

	mu           sync.Mutex
	promptedDate time.Time // zero until the day's first prompts have gone out
}

func NewCampaignServiceImpl(
	registry subscriber.Registry,
	store campaign.Store,
	timers *RetryTimerManager,
	client domainTelegram.Client,
	logger *logrus.Entry,
	cfg CampaignConfig,
) *CampaignServiceImpl {
	return &CampaignServiceImpl{
		registry: registry,
		store:    store,
		timers:   timers,
		client:   client,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// today returns midnight of the current date in the campaign timezone.
func (s *CampaignServiceImpl) today() time.Time {
	now := s.now().In(s.cfg.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)
}

func (s *CampaignServiceImpl) RunDailyCycle(ctx context.Context) error {
	today := s.today()
	logCtx := s.logger.WithField("cycle_date", today.Format("2006-01-02"))
	logCtx.Info("Starting daily campaign cycle")

	// A timer from a cycle that never resolved must not leak into this one.
	s.timers.DisarmAll()

	if err := s.store.ResetAll(ctx, today); err != nil {
		return fmt.Errorf("failed to reset daily records: %w", err)
	}

	subs, err := s.registry.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscribers: %w", err)
	}
	if len(subs) == 0 {
		logCtx.Info("No subscribers registered, nothing to send")
		s.markPrompted(today)
		return nil
	}

	sent := 0
	for _, sub := range subs {
		subLog := logCtx.WithField("subscriber_id", sub.TelegramID)
		if err := s.store.EnsureRecord(ctx, sub.TelegramID, today); err != nil {
			subLog.WithError(err).Error("Failed to ensure daily record, skipping subscriber")
			continue
		}
		if err := s.sendQuestion(sub.TelegramID, firstPromptText); err != nil {
			// One unreachable subscriber must not abort the cycle. They simply
			// get no reminders today.
			subLog.WithError(err).Error("Failed to send first prompt, skipping arming")
			continue
		}
		if s.cfg.FirstPromptCounts {
			if _, err := s.store.IncrementIfEligible(ctx, sub.TelegramID, s.cfg.MaxReminders); err != nil {
				subLog.WithError(err).Error("Failed to charge first prompt against the cap")
			}
		}
		s.timers.Arm(sub.TelegramID, s.cfg.RetryInterval, s.handleTick)
		sent++
	}

	s.markPrompted(today)
	logCtx.WithField("prompted", sent).WithField("subscribers", len(subs)).Info("Daily campaign cycle started")
	return nil
}

func (s *CampaignServiceImpl) ResetDay(ctx context.Context) error {
	today := s.today()
	s.timers.DisarmAll()
	if err := s.store.ResetAll(ctx, today); err != nil {
		return fmt.Errorf("failed to reset daily records at midnight: %w", err)
	}
	s.mu.Lock()
	s.promptedDate = time.Time{}
	s.mu.Unlock()
	s.logger.WithField("cycle_date", today.Format("2006-01-02")).Info("Midnight reset complete")
	return nil
}

// handleTick runs on every fire of a subscriber's retry timer. Returning
// false disarms that timer.
func (s *CampaignServiceImpl) handleTick(subscriberID int64) bool {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	logCtx := s.logger.WithField("subscriber_id", subscriberID)

	now := s.now().In(s.cfg.Location)
	if s.cfg.QuietAfterMinutes >= 0 && now.Hour()*60+now.Minute() >= s.cfg.QuietAfterMinutes {
		logCtx.Info("Quiet hours reached, no more reminders today")
		return false
	}

	outcome, err := s.store.IncrementIfEligible(ctx, subscriberID, s.cfg.MaxReminders)
	if err != nil {
		if err == campaign.ErrRecordNotFound {
			logCtx.Warn("No daily record for armed subscriber, disarming")
			return false
		}
		logCtx.WithError(err).Error("Eligibility check failed, will retry on next tick")
		return true
	}
	if outcome.Suppressed() {
		logCtx.WithField("reason", string(outcome)).Info("Reminder suppressed, disarming timer")
		return false
	}

	if err := s.sendQuestion(subscriberID, reminderText); err != nil {
		// The count is already charged; the next tick will try again.
		logCtx.WithError(err).Error("Failed to send reminder")
	}
	return true
}

func (s *CampaignServiceImpl) OnConfirm(ctx context.Context, subscriberID int64) error {
	today := s.today()
	logCtx := s.logger.WithField("subscriber_id", subscriberID)

	rec, err := s.store.Get(ctx, subscriberID)
	if err == nil && rec.Acknowledged && rec.CycleDate.Equal(today) {
		// Double click on the button; nothing new to record.
		logCtx.Info("Confirmation already recorded for today")
		s.timers.Disarm(subscriberID)
		return nil
	}
	if err != nil && err != campaign.ErrRecordNotFound {
		return fmt.Errorf("failed to get daily record for subscriber %d: %w", subscriberID, err)
	}

	if err := s.store.MarkAcknowledged(ctx, subscriberID, today); err != nil {
		return fmt.Errorf("failed to mark subscriber %d acknowledged: %w", subscriberID, err)
	}
	s.timers.Disarm(subscriberID)
	logCtx.Info("Confirmation recorded, timer disarmed")

	if err := s.client.SendMessage(subscriberID, confirmedText, nil); err != nil {
		logCtx.WithError(err).Error("Failed to send confirmation reply")
	}
	return nil
}

func (s *CampaignServiceImpl) Subscribe(ctx context.Context, sub *subscriber.Subscriber) error {
	logCtx := s.logger.WithField("subscriber_id", sub.TelegramID)

	if err := s.registry.Add(ctx, sub); err != nil {
		return fmt.Errorf("failed to add subscriber %d: %w", sub.TelegramID, err)
	}
	logCtx.Info("Subscriber opted in")

	today := s.today()
	rec, err := s.store.Get(ctx, sub.TelegramID)
	if err == nil && rec.CycleDate.Equal(today) {
		return nil // already part of today's cycle
	}
	if err != nil && err != campaign.ErrRecordNotFound {
		return fmt.Errorf("failed to get daily record for subscriber %d: %w", sub.TelegramID, err)
	}

	if err := s.store.EnsureRecord(ctx, sub.TelegramID, today); err != nil {
		return fmt.Errorf("failed to create daily record for subscriber %d: %w", sub.TelegramID, err)
	}

	if !s.cfg.PromptOnLateJoin || !s.promptedOn(today) {
		return nil // first prompt comes with the next cycle
	}

	if err := s.sendQuestion(sub.TelegramID, firstPromptText); err != nil {
		logCtx.WithError(err).Error("Failed to send late-join prompt, subscriber gets no reminders today")
		return nil
	}
	if s.cfg.FirstPromptCounts {
		if _, err := s.store.IncrementIfEligible(ctx, sub.TelegramID, s.cfg.MaxReminders); err != nil {
			logCtx.WithError(err).Error("Failed to charge late-join prompt against the cap")
		}
	}
	s.timers.Arm(sub.TelegramID, s.cfg.RetryInterval, s.handleTick)
	logCtx.Info("Late-join prompt sent and timer armed")
	return nil
}

// sendQuestion delivers the question text with the inline "Так" button.
func (s *CampaignServiceImpl) sendQuestion(subscriberID int64, text string) error {
	replyMarkup := &telebot.ReplyMarkup{}
	btnYes := replyMarkup.Data("Так", ConfirmCallback)
	replyMarkup.Inline(replyMarkup.Row(btnYes))

	return s.client.SendMessage(subscriberID, text, &telebot.SendOptions{ReplyMarkup: replyMarkup})
}

func (s *CampaignServiceImpl) markPrompted(today time.Time) {
	s.mu.Lock()
	s.promptedDate = today
	s.mu.Unlock()
}

func (s *CampaignServiceImpl) promptedOn(today time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promptedDate.Equal(today)
}
