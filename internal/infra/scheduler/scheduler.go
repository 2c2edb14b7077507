package scheduler

import (
	"context"
	"time"

	"pill_reminder_bot/internal/app" // For CampaignService interface

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CampaignScheduler drives the two calendar-level jobs of the campaign: the
// daily first prompt and the midnight reset. Both run in the configured
// timezone, so a trigger set for 11:00 fires at 11:00 local time year-round,
// including across daylight-saving transitions.
type CampaignScheduler struct {
	cronEngine            *cron.Cron
	campaignService       app.CampaignService
	logger                *logrus.Entry
	cronSpecDailyPrompt   string
	cronSpecMidnightReset string
}

func NewCampaignScheduler(
	campaignService app.CampaignService,
	logger *logrus.Entry,
	location *time.Location,
	cronSpecDailyPrompt string, // e.g., "0 11 * * *" (11:00 daily)
	cronSpecMidnightReset string, // e.g., "0 0 * * *" (midnight daily)
) *CampaignScheduler {
	return &CampaignScheduler{
		cronEngine:            cron.New(cron.WithLocation(location)),
		campaignService:       campaignService,
		logger:                logger,
		cronSpecDailyPrompt:   cronSpecDailyPrompt,
		cronSpecMidnightReset: cronSpecMidnightReset,
	}
}

func (s *CampaignScheduler) Start() {
	s.logger.Info("Starting campaign scheduler")

	_, err := s.cronEngine.AddFunc(s.cronSpecDailyPrompt, func() {
		s.logger.Info("Cron job triggered for daily prompt")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.campaignService.RunDailyCycle(ctx); err != nil {
			s.logger.WithError(err).Error("Daily campaign cycle failed")
		}
	})
	if err != nil {
		s.logger.Fatalf("FATAL: Could not add daily prompt cron job: %v", err)
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecMidnightReset, func() {
		s.logger.Info("Cron job triggered for midnight reset")
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := s.campaignService.ResetDay(ctx); err != nil {
			s.logger.WithError(err).Error("Midnight reset failed")
		}
	})
	if err != nil {
		s.logger.Fatalf("FATAL: Could not add midnight reset cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Campaign scheduler started with jobs")
}

func (s *CampaignScheduler) Stop() {
	s.logger.Info("Stopping campaign scheduler")
	ctx := s.cronEngine.Stop() // Stops scheduling new runs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Campaign scheduler gracefully stopped")
}
