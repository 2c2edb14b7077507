package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pill_reminder_bot/internal/app"
	"pill_reminder_bot/internal/domain/campaign"
	"pill_reminder_bot/internal/domain/subscriber"
	"pill_reminder_bot/internal/infra/config"
	idb "pill_reminder_bot/internal/infra/database"
	"pill_reminder_bot/internal/infra/logger"
	"pill_reminder_bot/internal/infra/memory"
	"pill_reminder_bot/internal/infra/scheduler"
	"pill_reminder_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Environment)
	log := logger.Get().WithField("component", "main")
	log.WithField("timezone", cfg.Timezone).
		WithField("max_reminders", cfg.MaxReminders).
		WithField("retry_interval", cfg.RetryInterval.String()).
		Info("Configuration loaded")

	// Storage: Postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		registry subscriber.Registry
		store    campaign.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to database: %v", err)
		}
		defer db.Close()
		if err := idb.EnsureSchema(db); err != nil {
			log.Fatalf("FATAL: Could not ensure database schema: %v", err)
		}
		registry = idb.NewPostgresSubscriberRegistry(db)
		store = idb.NewPostgresStateStore(db)
		log.Info("Postgres storage initialized")
	} else {
		registry = memory.NewSubscriberRegistry()
		store = memory.NewStateStore()
		log.Info("In-memory storage initialized (state is lost on restart)")
	}

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Get().WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}

	timers := app.NewRetryTimerManager(logger.Get().WithField("component", "timers"))
	campaignService := app.NewCampaignServiceImpl(
		registry,
		store,
		timers,
		telegram.NewTelebotAdapter(bot),
		logger.Get().WithField("component", "campaign"),
		app.CampaignConfig{
			RetryInterval:     cfg.RetryInterval,
			MaxReminders:      cfg.MaxReminders,
			Location:          cfg.Location,
			QuietAfterMinutes: cfg.QuietAfterMinutes,
			PromptOnLateJoin:  cfg.PromptOnLateJoin,
			FirstPromptCounts: cfg.FirstPromptCounts,
		},
	)
	adminService := app.NewAdminService(registry, store, cfg.AdminTelegramID)

	campaignScheduler := scheduler.NewCampaignScheduler(
		campaignService,
		logger.Get().WithField("component", "scheduler"),
		cfg.Location,
		cfg.CronSpecDailyPrompt,
		cfg.CronSpecMidnightReset,
	)
	campaignScheduler.Start()

	// Register Handlers
	ctx := context.Background()
	telegram.RegisterBotCommands(ctx, bot, campaignService, logger.Get().WithField("component", "handlers"))
	telegram.RegisterConfirmationHandlers(ctx, bot, campaignService)
	telegram.RegisterAdminHandlers(ctx, bot, adminService, logger.Get().WithField("component", "handlers"))
	log.Info("Telegram handlers registered")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()
	log.Info("Application setup complete, bot and scheduler are running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application")
	campaignScheduler.Stop()
	timers.DisarmAll()
	bot.Stop()
	log.Info("Application shut down gracefully")
}
