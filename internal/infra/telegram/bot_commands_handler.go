// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"

	"pill_reminder_bot/internal/app" // For CampaignService interface
	"pill_reminder_bot/internal/domain/subscriber"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	campaignService app.CampaignService,
	baseLogger *logrus.Entry,
) {
	commandsLogger := baseLogger.WithField("handler_group", "commands")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := commandsLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		sub := &subscriber.Subscriber{
			TelegramID: senderID,
			FirstName:  c.Sender().FirstName,
		}
		if err := campaignService.Subscribe(ctx, sub); err != nil {
			logCtx.WithError(err).Error("Failed to subscribe user")
			return c.Send("Щось пішло не так, спробуй ще раз пізніше.")
		}
		return c.Send("Гаразд, я буду щодня об 11:00 нагадувати про таблетку 😊")
	})

	b.Handle("/help", func(c telebot.Context) error {
		logCtx := commandsLogger.WithField("command", "/help").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /help command")

		return c.Send("Я щодня питаю, чи випила ти таблетку, і нагадую, поки не натиснеш «Так».\n\n" +
			"/start - підписатися на нагадування\n" +
			"/help - показати це повідомлення")
	})
}
