// internal/infra/telegram/admin_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"pill_reminder_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterAdminHandlers(
	ctx context.Context,
	b *telebot.Bot,
	adminService *app.AdminService,
	baseLogger *logrus.Entry,
) {
	adminLogger := baseLogger.WithField("handler_group", "admin")

	b.Handle("/status", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := adminLogger.WithField("command", "/status").WithField("sender_id", senderID)
		logCtx.Info("Processing /status command")

		statuses, err := adminService.CampaignStatus(ctx, senderID)
		if err != nil {
			if err == app.ErrAdminNotAuthorized {
				logCtx.Warn("Unauthorized /status attempt")
				return nil // stay silent for non-admins
			}
			logCtx.WithError(err).Error("Failed to build campaign status")
			return c.Send("Не вдалося отримати статус кампанії.")
		}

		if len(statuses) == 0 {
			return c.Send("Підписників поки немає.")
		}

		var report strings.Builder
		report.WriteString("Статус на сьогодні:\n\n")
		for _, st := range statuses {
			name := st.FirstName
			if name == "" {
				name = fmt.Sprintf("id %d", st.TelegramID)
			}
			switch {
			case !st.Tracked:
				report.WriteString(fmt.Sprintf("%s — ще не в циклі\n", name))
			case st.Acknowledged:
				report.WriteString(fmt.Sprintf("%s — підтверджено (нагадувань: %d)\n", name, st.RemindersSent))
			default:
				report.WriteString(fmt.Sprintf("%s — очікуємо (нагадувань: %d)\n", name, st.RemindersSent))
			}
		}
		return c.Send(report.String())
	})
}
