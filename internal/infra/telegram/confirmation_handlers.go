// internal/infra/telegram/confirmation_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"pill_reminder_bot/internal/app" // For CampaignService interface

	"gopkg.in/telebot.v3"
)

func RegisterConfirmationHandlers(ctx context.Context, b *telebot.Bot, campaignService app.CampaignService) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		// Inline button callbacks arrive with a leading "\f" marker.
		data := strings.TrimPrefix(c.Callback().Data, "\f")

		if data != app.ConfirmCallback {
			c.Bot().OnError(fmt.Errorf("unhandled callback data: %s", data), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Невідома дія."})
		}

		if err := campaignService.OnConfirm(ctx, c.Sender().ID); err != nil {
			c.Bot().OnError(fmt.Errorf("error processing confirmation for subscriber %d: %w", c.Sender().ID, err), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Сталася помилка."})
		}
		return c.Respond(&telebot.CallbackResponse{Text: "Прийнято!"})
	})
}
