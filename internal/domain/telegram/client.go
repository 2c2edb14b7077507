package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for sending messages via a Telegram bot.
// It decouples the campaign logic from the concrete bot library, so the
// transport can be faked in tests.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
