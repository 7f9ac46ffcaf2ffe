package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends operator notifications. Messages use Telegram Markdown.
type Notifier interface {
	SendMessage(text string) error
}

type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient creates a Telegram-backed Notifier. With an empty bot token it
// returns a no-op notifier, so one-shot CLI runs work without a bot.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	if botToken == "" {
		return noopNotifier{}, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &client{bot: bot, chatID: chatID}, nil
}

func (c *client) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.bot.Send(msg)
	return err
}

type noopNotifier struct{}

func (noopNotifier) SendMessage(string) error { return nil }
