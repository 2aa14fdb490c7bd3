package services

import (
	"context"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// Transport is the slice of the chat API the bot consumes: send a message,
// edit one in place, delete one. Message ids are the transport's own.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup tgmodels.ReplyMarkup) (int, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup tgmodels.ReplyMarkup) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// BotTransport adapts *bot.Bot to Transport.
type BotTransport struct {
	bot *bot.Bot
}

func NewBotTransport(b *bot.Bot) *BotTransport {
	return &BotTransport{bot: b}
}

func (t *BotTransport) SendMessage(ctx context.Context, chatID int64, text string, markup tgmodels.ReplyMarkup) (int, error) {
	msg, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (t *BotTransport) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup tgmodels.ReplyMarkup) error {
	_, err := t.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	})
	return err
}

func (t *BotTransport) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := t.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	return err
}
