package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type replyFunc func(ctx context.Context, userID int64, text string) string

// respond проверяет владельца, строит ответ и отправляет его
func (h *Handlers) respond(ctx context.Context, b *bot.Bot, update *models.Update, reply replyFunc) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := h.replyTo(ctx, update.Message.From.ID, update.Message.Text, reply)
	h.sendMessage(ctx, b, chatID, text)
}

// replyTo пускает к командам только владельца
func (h *Handlers) replyTo(ctx context.Context, userID int64, text string, reply replyFunc) string {
	if h.ownerID == 0 || userID != h.ownerID {
		h.logger.Warn("Rejected command from non-owner",
			zap.Int64("telegram_id", userID),
			zap.String("text", text),
		)
		return textPrivate
	}

	return reply(ctx, userID, text)
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
