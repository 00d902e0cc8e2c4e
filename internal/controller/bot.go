package controller

import (
	"context"

	"github.com/Freeeeeet/fishery_booking/internal/controller/handlers"
	"github.com/Freeeeeet/fishery_booking/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// BotController командный интерфейс владельца в Telegram
type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	calendar handlers.Calendar,
	pegs []string,
	ownerID int64,
	logger *zap.Logger,
) *BotController {
	cmdHandlers := handlers.NewHandlers(
		calendar,
		pegs,
		ownerID,
		state.NewManager(),
		logger,
	)

	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandlerMatchFunc(handlers.CommandMatch("/calendar"), c.handlers.HandleCalendar)
	c.bot.RegisterHandlerMatchFunc(handlers.CommandMatch("/book"), c.handlers.HandleBook)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/confirm", bot.MatchTypeExact, c.handlers.HandleConfirm)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "calendar", Description: "📅 Peg status for a day"},
		{Command: "book", Description: "🎣 Book or release a peg"},
		{Command: "confirm", Description: "✅ Confirm releasing a peg"},
		{Command: "cancel", Description: "↩️ Cancel pending action"},
		{Command: "help", Description: "❓ Help"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
