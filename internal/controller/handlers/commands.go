package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/fishery_booking/internal/controller/state"
	"github.com/Freeeeeet/fishery_booking/internal/model"
	"github.com/Freeeeeet/fishery_booking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команды /start и /help
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.respond(ctx, b, update, func(context.Context, int64, string) string {
		return textHelp
	})
}

// HandleCalendar обрабатывает /calendar [дата]
func (h *Handlers) HandleCalendar(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.respond(ctx, b, update, h.calendarReply)
}

// HandleBook обрабатывает /book ДАТА КОЛЫШЕК
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.respond(ctx, b, update, h.bookReply)
}

// HandleConfirm обрабатывает /confirm
func (h *Handlers) HandleConfirm(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.respond(ctx, b, update, h.confirmReply)
}

// HandleCancel обрабатывает /cancel
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.respond(ctx, b, update, h.cancelReply)
}

func (h *Handlers) calendarReply(ctx context.Context, _ int64, text string) string {
	args := commandArgs(text)
	date := h.calendar.Today(h.now())
	if args != "" {
		date = args
	}

	statuses, err := h.calendar.DayStatus(ctx, date, h.pegs)
	if errors.Is(err, service.ErrValidation) {
		return "❌ Date must look like YYYY-MM-DD"
	}
	if err != nil {
		h.logger.Error("Failed to load day status", zap.String("date", date), zap.Error(err))
		return textError
	}

	return FormatDay(date, statuses)
}

func (h *Handlers) bookReply(ctx context.Context, userID int64, text string) string {
	date, peg, ok := parseBookArgs(commandArgs(text))
	if !ok {
		return textBookUsage
	}

	statuses, err := h.calendar.DayStatus(ctx, date, []string{peg})
	if errors.Is(err, service.ErrValidation) {
		return textBookUsage
	}
	if err != nil {
		h.logger.Error("Failed to check peg", zap.String("date", date), zap.String("peg", peg), zap.Error(err))
		return textError
	}

	// Снятие брони требует подтверждения, чтобы повторная команда случайно не освободила колышек
	if slot := statuses[0].Slot; slot != nil && slot.Status == model.SlotStatusBooked {
		h.stateManager.Start(userID, state.StateConfirmRelease, map[string]string{
			state.KeyDate: date,
			state.KeyPeg:  peg,
		})
		return fmt.Sprintf("⚠️ %s is booked on %s.\nSend /confirm to release it or /cancel to keep the booking.", peg, date)
	}

	return h.toggle(ctx, date, peg)
}

func (h *Handlers) confirmReply(ctx context.Context, userID int64, _ string) string {
	if h.stateManager.GetState(userID) != state.StateConfirmRelease {
		return "Nothing to confirm."
	}

	date, _ := h.stateManager.GetData(userID, state.KeyDate)
	peg, _ := h.stateManager.GetData(userID, state.KeyPeg)
	h.stateManager.ClearState(userID)

	// Пока ждали подтверждения, бронь могли снять через API: тогда ничего не трогаем
	result, err := h.calendar.Release(ctx, date, peg)
	switch {
	case errors.Is(err, service.ErrNotBooked):
		return fmt.Sprintf("%s %s, %s: already available, nothing to release", StatusEmoji(model.SlotStatusAvailable), peg, date)
	case errors.Is(err, service.ErrConflict):
		return "⚠️ The peg was changed at the same time, check /calendar " + date
	case err != nil:
		h.logger.Error("Failed to release slot", zap.String("date", date), zap.String("peg", peg), zap.Error(err))
		return textError
	}

	return fmt.Sprintf("%s %s, %s: %s", StatusEmoji(result.Slot.Status), peg, date, result.Message())
}

func (h *Handlers) cancelReply(_ context.Context, userID int64, _ string) string {
	if h.stateManager.GetState(userID) == state.StateNone {
		return "Nothing to cancel."
	}

	h.stateManager.ClearState(userID)
	return "👌 Cancelled."
}

func (h *Handlers) toggle(ctx context.Context, date, peg string) string {
	result, err := h.calendar.Toggle(ctx, date, peg)
	switch {
	case errors.Is(err, service.ErrValidation):
		return textBookUsage
	case errors.Is(err, service.ErrConflict):
		return "⚠️ The peg was changed at the same time, check /calendar " + date
	case err != nil:
		h.logger.Error("Failed to toggle slot", zap.String("date", date), zap.String("peg", peg), zap.Error(err))
		return textError
	}

	return fmt.Sprintf("%s %s, %s: %s", StatusEmoji(result.Slot.Status), peg, date, result.Message())
}

// CommandMatch совпадает с сообщением, первое слово которого ровно command
// (или command@имя_бота), так что "/bookings" не попадает в "/book"
func CommandMatch(command string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		return commandName(update.Message.Text) == command
	}
}

func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return name
}

// commandArgs отрезает саму команду ("/book@bot 2024-01-01 Peg 1" -> "2024-01-01 Peg 1")
func commandArgs(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, " \t\n"); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return ""
}

// parseBookArgs разбирает "ДАТА КОЛЫШЕК"; имя колышка может содержать пробелы
func parseBookArgs(args string) (date, peg string, ok bool) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], strings.Join(parts[1:], " "), true
}
