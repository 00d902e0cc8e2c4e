package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/fishery_booking/internal/model"
	"go.uber.org/zap"
)

// Release освобождает колышек только если он сейчас забронирован.
// В отличие от Toggle никогда не создаёт бронь: свободный или не заведённый слот даёт ErrNotBooked.
func (s *CalendarService) Release(ctx context.Context, date, peg string) (*ToggleResult, error) {
	date = strings.TrimSpace(date)
	if date == "" || strings.TrimSpace(peg) == "" {
		return nil, fmt.Errorf("%w: date and peg are required", ErrValidation)
	}
	if _, err := model.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	for attempt := 1; attempt <= toggleAttempts; attempt++ {
		existing, err := s.store.FindByKey(ctx, date, peg)
		if err != nil {
			return nil, fmt.Errorf("find slot: %w", err)
		}
		if len(existing) == 0 || existing[0].Status != model.SlotStatusBooked {
			return nil, fmt.Errorf("release slot %s/%s: %w", date, peg, ErrNotBooked)
		}

		current := existing[0]
		updated, err := s.store.UpdateStatus(ctx, current.ID, model.SlotStatusBooked, model.SlotStatusAvailable)
		if err != nil {
			s.logger.Error("Failed to release booking",
				zap.Int64("slot_id", current.ID),
				zap.String("date", date),
				zap.String("peg", peg),
				zap.Error(err),
			)
			return nil, fmt.Errorf("update slot: %w", err)
		}
		if updated {
			s.logger.Info("Booking released",
				zap.Int64("slot_id", current.ID),
				zap.String("date", date),
				zap.String("peg", peg),
			)
			current.Status = model.SlotStatusAvailable
			return &ToggleResult{Slot: current, Previous: model.SlotStatusBooked}, nil
		}

		s.logger.Warn("Slot changed concurrently during release",
			zap.String("date", date),
			zap.String("peg", peg),
			zap.Int("attempt", attempt),
		)
	}

	return nil, fmt.Errorf("release slot %s/%s: %w", date, peg, ErrConflict)
}
