package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PurgePast удаляет все слоты, дата которых строго раньше "сегодня" в зоне сервиса.
// Возвращает количество удалённых строк.
func (s *CalendarService) PurgePast(ctx context.Context, now time.Time) (int64, error) {
	today := s.Today(now)

	s.logger.Info("Attempting to clear past bookings", zap.String("today", today))

	past, err := s.store.ListBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list past slots: %w", err)
	}

	if len(past) == 0 {
		s.logger.Info("No past bookings to clear")
		return 0, nil
	}

	deleted, err := s.store.DeleteBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("delete past slots: %w", err)
	}

	s.logger.Info("Past bookings cleared",
		zap.Int("found", len(past)),
		zap.Int64("deleted", deleted),
	)

	return deleted, nil
}
