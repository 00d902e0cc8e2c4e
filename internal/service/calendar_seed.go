package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/fishery_booking/internal/model"
	"go.uber.org/zap"
)

// PairError ошибка хранилища для одной пары (date, peg)
type PairError struct {
	Date string
	Peg  string
	Err  error
}

func (e PairError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Date, e.Peg, e.Err)
}

func (e PairError) Unwrap() error {
	return e.Err
}

// SeedReport итог заполнения календаря
type SeedReport struct {
	Inserted int
	Skipped  int
	Failed   int
	Errors   []PairError
}

// Total количество обработанных пар
func (r *SeedReport) Total() int {
	return r.Inserted + r.Skipped + r.Failed
}

// Seed заводит свободный слот для каждой пары (date, peg) на days дней начиная со start.
// Существующие слоты не трогает, поэтому повторный запуск безопасен.
// Ошибка на одной паре не останавливает остальные.
func (s *CalendarService) Seed(ctx context.Context, start string, days int, pegs []string) (*SeedReport, error) {
	startDate, err := model.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if days <= 0 {
		return nil, fmt.Errorf("%w: number of days must be positive, got %d", ErrValidation, days)
	}
	if len(pegs) == 0 {
		return nil, fmt.Errorf("%w: at least one peg is required", ErrValidation)
	}

	s.logger.Info("Seeding calendar",
		zap.String("start", start),
		zap.Int("days", days),
		zap.Strings("pegs", pegs),
	)

	report := &SeedReport{}
	for i := 0; i < days; i++ {
		date := model.FormatDate(startDate.AddDate(0, 0, i))

		for _, peg := range pegs {
			if err := ctx.Err(); err != nil {
				s.logger.Warn("Seeding interrupted",
					zap.String("date", date),
					zap.Int("processed", report.Total()),
				)
				return report, err
			}

			s.seedPair(ctx, report, date, peg)
		}
	}

	s.logger.Info("Data seeding complete",
		zap.Int("inserted", report.Inserted),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)

	return report, nil
}

func (s *CalendarService) seedPair(ctx context.Context, report *SeedReport, date, peg string) {
	existing, err := s.store.FindByKey(ctx, date, peg)
	if err != nil {
		s.logger.Error("Error checking existing data",
			zap.String("date", date),
			zap.String("peg", peg),
			zap.Error(err),
		)
		report.Failed++
		report.Errors = append(report.Errors, PairError{Date: date, Peg: peg, Err: err})
		return
	}

	if len(existing) > 0 {
		s.logger.Debug("Entry already exists, skipping insert",
			zap.String("date", date),
			zap.String("peg", peg),
		)
		report.Skipped++
		return
	}

	slot := model.Slot{
		Date:   date,
		Peg:    peg,
		Status: model.SlotStatusAvailable,
	}

	err = s.store.Insert(ctx, &slot)
	switch {
	case errors.Is(err, model.ErrDuplicateSlot):
		// слот появился между проверкой и вставкой
		report.Skipped++
	case err != nil:
		s.logger.Error("Error inserting slot",
			zap.String("date", date),
			zap.String("peg", peg),
			zap.Error(err),
		)
		report.Failed++
		report.Errors = append(report.Errors, PairError{Date: date, Peg: peg, Err: err})
	default:
		s.logger.Debug("Inserted availability",
			zap.String("date", date),
			zap.String("peg", peg),
		)
		report.Inserted++
	}
}
