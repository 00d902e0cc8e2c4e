package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/fishery_booking/internal/model"
	"go.uber.org/zap"
)

// CalendarPageSize максимум строк, который хранилище отдаёт за один запрос
const CalendarPageSize = 1000

// toggleAttempts первая попытка плюс один повтор после конфликта
const toggleAttempts = 2

// SlotStore таблица слотов, ключ (date, peg).
// Даты передаются строками YYYY-MM-DD и сравниваются как даты.
type SlotStore interface {
	FindByKey(ctx context.Context, date, peg string) ([]model.Slot, error)
	ListPage(ctx context.Context, offset, limit int) ([]model.Slot, error)
	ListBefore(ctx context.Context, date string) ([]model.Slot, error)
	Insert(ctx context.Context, slot *model.Slot) error
	UpdateStatus(ctx context.Context, id int64, expected, next model.SlotStatus) (bool, error)
	DeleteBefore(ctx context.Context, date string) (int64, error)
}

// CalendarOptions настройки сервиса календаря
type CalendarOptions struct {
	// Location зона, в которой считается "сегодня"
	Location *time.Location
	// PageSize размер страницы для ReadAll, по умолчанию CalendarPageSize
	PageSize int
}

type CalendarService struct {
	store    SlotStore
	location *time.Location
	pageSize int
	logger   *zap.Logger
}

func NewCalendarService(store SlotStore, opts CalendarOptions, logger *zap.Logger) *CalendarService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PageSize <= 0 {
		opts.PageSize = CalendarPageSize
	}

	return &CalendarService{
		store:    store,
		location: opts.Location,
		pageSize: opts.PageSize,
		logger:   logger,
	}
}

// Today возвращает календарную дату now в зоне сервиса
func (s *CalendarService) Today(now time.Time) string {
	return model.FormatDate(now.In(s.location))
}

// ToggleResult итог переключения слота
type ToggleResult struct {
	Slot     model.Slot
	Previous model.SlotStatus // пусто, если слот создан
	Created  bool
}

// Message текст для клиента
func (r *ToggleResult) Message() string {
	if r.Created {
		return "Booking created successfully"
	}
	return fmt.Sprintf("Booking status updated to %s", r.Slot.Status)
}

// Toggle бронирует свободный слот или освобождает занятый.
// Слот, которого нет в календаре, сразу создаётся со статусом booked.
func (s *CalendarService) Toggle(ctx context.Context, date, peg string) (*ToggleResult, error) {
	date = strings.TrimSpace(date)
	if date == "" || strings.TrimSpace(peg) == "" {
		return nil, fmt.Errorf("%w: date and peg are required", ErrValidation)
	}
	if _, err := model.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	for attempt := 1; attempt <= toggleAttempts; attempt++ {
		result, err := s.tryToggle(ctx, date, peg)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}

		s.logger.Warn("Slot changed concurrently during toggle",
			zap.String("date", date),
			zap.String("peg", peg),
			zap.Int("attempt", attempt),
		)
	}

	return nil, fmt.Errorf("toggle slot %s/%s: %w", date, peg, ErrConflict)
}

// tryToggle делает одну попытку чтение-запись.
// nil результат без ошибки означает, что параллельная запись успела раньше.
func (s *CalendarService) tryToggle(ctx context.Context, date, peg string) (*ToggleResult, error) {
	existing, err := s.store.FindByKey(ctx, date, peg)
	if err != nil {
		s.logger.Error("Failed to check existing booking",
			zap.String("date", date),
			zap.String("peg", peg),
			zap.Error(err),
		)
		return nil, fmt.Errorf("find slot: %w", err)
	}

	if len(existing) > 0 {
		// При дублях работаем только с первой строкой
		current := existing[0]
		next := current.Status.Next()

		updated, err := s.store.UpdateStatus(ctx, current.ID, current.Status, next)
		if err != nil {
			s.logger.Error("Failed to update booking",
				zap.Int64("slot_id", current.ID),
				zap.String("date", date),
				zap.String("peg", peg),
				zap.Error(err),
			)
			return nil, fmt.Errorf("update slot: %w", err)
		}
		if !updated {
			return nil, nil
		}

		s.logger.Info("Booking status updated",
			zap.Int64("slot_id", current.ID),
			zap.String("date", date),
			zap.String("peg", peg),
			zap.String("from", string(current.Status)),
			zap.String("to", string(next)),
		)

		previous := current.Status
		current.Status = next
		return &ToggleResult{Slot: current, Previous: previous}, nil
	}

	slot := model.Slot{
		Date:   date,
		Peg:    peg,
		Status: model.SlotStatusBooked,
	}

	err = s.store.Insert(ctx, &slot)
	if errors.Is(err, model.ErrDuplicateSlot) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to insert booking",
			zap.String("date", date),
			zap.String("peg", peg),
			zap.Error(err),
		)
		return nil, fmt.Errorf("insert slot: %w", err)
	}

	s.logger.Info("Booking created",
		zap.Int64("slot_id", slot.ID),
		zap.String("date", date),
		zap.String("peg", peg),
	)

	return &ToggleResult{Slot: slot, Created: true}, nil
}

// ReadAll выгружает весь календарь постранично.
// Ошибка на любой странице отменяет всё чтение.
func (s *CalendarService) ReadAll(ctx context.Context) ([]model.Slot, error) {
	all := make([]model.Slot, 0)

	for offset := 0; ; offset += s.pageSize {
		page, err := s.store.ListPage(ctx, offset, s.pageSize)
		if err != nil {
			s.logger.Error("Failed to fetch calendar page",
				zap.Int("offset", offset),
				zap.Int("page_size", s.pageSize),
				zap.Error(err),
			)
			return nil, fmt.Errorf("read calendar page at %d: %w", offset, err)
		}

		all = append(all, page...)

		// Неполная (или пустая) страница - данных больше нет
		if len(page) < s.pageSize {
			break
		}
	}

	return all, nil
}

// PegStatus состояние колышка на дату; Slot nil если слот не заведён
type PegStatus struct {
	Peg  string
	Slot *model.Slot
}

// DayStatus возвращает состояние каждого колышка на дату
func (s *CalendarService) DayStatus(ctx context.Context, date string, pegs []string) ([]PegStatus, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	result := make([]PegStatus, 0, len(pegs))
	for _, peg := range pegs {
		slots, err := s.store.FindByKey(ctx, date, peg)
		if err != nil {
			return nil, fmt.Errorf("find slot %s/%s: %w", date, peg, err)
		}

		status := PegStatus{Peg: peg}
		if len(slots) > 0 {
			status.Slot = &slots[0]
		}
		result = append(result, status)
	}

	return result, nil
}
