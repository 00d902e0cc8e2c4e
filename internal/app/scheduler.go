package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Purger удаляет прошедшие слоты
type Purger interface {
	PurgePast(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	purger   Purger
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler создаёт новый планировщик; полночь считается в location
func NewScheduler(purger Purger, location *time.Location, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		purger:   purger,
		location: location,
		now:      time.Now,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	s.wg.Add(1)
	go s.runPurgeTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

// runPurgeTask чистит прошедшие даты при старте и затем каждую полночь
func (s *Scheduler) runPurgeTask(ctx context.Context) {
	defer s.wg.Done()

	// Первый запуск сразу при старте, чтобы догнать пропущенное
	s.purge(ctx)

	for {
		wait := nextMidnight(s.now(), s.location).Sub(s.now())
		timer := time.NewTimer(wait)

		select {
		case <-timer.C:
			s.logger.Info("Running scheduled task: purge past bookings")
			s.purge(ctx)
		case <-s.stopChan:
			timer.Stop()
			s.logger.Info("Purge task stopped")
			return
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Purge task cancelled")
			return
		}
	}
}

func (s *Scheduler) purge(ctx context.Context) {
	deleted, err := s.purger.PurgePast(ctx, s.now())
	if err != nil {
		// следующий запуск подберёт оставшиеся строки
		s.logger.Error("Failed to clear past bookings", zap.Error(err))
		return
	}

	s.logger.Info("Past bookings purge finished", zap.Int64("deleted", deleted))
}

// nextMidnight ближайшая полночь после now в зоне loc.
// Считается через календарь, а не +24h, чтобы переход на летнее время не сдвигал запуск.
func nextMidnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}
