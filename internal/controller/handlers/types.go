package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/fishery_booking/internal/controller/state"
	"github.com/Freeeeeet/fishery_booking/internal/service"
	"go.uber.org/zap"
)

// Calendar операции календаря, доступные из бота
type Calendar interface {
	Today(now time.Time) string
	DayStatus(ctx context.Context, date string, pegs []string) ([]service.PegStatus, error)
	Toggle(ctx context.Context, date, peg string) (*service.ToggleResult, error)
	Release(ctx context.Context, date, peg string) (*service.ToggleResult, error)
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	calendar     Calendar
	pegs         []string
	ownerID      int64
	stateManager *state.Manager
	now          func() time.Time
	logger       *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	calendar Calendar,
	pegs []string,
	ownerID int64,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		calendar:     calendar,
		pegs:         pegs,
		ownerID:      ownerID,
		stateManager: stateManager,
		now:          time.Now,
		logger:       logger,
	}
}
