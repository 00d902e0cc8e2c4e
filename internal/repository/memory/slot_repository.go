// Package memory держит календарь в памяти процесса.
// Используется для DB_DRIVER=memory и в тестах сервиса.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Freeeeeet/fishery_booking/internal/model"
)

type SlotRepository struct {
	mu     sync.RWMutex
	rows   []model.Slot // упорядочены по id
	nextID int64
}

func NewSlotRepository() *SlotRepository {
	return &SlotRepository{nextID: 1}
}

// Put добавляет строку без проверки уникальности (date, peg).
// Нужен чтобы воспроизвести испорченные данные с дублями.
func (r *SlotRepository) Put(slot model.Slot) model.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot.ID = r.nextID
	r.nextID++
	r.rows = append(r.rows, slot)
	return slot
}

func (r *SlotRepository) FindByKey(_ context.Context, date, peg string) ([]model.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slots := make([]model.Slot, 0)
	for _, row := range r.rows {
		if row.Date == date && row.Peg == peg {
			slots = append(slots, row)
		}
	}
	return slots, nil
}

func (r *SlotRepository) ListPage(_ context.Context, offset, limit int) ([]model.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset >= len(r.rows) {
		return []model.Slot{}, nil
	}
	end := offset + limit
	if end > len(r.rows) {
		end = len(r.rows)
	}

	page := make([]model.Slot, end-offset)
	copy(page, r.rows[offset:end])
	return page, nil
}

func (r *SlotRepository) ListBefore(_ context.Context, date string) ([]model.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slots := make([]model.Slot, 0)
	for _, row := range r.rows {
		if row.Date < date {
			slots = append(slots, row)
		}
	}
	return slots, nil
}

// Insert ведёт себя как таблица с UNIQUE (date, peg)
func (r *SlotRepository) Insert(_ context.Context, slot *model.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.Date == slot.Date && row.Peg == slot.Peg {
			return fmt.Errorf("insert slot %s/%s: %w", slot.Date, slot.Peg, model.ErrDuplicateSlot)
		}
	}

	slot.ID = r.nextID
	r.nextID++
	r.rows = append(r.rows, *slot)
	return nil
}

func (r *SlotRepository) UpdateStatus(_ context.Context, id int64, expected, next model.SlotStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rows {
		if r.rows[i].ID == id {
			if r.rows[i].Status != expected {
				return false, nil
			}
			r.rows[i].Status = next
			return true, nil
		}
	}
	return false, nil
}

func (r *SlotRepository) DeleteBefore(_ context.Context, date string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.Date < date {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return deleted, nil
}

// Len возвращает количество строк
func (r *SlotRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
