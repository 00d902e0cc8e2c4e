package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/fishery_booking/internal/model"
	"github.com/Freeeeeet/fishery_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SlotRepository хранит календарь в таблице booking_calendar
type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

// FindByKey получает все строки для (date, peg), первой идёт строка с меньшим id
func (r *SlotRepository) FindByKey(ctx context.Context, date, peg string) ([]model.Slot, error) {
	query := `
		SELECT id, date::text, peg, status
		FROM booking_calendar
		WHERE date = $1::date AND peg = $2
		ORDER BY id
	`

	rows, err := r.Query(ctx, query, date, peg)
	if err != nil {
		return nil, fmt.Errorf("find slot by key: %w", err)
	}

	return scanSlots(rows)
}

// ListPage получает окно строк календаря в стабильном порядке
func (r *SlotRepository) ListPage(ctx context.Context, offset, limit int) ([]model.Slot, error) {
	query := `
		SELECT id, date::text, peg, status
		FROM booking_calendar
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list slots page: %w", err)
	}

	return scanSlots(rows)
}

// ListBefore получает все слоты строго раньше указанной даты
func (r *SlotRepository) ListBefore(ctx context.Context, date string) ([]model.Slot, error) {
	query := `
		SELECT id, date::text, peg, status
		FROM booking_calendar
		WHERE date < $1::date
		ORDER BY date, id
	`

	rows, err := r.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list slots before: %w", err)
	}

	return scanSlots(rows)
}

// Insert создаёт слот и заполняет его ID
func (r *SlotRepository) Insert(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO booking_calendar (date, peg, status)
		VALUES ($1::date, $2, $3)
		RETURNING id
	`

	err := r.QueryRow(ctx, query, slot.Date, slot.Peg, slot.Status).Scan(&slot.ID)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("insert slot %s/%s: %w", slot.Date, slot.Peg, model.ErrDuplicateSlot)
		}
		return fmt.Errorf("insert slot: %w", err)
	}

	return nil
}

// UpdateStatus меняет статус только если текущий равен expected.
// false означает что строку успели изменить или удалить.
func (r *SlotRepository) UpdateStatus(ctx context.Context, id int64, expected, next model.SlotStatus) (bool, error) {
	query := `
		UPDATE booking_calendar
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	affected, err := r.ExecAffected(ctx, query, next, id, expected)
	if err != nil {
		return false, fmt.Errorf("update slot status: %w", err)
	}

	return affected == 1, nil
}

// DeleteBefore удаляет все слоты строго раньше указанной даты
func (r *SlotRepository) DeleteBefore(ctx context.Context, date string) (int64, error) {
	query := `DELETE FROM booking_calendar WHERE date < $1::date`

	affected, err := r.ExecAffected(ctx, query, date)
	if err != nil {
		return 0, fmt.Errorf("delete slots before: %w", err)
	}

	return affected, nil
}

func scanSlots(rows pgx.Rows) ([]model.Slot, error) {
	defer rows.Close()

	slots := make([]model.Slot, 0)
	for rows.Next() {
		var slot model.Slot
		err := rows.Scan(
			&slot.ID,
			&slot.Date,
			&slot.Peg,
			&slot.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}
