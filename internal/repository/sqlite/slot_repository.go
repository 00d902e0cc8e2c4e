// Package sqlite хранит календарь в локальном файле SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Freeeeeet/fishery_booking/internal/model"
	"github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS booking_calendar (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		peg TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'available',
		UNIQUE (date, peg)
	);
	CREATE INDEX IF NOT EXISTS idx_booking_calendar_date ON booking_calendar(date);
`

type SlotRepository struct {
	db *sql.DB
}

// Open открывает базу по пути и создаёт схему если её нет.
// Путь ":memory:" даёт базу в памяти, живущую пока открыт репозиторий.
func Open(path string) (*SlotRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite пишет одним писателем, а ":memory:" живёт только в одном соединении
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SlotRepository{db: db}, nil
}

func (r *SlotRepository) Close() error {
	return r.db.Close()
}

func (r *SlotRepository) FindByKey(ctx context.Context, date, peg string) ([]model.Slot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, peg, status FROM booking_calendar WHERE date = ? AND peg = ? ORDER BY id`,
		date, peg,
	)
	if err != nil {
		return nil, fmt.Errorf("find slot by key: %w", err)
	}

	return scanSlots(rows)
}

func (r *SlotRepository) ListPage(ctx context.Context, offset, limit int) ([]model.Slot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, peg, status FROM booking_calendar ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list slots page: %w", err)
	}

	return scanSlots(rows)
}

func (r *SlotRepository) ListBefore(ctx context.Context, date string) ([]model.Slot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, peg, status FROM booking_calendar WHERE date < ? ORDER BY date, id`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("list slots before: %w", err)
	}

	return scanSlots(rows)
}

func (r *SlotRepository) Insert(ctx context.Context, slot *model.Slot) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO booking_calendar (date, peg, status) VALUES (?, ?, ?)`,
		slot.Date, slot.Peg, string(slot.Status),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("insert slot %s/%s: %w", slot.Date, slot.Peg, model.ErrDuplicateSlot)
		}
		return fmt.Errorf("insert slot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert slot id: %w", err)
	}
	slot.ID = id

	return nil
}

func (r *SlotRepository) UpdateStatus(ctx context.Context, id int64, expected, next model.SlotStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE booking_calendar SET status = ? WHERE id = ? AND status = ?`,
		string(next), id, string(expected),
	)
	if err != nil {
		return false, fmt.Errorf("update slot status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update slot status: %w", err)
	}

	return affected == 1, nil
}

func (r *SlotRepository) DeleteBefore(ctx context.Context, date string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM booking_calendar WHERE date < ?`, date)
	if err != nil {
		return 0, fmt.Errorf("delete slots before: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete slots before: %w", err)
	}

	return affected, nil
}

func scanSlots(rows *sql.Rows) ([]model.Slot, error) {
	defer rows.Close()

	slots := make([]model.Slot, 0)
	for rows.Next() {
		var slot model.Slot
		var status string
		if err := rows.Scan(&slot.ID, &slot.Date, &slot.Peg, &status); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slot.Status = model.SlotStatus(status)
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}
