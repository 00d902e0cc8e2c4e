package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout формат даты слота: только день, без времени и зоны
const DateLayout = "2006-01-02"

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
)

// Next возвращает статус после переключения.
// Всё что не booked считается свободным и переходит в booked.
func (s SlotStatus) Next() SlotStatus {
	if s == SlotStatusBooked {
		return SlotStatusAvailable
	}
	return SlotStatusBooked
}

// ErrDuplicateSlot возвращается хранилищем при нарушении уникальности (date, peg)
var ErrDuplicateSlot = errors.New("slot already exists")

// Slot одна бронируемая единица: колышек на конкретную дату
type Slot struct {
	ID     int64      `json:"id"`
	Date   string     `json:"date"` // YYYY-MM-DD
	Peg    string     `json:"peg"`
	Status SlotStatus `json:"status"`
}

// ParseDate разбирает дату слота в полночь UTC
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return d, nil
}

// FormatDate возвращает календарную дату t в её собственной зоне
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
