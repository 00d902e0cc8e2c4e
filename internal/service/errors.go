package service

import "errors"

var (
	// ErrValidation неверные входные данные, до хранилища запрос не дошёл
	ErrValidation = errors.New("validation failed")
	// ErrConflict слот изменили параллельно и повторная попытка тоже проиграла
	ErrConflict = errors.New("slot was modified concurrently")
	// ErrNotBooked освобождать нечего: слот свободен или не заведён
	ErrNotBooked = errors.New("slot is not booked")
)
