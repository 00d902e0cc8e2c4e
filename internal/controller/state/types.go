package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Владелец попросил снять бронь и должен подтвердить
	StateConfirmRelease UserState = "confirm_release"
)

// Ключи временных данных
const (
	KeyDate = "date"
	KeyPeg  = "peg"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]string
}
