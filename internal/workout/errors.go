package workout

import "errors"

// Error is a user-visible failure with a stable machine code and a fixed
// reply text. The set of values below is closed: every failure the bot can
// report to a user maps to exactly one of them.
type Error struct {
	code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Code returns the stable identifier used in structured logs.
func (e *Error) Code() string { return e.code }

var (
	// ErrBadArgs covers malformed or insufficient input.
	ErrBadArgs = &Error{code: "bad_args", Message: "Неправильный ввод"}
	// ErrBadDate is returned when the timestamp field does not parse.
	ErrBadDate = &Error{code: "bad_date", Message: "Неправильно введена дата и время"}
	// ErrBadCoords is returned when the coordinates field does not parse.
	ErrBadCoords = &Error{code: "bad_coords", Message: "Неправильно заданы координаты"}
	// ErrBadDist is returned when the distance field does not parse.
	ErrBadDist = &Error{code: "bad_dist", Message: "Неправильно задана дистанция"}
	// ErrBadPace is returned when the pace field does not parse.
	ErrBadPace = &Error{code: "bad_pace", Message: "Неправильно задан темп"}
	// ErrBadID is returned when a delete target does not exist.
	ErrBadID = &Error{code: "bad_id", Message: "Нет такого ID"}
	// ErrStoreUnavailable signals a persistence I/O failure. The cause is
	// attached by the store via error wrapping.
	ErrStoreUnavailable = &Error{code: "store_unavailable", Message: "Проблемы взаимодействия с базой данных"}
	// ErrIDSpaceExhausted is returned when no free identifier could be
	// reserved within the allowed attempts.
	ErrIDSpaceExhausted = &Error{code: "id_space_exhausted", Message: "Свободные ID закончились, удалите старые тренировки"}
)

// UserMessage extracts the fixed reply text when err belongs to the
// taxonomy, looking through wrapped causes.
func UserMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}

// ErrorCode extracts the stable code when err belongs to the taxonomy.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return "unknown"
}
