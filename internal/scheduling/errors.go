package scheduling

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Коды типизированных отказов. Каждый отказ восстановим на стороне
// вызывающего: форма показывается заново с конкретной причиной.
const (
	CodeInvalidTimeRange          = "invalid_time_range"
	CodeTeacherNotQualified       = "teacher_not_qualified"
	CodeTeacherNotAssignedToGroup = "teacher_not_assigned_to_group"
	CodeGroupTimeConflict         = "group_time_conflict"
	CodeTeacherTimeConflict       = "teacher_time_conflict"
	CodeWeekdayMismatch           = "weekday_mismatch"
	CodeDuplicateLesson           = "duplicate_lesson"
	CodeGradeOutOfRange           = "grade_out_of_range"
)

// Error представляет типизированный отказ бизнес-правила.
// Conflict содержит мешающую запись, если отказ вызван конфликтом.
type Error struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Conflict interface{} `json:"conflict,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func conflictError(code, message string, conflict interface{}) *Error {
	return &Error{Code: code, Message: message, Conflict: conflict}
}

// AsError возвращает типизированный отказ, если err им является
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// isUniqueViolation распознает нарушение уникального индекса.
// Конкурирующая вставка, проскочившая проверки внутри транзакции,
// упирается в индекс и должна быть показана как тот же типизированный
// конфликт, а не как общая ошибка.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value") // postgres
}
