package scheduling

import "time"

// WeekdayIndex переводит time.Weekday в нумерацию 0=понедельник .. 6=воскресенье
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DateOnly отбрасывает время суток: даты уроков хранятся и сравниваются
// как полночь UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// validTime проверяет формат "HH:MM". Для этого формата лексикографическое
// сравнение строк совпадает с временным порядком.
func validTime(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
