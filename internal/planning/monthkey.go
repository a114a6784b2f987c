package planning

import (
	"fmt"
	"time"

	"github.com/vishnu-krishnan/expenze/internal/repository"
)

const monthKeyLayout = "2006-01"

// ParseMonthKey разбирает ключ месяца формата YYYY-MM и возвращает его первый день.
func ParseMonthKey(key string) (time.Time, error) {
	parsed, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("month key %q: %w", key, repository.ErrInvalid)
	}

	return parsed, nil
}

// MonthWindow возвращает первый и последний календарный день месяца.
func MonthWindow(key string) (time.Time, time.Time, error) {
	start, err := ParseMonthKey(key)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end := start.AddDate(0, 1, -1)
	return start, end, nil
}

// MonthKeyAt форматирует ключ месяца для заданного момента времени.
func MonthKeyAt(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// monthKeyOffset возвращает ключ месяца, отстоящего от t на offset месяцев.
// Счет ведется от первого числа, чтобы 31-е не перескакивало через месяц.
func monthKeyOffset(t time.Time, offset int) string {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return MonthKeyAt(firstOfMonth.AddDate(0, offset, 0))
}
