package planning

import (
	"errors"
	"testing"
	"time"

	"github.com/vishnu-krishnan/expenze/internal/repository"
)

// TestParseMonthKey проверяет разбор корректных ключей месяца.
func TestParseMonthKey(t *testing.T) {
	tests := []struct {
		key       string
		wantYear  int
		wantMonth time.Month
	}{
		{"2025-01", 2025, time.January},
		{"2024-12", 2024, time.December},
		{"1999-06", 1999, time.June},
	}

	for _, tt := range tests {
		got, err := ParseMonthKey(tt.key)
		if err != nil {
			t.Errorf("ParseMonthKey(%q) вернул ошибку: %v", tt.key, err)
			continue
		}
		if got.Year() != tt.wantYear || got.Month() != tt.wantMonth {
			t.Errorf("ParseMonthKey(%q) = %v, ожидали %d-%02d", tt.key, got, tt.wantYear, tt.wantMonth)
		}
	}
}

// TestParseMonthKeyInvalid проверяет отклонение некорректных ключей.
func TestParseMonthKeyInvalid(t *testing.T) {
	keys := []string{"", "2025", "2025-13", "2025-00", "2025-1", "2025/01", "25-01", "2025-01-15"}

	for _, key := range keys {
		_, err := ParseMonthKey(key)
		if err == nil {
			t.Errorf("ParseMonthKey(%q) должен вернуть ошибку", key)
			continue
		}
		if !errors.Is(err, repository.ErrInvalid) {
			t.Errorf("ParseMonthKey(%q): ошибка %v не оборачивает ErrInvalid", key, err)
		}
	}
}

// TestMonthWindow проверяет границы окна месяца, включая февраль и декабрь.
func TestMonthWindow(t *testing.T) {
	tests := []struct {
		key       string
		wantStart string
		wantEnd   string
	}{
		{"2025-01", "2025-01-01", "2025-01-31"},
		{"2024-02", "2024-02-01", "2024-02-29"},
		{"2025-02", "2025-02-01", "2025-02-28"},
		{"2025-12", "2025-12-01", "2025-12-31"},
	}

	for _, tt := range tests {
		start, end, err := MonthWindow(tt.key)
		if err != nil {
			t.Fatalf("MonthWindow(%q) вернул ошибку: %v", tt.key, err)
		}
		if got := start.Format("2006-01-02"); got != tt.wantStart {
			t.Errorf("MonthWindow(%q) start = %s, ожидали %s", tt.key, got, tt.wantStart)
		}
		if got := end.Format("2006-01-02"); got != tt.wantEnd {
			t.Errorf("MonthWindow(%q) end = %s, ожидали %s", tt.key, got, tt.wantEnd)
		}
	}
}

// TestMonthKeyOffset проверяет сдвиг месяца, в том числе через границу года
// и от 31-го числа.
func TestMonthKeyOffset(t *testing.T) {
	tests := []struct {
		now    time.Time
		offset int
		want   string
	}{
		{time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), 0, "2025-03"},
		{time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), -2, "2025-01"},
		{time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), -1, "2024-12"},
		{time.Date(2025, time.March, 31, 23, 59, 0, 0, time.UTC), -1, "2025-02"},
		{time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC), -5, "2025-05"},
	}

	for _, tt := range tests {
		if got := monthKeyOffset(tt.now, tt.offset); got != tt.want {
			t.Errorf("monthKeyOffset(%v, %d) = %s, ожидали %s", tt.now, tt.offset, got, tt.want)
		}
	}
}
