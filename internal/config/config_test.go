package config

import (
	"testing"
	"time"
)

// TestParseIntEnv проверяет разбор целочисленной переменной окружения.
func TestParseIntEnv(t *testing.T) {
	t.Setenv("TEST_INT_ENV", "42")

	got, err := parseIntEnv("TEST_INT_ENV", 7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}

	if got, err := parseIntEnv("MISSING_INT_ENV", 7); err != nil || got != 7 {
		t.Fatalf("expected fallback 7, got %d (err=%v)", got, err)
	}

	t.Setenv("TEST_INT_ENV", "abc")
	if _, err := parseIntEnv("TEST_INT_ENV", 7); err == nil {
		t.Fatal("expected error for non-integer value")
	}
}

// TestParseDurationEnv проверяет разбор длительности из окружения.
func TestParseDurationEnv(t *testing.T) {
	t.Setenv("TEST_DURATION_ENV", "90s")

	got, err := parseDurationEnv("TEST_DURATION_ENV", time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}

	t.Setenv("TEST_DURATION_ENV", "-5s")
	if _, err := parseDurationEnv("TEST_DURATION_ENV", time.Minute); err == nil {
		t.Fatal("expected error for non-positive duration")
	}
}
