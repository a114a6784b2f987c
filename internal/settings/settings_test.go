package settings

import (
	"context"
	"testing"

	"github.com/vishnu-krishnan/expenze/internal/models"
	"github.com/vishnu-krishnan/expenze/internal/repository"
)

type fakeStore struct {
	values map[string]string
}

func (f *fakeStore) GetByKey(_ context.Context, key string) (models.SystemSetting, error) {
	value, ok := f.values[key]
	if !ok {
		return models.SystemSetting{}, repository.ErrNotFound
	}
	return models.SystemSetting{Key: key, Value: value}, nil
}

// TestOTPTimeoutMinutes проверяет чтение срока действия OTP с откатом
// к значению по умолчанию.
func TestOTPTimeoutMinutes(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{"задано", "5", true, 5},
		{"отсутствует", "", false, 2},
		{"не число", "abc", true, 2},
		{"ноль", "0", true, 2},
		{"отрицательное", "-3", true, 2},
	}

	for _, tt := range tests {
		store := &fakeStore{values: map[string]string{}}
		if tt.set {
			store.values[KeyOTPTimeout] = tt.value
		}
		service := NewService(store, nil)

		if got := service.OTPTimeoutMinutes(context.Background()); got != tt.want {
			t.Errorf("%s: OTPTimeoutMinutes = %d, ожидали %d", tt.name, got, tt.want)
		}
	}
}

// TestRegistrationEnabled проверяет флаг регистрации.
func TestRegistrationEnabled(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  bool
	}{
		{"выключено", "false", true, false},
		{"включено", "true", true, true},
		{"отсутствует", "", false, true},
		{"мусор", "banana", true, true},
	}

	for _, tt := range tests {
		store := &fakeStore{values: map[string]string{}}
		if tt.set {
			store.values[KeyRegistrationEnabled] = tt.value
		}
		service := NewService(store, nil)

		if got := service.RegistrationEnabled(context.Background()); got != tt.want {
			t.Errorf("%s: RegistrationEnabled = %v, ожидали %v", tt.name, got, tt.want)
		}
	}
}

// TestSupportEmail проверяет контакт поддержки.
func TestSupportEmail(t *testing.T) {
	store := &fakeStore{values: map[string]string{KeySupportEmail: " help@example.com "}}
	service := NewService(store, nil)

	if got := service.SupportEmail(context.Background()); got != "help@example.com" {
		t.Errorf("SupportEmail = %q", got)
	}

	empty := NewService(&fakeStore{values: map[string]string{}}, nil)
	if got := empty.SupportEmail(context.Background()); got != "support@expenze.app" {
		t.Errorf("SupportEmail по умолчанию = %q", got)
	}
}
