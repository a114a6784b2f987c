package settings

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vishnu-krishnan/expenze/internal/models"
)

const (
	KeyOTPTimeout          = "otp_timeout"
	KeyRegistrationEnabled = "registration_enabled"
	KeySupportEmail        = "support_email"
)

const (
	defaultOTPTimeoutMinutes = 2
	defaultSupportEmail      = "support@expenze.app"
)

type Store interface {
	GetByKey(ctx context.Context, key string) (models.SystemSetting, error)
}

// Service дает типизированный доступ к системным настройкам.
// Отсутствующая или испорченная настройка заменяется значением по умолчанию.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService создает сервис системных настроек.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{store: store, logger: logger}
}

// OTPTimeoutMinutes возвращает срок действия OTP в минутах.
func (s *Service) OTPTimeoutMinutes(ctx context.Context) int {
	value, ok := s.lookup(ctx, KeyOTPTimeout)
	if !ok {
		return defaultOTPTimeoutMinutes
	}

	minutes, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || minutes <= 0 {
		s.logger.Warn("invalid otp_timeout setting", slog.String("value", value))
		return defaultOTPTimeoutMinutes
	}

	return minutes
}

// RegistrationEnabled сообщает, открыта ли регистрация новых пользователей.
func (s *Service) RegistrationEnabled(ctx context.Context) bool {
	value, ok := s.lookup(ctx, KeyRegistrationEnabled)
	if !ok {
		return true
	}

	enabled, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		s.logger.Warn("invalid registration_enabled setting", slog.String("value", value))
		return true
	}

	return enabled
}

// SupportEmail возвращает контакт поддержки.
func (s *Service) SupportEmail(ctx context.Context) string {
	value, ok := s.lookup(ctx, KeySupportEmail)
	if !ok || strings.TrimSpace(value) == "" {
		return defaultSupportEmail
	}

	return strings.TrimSpace(value)
}

func (s *Service) lookup(ctx context.Context, key string) (string, bool) {
	setting, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return "", false
	}

	return setting.Value, true
}
