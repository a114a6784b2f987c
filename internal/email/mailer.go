package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/vishnu-krishnan/expenze/internal/config"
)

// Mailer отправляет письма с кодами подтверждения через SMTP.
// Без настроенного SMTP_HOST отправка пропускается: результат доставки
// фиксируется вызывающей стороной, регистрация не блокируется.
type Mailer struct {
	cfg config.EmailConfig
}

// NewMailer создает почтовый клиент.
func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Configured сообщает, задан ли SMTP-хост.
func (m *Mailer) Configured() bool {
	return strings.TrimSpace(m.cfg.Host) != ""
}

// SendOTP отправляет код подтверждения регистрации.
func (m *Mailer) SendOTP(to, code string, expiryMinutes int) error {
	subject := "Expenze verification code"
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, expiryMinutes)
	return m.send(to, subject, body)
}

// SendEmailChangeOTP отправляет код подтверждения смены email.
func (m *Mailer) SendEmailChangeOTP(to, code string, expiryMinutes int) error {
	subject := "Expenze email change confirmation"
	body := fmt.Sprintf("Use code %s to confirm your new email address. It expires in %d minutes.", code, expiryMinutes)
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("smtp is not configured")
	}

	message := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	return nil
}
