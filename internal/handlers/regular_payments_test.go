package handlers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/vishnu-krishnan/expenze/internal/models"
)

// TestParseDate проверяет разбор опциональной даты.
func TestParseDate(t *testing.T) {
	value := "2025-03-15"
	parsed, err := parseDate(&value)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed == nil || parsed.Format(dateLayout) != "2025-03-15" {
		t.Fatalf("unexpected date: %v", parsed)
	}

	if parsed, err := parseDate(nil); err != nil || parsed != nil {
		t.Fatalf("nil input must yield nil date: %v, %v", parsed, err)
	}

	empty := "   "
	if parsed, err := parseDate(&empty); err != nil || parsed != nil {
		t.Fatalf("blank input must yield nil date: %v, %v", parsed, err)
	}

	bad := "15.03.2025"
	if _, err := parseDate(&bad); err == nil {
		t.Fatal("expected error for invalid date format")
	}
}

// TestBuildPaymentDefaults проверяет значения по умолчанию при создании платежа.
func TestBuildPaymentDefaults(t *testing.T) {
	h := &RegularPaymentHandler{}
	userID := uuid.New()

	payment, err := h.buildPayment(userID, RegularPaymentRequest{
		CategoryID:                uuid.New(),
		Name:                      "  Rent  ",
		DefaultPlannedAmountCents: 50000,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if payment.Name != "Rent" {
		t.Errorf("name must be trimmed: %q", payment.Name)
	}
	if payment.Frequency != models.FrequencyMonthly {
		t.Errorf("default frequency must be MONTHLY: %s", payment.Frequency)
	}
	if !payment.IsActive {
		t.Error("payment must be active by default")
	}
}

// TestBuildPaymentWindowOrder проверяет отклонение перевернутого окна действия.
func TestBuildPaymentWindowOrder(t *testing.T) {
	h := &RegularPaymentHandler{}
	start := "2025-05-01"
	end := "2025-04-01"

	_, err := h.buildPayment(uuid.New(), RegularPaymentRequest{
		CategoryID: uuid.New(),
		Name:       "Bad window",
		StartDate:  &start,
		EndDate:    &end,
	})
	if err == nil {
		t.Fatal("expected error for end_date before start_date")
	}
}

// TestEnrichPayments проверяет подстановку имен категорий в ответ.
func TestEnrichPayments(t *testing.T) {
	rentCategory := uuid.New()
	orphanCategory := uuid.New()
	names := map[uuid.UUID]string{rentCategory: "Housing"}

	details := enrichPayments([]models.RegularPayment{
		{Name: "Rent", CategoryID: rentCategory},
		{Name: "Mystery", CategoryID: orphanCategory},
	}, names)

	if len(details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(details))
	}
	if details[0].CategoryName != "Housing" {
		t.Errorf("expected category name Housing, got %q", details[0].CategoryName)
	}
	if details[1].CategoryName != "" {
		t.Errorf("unresolved category must yield empty name, got %q", details[1].CategoryName)
	}

	if empty := enrichPayments(nil, names); empty == nil || len(empty) != 0 {
		t.Errorf("nil payments must yield empty slice, got %v", empty)
	}
}

// TestToPriority проверяет преобразование приоритета.
func TestToPriority(t *testing.T) {
	if toPriority(nil) != nil {
		t.Error("nil input must yield nil priority")
	}

	empty := "  "
	if toPriority(&empty) != nil {
		t.Error("blank input must yield nil priority")
	}

	high := "HIGH"
	priority := toPriority(&high)
	if priority == nil || *priority != models.PriorityHigh {
		t.Errorf("unexpected priority: %v", priority)
	}
}

// TestNormalizeOptional проверяет нормализацию опциональных строк.
func TestNormalizeOptional(t *testing.T) {
	if normalizeOptional(nil) != nil {
		t.Error("nil input must stay nil")
	}

	blank := "   "
	if normalizeOptional(&blank) != nil {
		t.Error("blank input must become nil")
	}

	padded := "  value  "
	normalized := normalizeOptional(&padded)
	if normalized == nil || *normalized != "value" {
		t.Errorf("unexpected normalization: %v", normalized)
	}
}
