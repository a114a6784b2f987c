package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/auth"
	"github.com/vishnu-krishnan/expenze/internal/models"
	"github.com/vishnu-krishnan/expenze/internal/repository"
)

const dateLayout = "2006-01-02"

type RegularPaymentHandler struct {
	Payments   *repository.RegularPaymentRepository
	Categories *repository.CategoryRepository
}

// NewRegularPaymentHandler создает обработчик регулярных платежей.
func NewRegularPaymentHandler(payments *repository.RegularPaymentRepository, categories *repository.CategoryRepository) *RegularPaymentHandler {
	return &RegularPaymentHandler{Payments: payments, Categories: categories}
}

type RegularPaymentRequest struct {
	CategoryID                uuid.UUID `json:"category_id" validate:"required"`
	Name                      string    `json:"name" validate:"required,max=200"`
	DefaultPlannedAmountCents int64     `json:"default_planned_amount_cents" validate:"gte=0"`
	Notes                     *string   `json:"notes" validate:"omitempty,max=1000"`
	StartDate                 *string   `json:"start_date" validate:"omitempty"`
	EndDate                   *string   `json:"end_date" validate:"omitempty"`
	Frequency                 string    `json:"frequency" validate:"omitempty,oneof=MONTHLY WEEKLY YEARLY"`
	IsActive                  *bool     `json:"is_active"`
}

type RegularPaymentDetail struct {
	models.RegularPayment
	CategoryName string `json:"category_name"`
}

type RegularPaymentListResponse struct {
	Payments []RegularPaymentDetail `json:"payments"`
}

// List возвращает регулярные платежи пользователя с именами категорий.
func (h *RegularPaymentHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()

	payments, err := h.Payments.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	names, err := h.Categories.NamesByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, RegularPaymentListResponse{Payments: enrichPayments(payments, names)})
}

func enrichPayments(payments []models.RegularPayment, names map[uuid.UUID]string) []RegularPaymentDetail {
	details := make([]RegularPaymentDetail, 0, len(payments))
	for _, payment := range payments {
		details = append(details, RegularPaymentDetail{
			RegularPayment: payment,
			CategoryName:   names[payment.CategoryID],
		})
	}

	return details
}

// Create добавляет регулярный платеж.
func (h *RegularPaymentHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req RegularPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	payment, err := h.buildPayment(userID, req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()

	category, err := h.Categories.GetByID(ctx, userID, payment.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "category not found")
		}
		return serverError(c)
	}

	created, err := h.Payments.Create(ctx, payment)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, RegularPaymentDetail{RegularPayment: created, CategoryName: category.Name})
}

// Update изменяет регулярный платеж.
func (h *RegularPaymentHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid payment id")
	}

	var req RegularPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	payment, err := h.buildPayment(userID, req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()

	category, err := h.Categories.GetByID(ctx, userID, payment.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "category not found")
		}
		return serverError(c)
	}

	updated, err := h.Payments.Update(ctx, userID, paymentID, payment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "payment not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, RegularPaymentDetail{RegularPayment: updated, CategoryName: category.Name})
}

// Delete удаляет регулярный платеж; материализованные строки планов
// не затрагиваются.
func (h *RegularPaymentHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid payment id")
	}

	if err := h.Payments.Delete(c.Request().Context(), userID, paymentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "payment not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *RegularPaymentHandler) buildPayment(userID uuid.UUID, req RegularPaymentRequest) (models.RegularPayment, error) {
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return models.RegularPayment{}, errors.New("invalid start_date")
	}

	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return models.RegularPayment{}, errors.New("invalid end_date")
	}

	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return models.RegularPayment{}, errors.New("end_date is before start_date")
	}

	frequency := models.FrequencyMonthly
	if strings.TrimSpace(req.Frequency) != "" {
		frequency = models.Frequency(req.Frequency)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return models.RegularPayment{
		UserID:                    userID,
		CategoryID:                req.CategoryID,
		Name:                      strings.TrimSpace(req.Name),
		DefaultPlannedAmountCents: req.DefaultPlannedAmountCents,
		Notes:                     normalizeOptional(req.Notes),
		StartDate:                 startDate,
		EndDate:                   endDate,
		Frequency:                 frequency,
		IsActive:                  isActive,
	}, nil
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}

	parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(*value), time.UTC)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}
