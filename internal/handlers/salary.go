package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/auth"
	"github.com/vishnu-krishnan/expenze/internal/notifications"
	"github.com/vishnu-krishnan/expenze/internal/planning"
	"github.com/vishnu-krishnan/expenze/internal/repository"
)

type SalaryHandler struct {
	Planning *planning.Service
	Hub      *notifications.Hub
}

// NewSalaryHandler создает обработчик доходов.
func NewSalaryHandler(planningService *planning.Service, hub *notifications.Hub) *SalaryHandler {
	return &SalaryHandler{Planning: planningService, Hub: hub}
}

type SaveSalaryRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"gte=0"`
}

// Get возвращает доход за месяц; отсутствующий читается как ноль.
func (h *SalaryHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	salary, err := h.Planning.Salary(c.Request().Context(), userID, c.Param("monthKey"))
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid month key")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, salary)
}

// Save сохраняет доход за месяц.
func (h *SalaryHandler) Save(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	monthKey := c.Param("monthKey")

	var req SaveSalaryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	if err := h.Planning.SaveSalary(c.Request().Context(), userID, monthKey, req.AmountCents); err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid month key or amount")
		}
		return serverError(c)
	}

	if h.Hub != nil {
		h.Hub.PublishSalarySaved(userID, monthKey)
	}

	return c.JSON(http.StatusOK, planning.SalarySummary{MonthKey: monthKey, AmountCents: req.AmountCents})
}
