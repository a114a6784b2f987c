package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/auth"
	"github.com/vishnu-krishnan/expenze/internal/notifications"
	"github.com/vishnu-krishnan/expenze/internal/planning"
	"github.com/vishnu-krishnan/expenze/internal/repository"
)

type PlanHandler struct {
	Planning *planning.Service
	Hub      *notifications.Hub
}

// NewPlanHandler создает обработчик планов месяца.
func NewPlanHandler(planningService *planning.Service, hub *notifications.Hub) *PlanHandler {
	return &PlanHandler{Planning: planningService, Hub: hub}
}

type GeneratePlanResponse struct {
	PlanID   uuid.UUID `json:"plan_id"`
	MonthKey string    `json:"month_key"`
}

// GetMonth возвращает план месяца, достраивая его перед чтением.
func (h *PlanHandler) GetMonth(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	monthKey := c.Param("monthKey")

	detail, err := h.Planning.GetMonthPlan(c.Request().Context(), userID, monthKey)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid month key")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, detail)
}

// Generate материализует план месяца из регулярных платежей.
func (h *PlanHandler) Generate(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	monthKey := c.Param("monthKey")

	planID, err := h.Planning.GenerateMonthPlan(c.Request().Context(), userID, monthKey)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid month key")
		}
		return serverError(c)
	}

	if h.Hub != nil {
		h.Hub.PublishMonthPlanGenerated(userID, monthKey, planID)
	}

	return c.JSON(http.StatusOK, GeneratePlanResponse{PlanID: planID, MonthKey: monthKey})
}
