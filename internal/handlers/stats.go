package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/auth"
	"github.com/vishnu-krishnan/expenze/internal/planning"
	"github.com/vishnu-krishnan/expenze/internal/repository"
)

type StatsHandler struct {
	Planning *planning.Service
	Now      func() time.Time
}

// NewStatsHandler создает обработчик сводок.
func NewStatsHandler(planningService *planning.Service) *StatsHandler {
	return &StatsHandler{Planning: planningService, Now: time.Now}
}

type SummaryResponse struct {
	Summaries []planning.MonthSummary `json:"summaries"`
}

type CategoryExpensesResponse struct {
	MonthKey string                     `json:"month_key"`
	Expenses []planning.CategoryExpense `json:"expenses"`
}

// LastSix возвращает сводку за последние шесть месяцев.
func (h *StatsHandler) LastSix(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	summaries, err := h.Planning.LastSixMonthsSummary(c.Request().Context(), userID, h.Now())
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, SummaryResponse{Summaries: summaries})
}

// CategoryExpenses возвращает фактические траты месяца по категориям.
func (h *StatsHandler) CategoryExpenses(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	monthKey := c.Param("monthKey")

	expenses, err := h.Planning.CategoryExpenses(c.Request().Context(), userID, monthKey)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid month key")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, CategoryExpensesResponse{MonthKey: monthKey, Expenses: expenses})
}
