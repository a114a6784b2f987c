package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/auth"
	"github.com/vishnu-krishnan/expenze/internal/models"
	"github.com/vishnu-krishnan/expenze/internal/notifications"
	"github.com/vishnu-krishnan/expenze/internal/planning"
	"github.com/vishnu-krishnan/expenze/internal/repository"
)

type ItemHandler struct {
	Planning *planning.Service
	Hub      *notifications.Hub
}

// NewItemHandler создает обработчик строк плана.
func NewItemHandler(planningService *planning.Service, hub *notifications.Hub) *ItemHandler {
	return &ItemHandler{Planning: planningService, Hub: hub}
}

type CreateItemRequest struct {
	MonthPlanID        uuid.UUID `json:"month_plan_id" validate:"required"`
	CategoryID         uuid.UUID `json:"category_id" validate:"required"`
	Name               string    `json:"name" validate:"required,max=200"`
	PlannedAmountCents int64     `json:"planned_amount_cents" validate:"gte=0"`
	ActualAmountCents  int64     `json:"actual_amount_cents" validate:"gte=0"`
	IsPaid             bool      `json:"is_paid"`
	Notes              *string   `json:"notes" validate:"omitempty,max=1000"`
	Priority           *string   `json:"priority" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
}

type UpdateItemRequest struct {
	Name               string  `json:"name" validate:"required,max=200"`
	PlannedAmountCents int64   `json:"planned_amount_cents" validate:"gte=0"`
	ActualAmountCents  int64   `json:"actual_amount_cents" validate:"gte=0"`
	IsPaid             bool    `json:"is_paid"`
	Notes              *string `json:"notes" validate:"omitempty,max=1000"`
	Priority           *string `json:"priority" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
}

type CreateItemResponse struct {
	ID uuid.UUID `json:"id"`
}

// Create добавляет ручную строку в план месяца.
func (h *ItemHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	itemID, err := h.Planning.AddManualItem(c.Request().Context(), userID, planning.NewItem{
		MonthPlanID:        req.MonthPlanID,
		CategoryID:         req.CategoryID,
		Name:               strings.TrimSpace(req.Name),
		PlannedAmountCents: req.PlannedAmountCents,
		ActualAmountCents:  req.ActualAmountCents,
		IsPaid:             req.IsPaid,
		Notes:              normalizeOptional(req.Notes),
		Priority:           toPriority(req.Priority),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "invalid item")
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "plan not found")
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "item already exists")
		default:
			return serverError(c)
		}
	}

	if h.Hub != nil {
		h.Hub.PublishItemChanged(userID, notifications.EventItemCreated, itemID)
	}

	return c.JSON(http.StatusCreated, CreateItemResponse{ID: itemID})
}

// Update изменяет строку плана.
func (h *ItemHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid item id")
	}

	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	item, err := h.Planning.UpdateItem(c.Request().Context(), userID, itemID, planning.ItemUpdate{
		Name:               strings.TrimSpace(req.Name),
		PlannedAmountCents: req.PlannedAmountCents,
		ActualAmountCents:  req.ActualAmountCents,
		IsPaid:             req.IsPaid,
		Notes:              normalizeOptional(req.Notes),
		Priority:           toPriority(req.Priority),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "invalid item")
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "item not found")
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "item already exists")
		default:
			return serverError(c)
		}
	}

	if h.Hub != nil {
		h.Hub.PublishItemChanged(userID, notifications.EventItemUpdated, item.ID)
	}

	return c.JSON(http.StatusOK, item)
}

// Delete удаляет строку плана.
func (h *ItemHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid item id")
	}

	if err := h.Planning.DeleteItem(c.Request().Context(), userID, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "item not found")
		}
		return serverError(c)
	}

	if h.Hub != nil {
		h.Hub.PublishItemChanged(userID, notifications.EventItemDeleted, itemID)
	}

	return c.NoContent(http.StatusNoContent)
}

func toPriority(value *string) *models.Priority {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}

	priority := models.Priority(trimmed)
	return &priority
}
