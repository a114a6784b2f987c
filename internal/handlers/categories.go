package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/auth"
	"github.com/vishnu-krishnan/expenze/internal/models"
	"github.com/vishnu-krishnan/expenze/internal/repository"
)

type CategoryHandler struct {
	Categories *repository.CategoryRepository
}

// NewCategoryHandler создает обработчик категорий.
func NewCategoryHandler(categories *repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

type CreateCategoryRequest struct {
	Name      string  `json:"name" validate:"required,max=100"`
	Icon      *string `json:"icon" validate:"omitempty,max=50"`
	SortOrder int     `json:"sort_order" validate:"gte=0"`
}

type UpdateCategoryRequest struct {
	Name      string  `json:"name" validate:"required,max=100"`
	Icon      *string `json:"icon" validate:"omitempty,max=50"`
	SortOrder int     `json:"sort_order" validate:"gte=0"`
	IsActive  bool    `json:"is_active"`
}

type CategoryListResponse struct {
	Categories []models.Category `json:"categories"`
}

// List возвращает категории пользователя.
func (h *CategoryHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	categories, err := h.Categories.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}
	if categories == nil {
		categories = []models.Category{}
	}

	return c.JSON(http.StatusOK, CategoryListResponse{Categories: categories})
}

// Create добавляет категорию.
func (h *CategoryHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	category, err := h.Categories.Create(c.Request().Context(), userID, strings.TrimSpace(req.Name), normalizeOptional(req.Icon), req.SortOrder)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, category)
}

// Update изменяет категорию.
func (h *CategoryHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}

	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	category, err := h.Categories.Update(c.Request().Context(), userID, categoryID, strings.TrimSpace(req.Name), normalizeOptional(req.Icon), req.SortOrder, req.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "category not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, category)
}

// Delete удаляет категорию. Категория, занятая платежами или строками
// планов, не удаляется.
func (h *CategoryHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}

	if err := h.Categories.Delete(c.Request().Context(), userID, categoryID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "category not found")
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "category is in use")
		default:
			return serverError(c)
		}
	}

	return c.NoContent(http.StatusNoContent)
}
