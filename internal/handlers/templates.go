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

type TemplateHandler struct {
	Templates  *repository.TemplateRepository
	Categories *repository.CategoryRepository
}

// NewTemplateHandler создает обработчик шаблонов подкатегорий.
func NewTemplateHandler(templates *repository.TemplateRepository, categories *repository.CategoryRepository) *TemplateHandler {
	return &TemplateHandler{Templates: templates, Categories: categories}
}

type CreateTemplateRequest struct {
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
	SubOption  string    `json:"sub_option" validate:"required,max=100"`
	SortOrder  int       `json:"sort_order" validate:"gte=0"`
}

type UpdateTemplateRequest struct {
	SubOption string `json:"sub_option" validate:"required,max=100"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
	IsActive  bool   `json:"is_active"`
}

type TemplateGroup struct {
	CategoryID   uuid.UUID                 `json:"category_id"`
	CategoryName string                    `json:"category_name"`
	Templates    []models.CategoryTemplate `json:"templates"`
}

type TemplateListResponse struct {
	Groups []TemplateGroup `json:"groups"`
}

// List возвращает шаблоны пользователя, сгруппированные по категориям.
func (h *TemplateHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()

	templates, err := h.Templates.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	names, err := h.Categories.NamesByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	groups := make([]TemplateGroup, 0)
	index := make(map[uuid.UUID]int)

	for _, template := range templates {
		i, ok := index[template.CategoryID]
		if !ok {
			groups = append(groups, TemplateGroup{
				CategoryID:   template.CategoryID,
				CategoryName: names[template.CategoryID],
			})
			i = len(groups) - 1
			index[template.CategoryID] = i
		}
		groups[i].Templates = append(groups[i].Templates, template)
	}

	return c.JSON(http.StatusOK, TemplateListResponse{Groups: groups})
}

// Create добавляет шаблон в категорию пользователя.
func (h *TemplateHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	if _, err := h.Categories.GetByID(ctx, userID, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "category not found")
		}
		return serverError(c)
	}

	template, err := h.Templates.Create(ctx, userID, req.CategoryID, strings.TrimSpace(req.SubOption), req.SortOrder)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, template)
}

// Update изменяет шаблон.
func (h *TemplateHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid template id")
	}

	var req UpdateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	template, err := h.Templates.Update(c.Request().Context(), userID, templateID, strings.TrimSpace(req.SubOption), req.SortOrder, req.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "template not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, template)
}

type defaultTemplateSet struct {
	CategoryName string
	SubOptions   []string
}

// Стартовый набор подкатегорий; привязывается по имени категории.
var defaultTemplates = []defaultTemplateSet{
	{"Fuel", []string{"Bike", "Car", "Scooter"}},
	{"Groceries", []string{"Weekly", "Monthly", "Vegetables", "Fruits", "Meat"}},
	{"Utilities", []string{"Electricity", "Water", "Gas", "Internet", "Phone"}},
	{"Transport", []string{"Bus", "Train", "Auto", "Cab", "Metro"}},
	{"Food", []string{"Breakfast", "Lunch", "Dinner", "Snacks"}},
	{"Shopping", []string{"Clothes", "Electronics", "Home", "Personal Care"}},
	{"Healthcare", []string{"Medicine", "Doctor", "Lab Tests", "Pharmacy"}},
	{"Entertainment", []string{"Movies", "Dining Out", "Subscriptions", "Events"}},
}

type InitializeTemplatesResponse struct {
	Created int `json:"created"`
}

// InitializeDefaults заполняет шаблоны стартовым набором. Если шаблоны
// уже есть, повторный вызов ничего не меняет.
func (h *TemplateHandler) InitializeDefaults(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()

	existing, err := h.Templates.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}
	if len(existing) > 0 {
		return c.JSON(http.StatusOK, InitializeTemplatesResponse{Created: 0})
	}

	categories, err := h.Categories.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}
	if len(categories) == 0 {
		return badRequest(c, "no categories found, create categories first")
	}

	idsByName := make(map[string]uuid.UUID, len(categories))
	for _, category := range categories {
		if _, ok := idsByName[category.Name]; !ok {
			idsByName[category.Name] = category.ID
		}
	}

	created := 0
	for _, set := range defaultTemplates {
		categoryID, ok := idsByName[set.CategoryName]
		if !ok {
			continue
		}

		for order, subOption := range set.SubOptions {
			if _, err := h.Templates.Create(ctx, userID, categoryID, subOption, order); err != nil {
				return serverError(c)
			}
			created++
		}
	}

	return c.JSON(http.StatusOK, InitializeTemplatesResponse{Created: created})
}

// Delete удаляет шаблон.
func (h *TemplateHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid template id")
	}

	if err := h.Templates.Delete(c.Request().Context(), userID, templateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "template not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}
