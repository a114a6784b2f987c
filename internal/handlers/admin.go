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

type AdminHandler struct {
	Users    *repository.UserRepository
	Tokens   *repository.RefreshTokenRepository
	Settings *repository.SettingsRepository
}

// NewAdminHandler создает обработчик административных операций.
func NewAdminHandler(users *repository.UserRepository, tokens *repository.RefreshTokenRepository, settingsRepo *repository.SettingsRepository) *AdminHandler {
	return &AdminHandler{Users: users, Tokens: tokens, Settings: settingsRepo}
}

type AdminUserListResponse struct {
	Users []AuthUser `json:"users"`
}

type UpdateUserRequest struct {
	Role       string `json:"role" validate:"required,oneof=user admin"`
	IsVerified *bool  `json:"is_verified"`
}

type SettingListResponse struct {
	Settings []models.SystemSetting `json:"settings"`
}

type UpdateSettingRequest struct {
	Value string `json:"value" validate:"required,max=1000"`
}

// ListUsers возвращает всех пользователей.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	response := make([]AuthUser, 0, len(users))
	for _, user := range users {
		response = append(response, toAuthUser(user))
	}

	return c.JSON(http.StatusOK, AdminUserListResponse{Users: response})
}

// UpdateUser меняет роль и флаг подтверждения пользователя.
// Администратор не может понизить сам себя.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	adminID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	role := models.Role(strings.TrimSpace(req.Role))
	if targetID == adminID && role != models.RoleAdmin {
		return badRequest(c, "cannot demote yourself")
	}

	user, err := h.Users.UpdateRoleAndVerified(c.Request().Context(), targetID, role, req.IsVerified)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, UserResponse{User: toAuthUser(user)})
}

// DeleteUser удаляет пользователя и отзывает его сессии.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	adminID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	if targetID == adminID {
		return badRequest(c, "cannot delete yourself")
	}

	ctx := c.Request().Context()

	if err := h.Tokens.RevokeAllForUser(ctx, targetID); err != nil {
		return serverError(c)
	}

	if err := h.Users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListSettings возвращает все системные настройки.
func (h *AdminHandler) ListSettings(c echo.Context) error {
	settings, err := h.Settings.List(c.Request().Context())
	if err != nil {
		return serverError(c)
	}
	if settings == nil {
		settings = []models.SystemSetting{}
	}

	return c.JSON(http.StatusOK, SettingListResponse{Settings: settings})
}

// UpdateSetting меняет значение системной настройки.
func (h *AdminHandler) UpdateSetting(c echo.Context) error {
	key := c.Param("key")

	var req UpdateSettingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	setting, err := h.Settings.Update(c.Request().Context(), key, strings.TrimSpace(req.Value))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "setting not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, setting)
}
