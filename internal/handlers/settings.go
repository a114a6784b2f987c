package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/repository"
)

type SettingsHandler struct {
	Settings *repository.SettingsRepository
}

// NewSettingsHandler создает обработчик публичных настроек.
func NewSettingsHandler(settingsRepo *repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{Settings: settingsRepo}
}

type PublicSettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// GetPublic возвращает публичную настройку по ключу.
// Непубличные ключи наружу не отдаются.
func (h *SettingsHandler) GetPublic(c echo.Context) error {
	key := c.Param("key")

	setting, err := h.Settings.GetByKey(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "setting not found")
		}
		return serverError(c)
	}

	if !setting.IsPublic {
		return notFound(c, "setting not found")
	}

	return c.JSON(http.StatusOK, PublicSettingResponse{
		Key:   setting.Key,
		Value: setting.Value,
		Type:  setting.SettingType,
	})
}
