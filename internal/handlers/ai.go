package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/ai"
	"github.com/vishnu-krishnan/expenze/internal/auth"
)

type AIHandler struct {
	AI *ai.Service
}

// NewAIHandler создает обработчик AI-разбора SMS.
func NewAIHandler(aiService *ai.Service) *AIHandler {
	return &AIHandler{AI: aiService}
}

type ParseSMSRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

// ParseSMS извлекает расходы из текста банковских SMS.
func (h *AIHandler) ParseSMS(c echo.Context) error {
	if _, ok := auth.UserIDFromContext(c); !ok {
		return unauthorized(c)
	}

	var req ParseSMSRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	response, err := h.AI.ParseSMS(c.Request().Context(), req.Text)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, response)
}
