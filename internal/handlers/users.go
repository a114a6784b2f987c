package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/auth"
	"github.com/vishnu-krishnan/expenze/internal/email"
	"github.com/vishnu-krishnan/expenze/internal/models"
	"github.com/vishnu-krishnan/expenze/internal/repository"
	"github.com/vishnu-krishnan/expenze/internal/settings"
)

type UserHandler struct {
	Users        *repository.UserRepository
	EmailChanges *repository.EmailChangeRepository
	Settings     *settings.Service
	Mailer       *email.Mailer
}

// NewUserHandler создает обработчик профиля.
func NewUserHandler(users *repository.UserRepository, emailChanges *repository.EmailChangeRepository, settingsService *settings.Service, mailer *email.Mailer) *UserHandler {
	return &UserHandler{
		Users:        users,
		EmailChanges: emailChanges,
		Settings:     settingsService,
		Mailer:       mailer,
	}
}

type UpdateProfileRequest struct {
	Username           string  `json:"username" validate:"required,min=3,max=50"`
	Phone              *string `json:"phone" validate:"omitempty,max=20"`
	DefaultBudgetCents int64   `json:"default_budget_cents" validate:"gte=0"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type RequestEmailChangeRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
}

type VerifyEmailChangeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type EmailChangePendingResponse struct {
	NewEmail       string    `json:"new_email"`
	ExpiresAt      time.Time `json:"expires_at"`
	DeliveryStatus string    `json:"delivery_status"`
}

// GetProfile возвращает профиль текущего пользователя.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, UserResponse{User: toAuthUser(user)})
}

// UpdateProfile обновляет профиль текущего пользователя.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	user, err := h.Users.UpdateProfile(c.Request().Context(), userID, strings.TrimSpace(req.Username), normalizeOptional(req.Phone), req.DefaultBudgetCents)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "user not found")
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "username already taken")
		default:
			return serverError(c)
		}
	}

	return c.JSON(http.StatusOK, UserResponse{User: toAuthUser(user)})
}

// ChangePassword меняет пароль после проверки текущего.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	if err := auth.ComparePassword(user.PasswordHash, strings.TrimSpace(req.CurrentPassword)); err != nil {
		return unauthorized(c)
	}

	passwordHash, err := auth.HashPassword(strings.TrimSpace(req.NewPassword))
	if err != nil {
		return serverError(c)
	}

	if err := h.Users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// RequestEmailChange начинает смену email: отправляет OTP на новый адрес.
func (h *UserHandler) RequestEmailChange(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req RequestEmailChangeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()
	newEmail := strings.ToLower(strings.TrimSpace(req.NewEmail))

	if taken, err := h.Users.ExistsByEmail(ctx, newEmail); err != nil {
		return serverError(c)
	} else if taken {
		return conflict(c, "email already registered")
	}

	code, err := auth.NewOTPCode()
	if err != nil {
		return serverError(c)
	}

	timeoutMinutes := h.Settings.OTPTimeoutMinutes(ctx)

	request, err := h.EmailChanges.Upsert(ctx, models.EmailChangeRequest{
		UserID:    userID,
		NewEmail:  newEmail,
		OTPCode:   code,
		ExpiresAt: time.Now().Add(time.Duration(timeoutMinutes) * time.Minute),
	})
	if err != nil {
		return serverError(c)
	}

	status := deliveryStatusSkipped
	if h.Mailer != nil && h.Mailer.Configured() {
		if err := h.Mailer.SendEmailChangeOTP(newEmail, code, timeoutMinutes); err != nil {
			status = deliveryStatusFailed
		} else {
			status = deliveryStatusSent
		}
	}

	return c.JSON(http.StatusAccepted, EmailChangePendingResponse{
		NewEmail:       request.NewEmail,
		ExpiresAt:      request.ExpiresAt,
		DeliveryStatus: status,
	})
}

// VerifyEmailChange подтверждает смену email кодом.
func (h *UserHandler) VerifyEmailChange(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req VerifyEmailChangeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	request, err := h.EmailChanges.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "email change request not found")
		}
		return serverError(c)
	}

	if time.Now().After(request.ExpiresAt) {
		return badRequest(c, "verification code expired")
	}

	if !auth.CompareOTP(request.OTPCode, req.Code) {
		return badRequest(c, "invalid verification code")
	}

	user, err := h.Users.UpdateEmail(ctx, userID, request.NewEmail)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "email already registered")
		}
		return serverError(c)
	}

	if err := h.EmailChanges.Delete(ctx, userID); err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, UserResponse{User: toAuthUser(user)})
}
