package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/auth"
	"github.com/vishnu-krishnan/expenze/internal/email"
	"github.com/vishnu-krishnan/expenze/internal/models"
	"github.com/vishnu-krishnan/expenze/internal/repository"
	"github.com/vishnu-krishnan/expenze/internal/settings"
)

const (
	deliveryStatusSent    = "sent"
	deliveryStatusFailed  = "failed"
	deliveryStatusSkipped = "skipped"
)

type AuthHandler struct {
	Users         *repository.UserRepository
	Verifications *repository.VerificationRepository
	Tokens        *repository.RefreshTokenRepository
	TokenManager  *auth.TokenManager
	Settings      *settings.Service
	Mailer        *email.Mailer
}

// NewAuthHandler создает обработчик авторизации.
func NewAuthHandler(users *repository.UserRepository, verifications *repository.VerificationRepository, tokens *repository.RefreshTokenRepository, manager *auth.TokenManager, settingsService *settings.Service, mailer *email.Mailer) *AuthHandler {
	return &AuthHandler{
		Users:         users,
		Verifications: verifications,
		Tokens:        tokens,
		TokenManager:  manager,
		Settings:      settingsService,
		Mailer:        mailer,
	}
}

type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthUser struct {
	ID         uuid.UUID   `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	Phone      *string     `json:"phone,omitempty"`
	Role       models.Role `json:"role"`
	IsVerified bool        `json:"is_verified"`
}

type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         AuthUser `json:"user"`
}

type UserResponse struct {
	User AuthUser `json:"user"`
}

type RegistrationPendingResponse struct {
	Email          string    `json:"email"`
	ExpiresAt      time.Time `json:"expires_at"`
	DeliveryStatus string    `json:"delivery_status"`
}

type RegistrationStatusResponse struct {
	RegistrationEnabled bool   `json:"registration_enabled"`
	OTPTimeoutMinutes   int    `json:"otp_timeout_minutes"`
	SupportEmail        string `json:"support_email"`
}

// Register начинает регистрацию: сохраняет заявку и отправляет OTP на email.
// Пользователь создается только после подтверждения кода.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	if !h.Settings.RegistrationEnabled(ctx) {
		return forbidden(c)
	}

	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	phone := normalizeOptional(req.Phone)

	if taken, err := h.Users.ExistsByEmail(ctx, emailAddr); err != nil {
		return serverError(c)
	} else if taken {
		return conflict(c, "email already registered")
	}

	if taken, err := h.Users.ExistsByUsername(ctx, username); err != nil {
		return serverError(c)
	} else if taken {
		return conflict(c, "username already taken")
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return serverError(c)
	}

	// Попутная уборка: просроченные заявки освобождают email для новой попытки.
	_, _ = h.Verifications.DeleteExpired(ctx)

	code, err := auth.NewOTPCode()
	if err != nil {
		return serverError(c)
	}

	timeoutMinutes := h.Settings.OTPTimeoutMinutes(ctx)

	verification, err := h.Verifications.Upsert(ctx, models.UserVerification{
		Email:          emailAddr,
		Username:       username,
		PasswordHash:   passwordHash,
		Phone:          phone,
		OTPCode:        code,
		ExpiresAt:      time.Now().Add(time.Duration(timeoutMinutes) * time.Minute),
		DeliveryStatus: "pending",
	})
	if err != nil {
		return serverError(c)
	}

	status := h.deliverOTP(ctx, verification.ID, emailAddr, code, timeoutMinutes)

	return c.JSON(http.StatusAccepted, RegistrationPendingResponse{
		Email:          emailAddr,
		ExpiresAt:      verification.ExpiresAt,
		DeliveryStatus: status,
	})
}

// VerifyOTP подтверждает регистрацию кодом и создает пользователя.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	verification, err := h.Verifications.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "registration not found")
		}
		return serverError(c)
	}

	if time.Now().After(verification.ExpiresAt) {
		return badRequest(c, "verification code expired")
	}

	if !auth.CompareOTP(verification.OTPCode, req.Code) {
		return badRequest(c, "invalid verification code")
	}

	user, err := h.Users.Create(ctx, verification.Username, verification.Email, verification.PasswordHash, verification.Phone)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "user already exists")
		}
		return serverError(c)
	}

	if err := h.Verifications.Delete(ctx, verification.ID); err != nil {
		return serverError(c)
	}

	response, err := h.issueTokens(ctx, user)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, response)
}

// ResendOTP выдает и отправляет новый код для незавершенной регистрации.
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req ResendOTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	verification, err := h.Verifications.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "registration not found")
		}
		return serverError(c)
	}

	code, err := auth.NewOTPCode()
	if err != nil {
		return serverError(c)
	}

	timeoutMinutes := h.Settings.OTPTimeoutMinutes(ctx)
	expiresAt := time.Now().Add(time.Duration(timeoutMinutes) * time.Minute)

	if err := h.Verifications.UpdateOTP(ctx, verification.ID, code, expiresAt); err != nil {
		return serverError(c)
	}

	status := h.deliverOTP(ctx, verification.ID, emailAddr, code, timeoutMinutes)

	return c.JSON(http.StatusAccepted, RegistrationPendingResponse{
		Email:          emailAddr,
		ExpiresAt:      expiresAt,
		DeliveryStatus: status,
	})
}

// RegistrationStatus возвращает публичные параметры регистрации.
func (h *AuthHandler) RegistrationStatus(c echo.Context) error {
	ctx := c.Request().Context()

	return c.JSON(http.StatusOK, RegistrationStatusResponse{
		RegistrationEnabled: h.Settings.RegistrationEnabled(ctx),
		OTPTimeoutMinutes:   h.Settings.OTPTimeoutMinutes(ctx),
		SupportEmail:        h.Settings.SupportEmail(ctx),
	})
}

// Login выполняет вход по email или имени пользователя.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()
	login := strings.TrimSpace(req.Login)
	password := strings.TrimSpace(req.Password)

	var user models.User
	var err error
	if strings.Contains(login, "@") {
		user, err = h.Users.GetByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = h.Users.GetByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	if err = auth.ComparePassword(user.PasswordHash, password); err != nil {
		return unauthorized(c)
	}

	response, err := h.issueTokens(ctx, user)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, response)
}

// Refresh обновляет токены по refresh-токену.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	claims, err := h.TokenManager.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return unauthorized(c)
	}

	refreshID, err := uuid.Parse(claims.ID)
	if err != nil {
		return unauthorized(c)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return unauthorized(c)
	}

	ctx := c.Request().Context()

	storedToken, err := h.Tokens.GetByID(ctx, refreshID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	if storedToken.RevokedAt != nil || time.Now().After(storedToken.ExpiresAt) {
		return unauthorized(c)
	}

	if storedToken.UserID != userID {
		return unauthorized(c)
	}

	if !auth.CompareTokenHash(storedToken.TokenHash, req.RefreshToken) {
		return unauthorized(c)
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	newRefreshID := uuid.New()
	tokenPair, err := h.TokenManager.NewTokenPair(userID, user.Role, newRefreshID)
	if err != nil {
		return serverError(c)
	}

	newToken := models.RefreshToken{
		ID:        newRefreshID,
		UserID:    userID,
		TokenHash: auth.HashToken(tokenPair.RefreshToken),
		ExpiresAt: tokenPair.RefreshExpiresAt,
	}

	if err := h.Tokens.Rotate(ctx, storedToken.ID, newToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		User:         toAuthUser(user),
	})
}

// Logout отзывает refresh-токен.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	claims, err := h.TokenManager.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return unauthorized(c)
	}

	refreshID, err := uuid.Parse(claims.ID)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.Tokens.Revoke(c.Request().Context(), refreshID, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.NoContent(http.StatusNoContent)
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// Me возвращает данные текущего пользователя.
func (h *AuthHandler) Me(c echo.Context) error {
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

// deliverOTP отправляет код и фиксирует результат доставки. Сбой почты
// не прерывает регистрацию.
func (h *AuthHandler) deliverOTP(ctx context.Context, verificationID uuid.UUID, to, code string, expiryMinutes int) string {
	if h.Mailer == nil || !h.Mailer.Configured() {
		_ = h.Verifications.MarkDelivery(ctx, verificationID, deliveryStatusSkipped, nil)
		return deliveryStatusSkipped
	}

	if err := h.Mailer.SendOTP(to, code, expiryMinutes); err != nil {
		message := err.Error()
		_ = h.Verifications.MarkDelivery(ctx, verificationID, deliveryStatusFailed, &message)
		return deliveryStatusFailed
	}

	_ = h.Verifications.MarkDelivery(ctx, verificationID, deliveryStatusSent, nil)
	return deliveryStatusSent
}

func (h *AuthHandler) issueTokens(ctx context.Context, user models.User) (AuthResponse, error) {
	refreshID := uuid.New()
	pair, err := h.TokenManager.NewTokenPair(user.ID, user.Role, refreshID)
	if err != nil {
		return AuthResponse{}, err
	}

	refreshToken := models.RefreshToken{
		ID:        refreshID,
		UserID:    user.ID,
		TokenHash: auth.HashToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
	}

	if err := h.Tokens.Create(ctx, refreshToken); err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toAuthUser(user),
	}, nil
}

func toAuthUser(user models.User) AuthUser {
	return AuthUser{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Phone:      user.Phone,
		Role:       user.Role,
		IsVerified: user.IsVerified,
	}
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
