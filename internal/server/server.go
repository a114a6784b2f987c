package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/vishnu-krishnan/expenze/internal/ai"
	"github.com/vishnu-krishnan/expenze/internal/auth"
	"github.com/vishnu-krishnan/expenze/internal/config"
	"github.com/vishnu-krishnan/expenze/internal/email"
	"github.com/vishnu-krishnan/expenze/internal/handlers"
	"github.com/vishnu-krishnan/expenze/internal/notifications"
	"github.com/vishnu-krishnan/expenze/internal/planning"
	"github.com/vishnu-krishnan/expenze/internal/repository"
	"github.com/vishnu-krishnan/expenze/internal/settings"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	userRepo := repository.NewUserRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	emailChangeRepo := repository.NewEmailChangeRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	paymentRepo := repository.NewRegularPaymentRepository(db)
	planRepo := repository.NewPlanRepository(db)
	itemRepo := repository.NewItemRepository(db)
	salaryRepo := repository.NewSalaryRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	notificationHub := notifications.NewHub()
	settingsService := settings.NewService(settingsRepo, logger)
	mailer := email.NewMailer(cfg.Email)
	planningService := planning.NewService(planRepo, itemRepo, paymentRepo, categoryRepo, salaryRepo, logger)

	aiClient := ai.NewGroqClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout, cfg.AI.MaxOutputTokens)
	aiService := ai.NewService(aiClient, logger)

	authHandler := handlers.NewAuthHandler(userRepo, verificationRepo, tokenRepo, tokenManager, settingsService, mailer)
	userHandler := handlers.NewUserHandler(userRepo, emailChangeRepo, settingsService, mailer)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo)
	templateHandler := handlers.NewTemplateHandler(templateRepo, categoryRepo)
	paymentHandler := handlers.NewRegularPaymentHandler(paymentRepo, categoryRepo)
	planHandler := handlers.NewPlanHandler(planningService, notificationHub)
	itemHandler := handlers.NewItemHandler(planningService, notificationHub)
	statsHandler := handlers.NewStatsHandler(planningService)
	salaryHandler := handlers.NewSalaryHandler(planningService, notificationHub)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo)
	adminHandler := handlers.NewAdminHandler(userRepo, tokenRepo, settingsRepo)
	aiHandler := handlers.NewAIHandler(aiService)
	notificationHandler := handlers.NewNotificationHandler(notificationHub)

	registerRoutes(
		e,
		authHandler,
		userHandler,
		categoryHandler,
		templateHandler,
		paymentHandler,
		planHandler,
		itemHandler,
		statsHandler,
		salaryHandler,
		settingsHandler,
		adminHandler,
		aiHandler,
		notificationHandler,
		auth.JWTMiddleware(tokenManager),
		auth.AdminMiddleware(),
		authRateLimiter(cfg.Auth),
		aiRateLimiter(cfg.AI),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func authRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}

func aiRateLimiter(cfg config.AIConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
