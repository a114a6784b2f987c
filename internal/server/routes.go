package server

import (
	"github.com/labstack/echo/v4"

	"github.com/vishnu-krishnan/expenze/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	categoryHandler *handlers.CategoryHandler,
	templateHandler *handlers.TemplateHandler,
	paymentHandler *handlers.RegularPaymentHandler,
	planHandler *handlers.PlanHandler,
	itemHandler *handlers.ItemHandler,
	statsHandler *handlers.StatsHandler,
	salaryHandler *handlers.SalaryHandler,
	settingsHandler *handlers.SettingsHandler,
	adminHandler *handlers.AdminHandler,
	aiHandler *handlers.AIHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	adminMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	aiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")

	authGroup := api.Group("/auth", authRateLimiter)
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/verify-otp", authHandler.VerifyOTP)
	authGroup.POST("/resend-otp", authHandler.ResendOTP)
	authGroup.GET("/registration-status", authHandler.RegistrationStatus)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	profile := api.Group("/profile", authMiddleware)
	profile.GET("", userHandler.GetProfile)
	profile.PUT("", userHandler.UpdateProfile)
	profile.PUT("/password", userHandler.ChangePassword)
	profile.POST("/email", userHandler.RequestEmailChange)
	profile.POST("/email/verify", userHandler.VerifyEmailChange)

	categories := api.Group("/categories", authMiddleware)
	categories.GET("", categoryHandler.List)
	categories.POST("", categoryHandler.Create)
	categories.PUT("/:id", categoryHandler.Update)
	categories.DELETE("/:id", categoryHandler.Delete)

	templates := api.Group("/category-templates", authMiddleware)
	templates.GET("", templateHandler.List)
	templates.POST("", templateHandler.Create)
	templates.POST("/initialize", templateHandler.InitializeDefaults)
	templates.PUT("/:id", templateHandler.Update)
	templates.DELETE("/:id", templateHandler.Delete)

	payments := api.Group("/regular-payments", authMiddleware)
	payments.GET("", paymentHandler.List)
	payments.POST("", paymentHandler.Create)
	payments.PUT("/:id", paymentHandler.Update)
	payments.DELETE("/:id", paymentHandler.Delete)

	month := api.Group("/month", authMiddleware)
	month.GET("/:monthKey", planHandler.GetMonth)
	month.POST("/:monthKey/generate", planHandler.Generate)
	month.GET("/:monthKey/export", planHandler.Export)

	items := api.Group("/items", authMiddleware)
	items.POST("", itemHandler.Create)
	items.PUT("/:id", itemHandler.Update)
	items.DELETE("/:id", itemHandler.Delete)

	stats := api.Group("/stats", authMiddleware)
	stats.GET("/summary/last6", statsHandler.LastSix)
	stats.GET("/category-expenses/:monthKey", statsHandler.CategoryExpenses)

	salary := api.Group("/salary", authMiddleware)
	salary.GET("/:monthKey", salaryHandler.Get)
	salary.PUT("/:monthKey", salaryHandler.Save)

	api.GET("/settings/:key", settingsHandler.GetPublic)

	notificationsGroup := api.Group("/notifications", authMiddleware)
	notificationsGroup.GET("/stream", notificationHandler.Stream)

	admin := api.Group("/admin", authMiddleware, adminMiddleware)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id", adminHandler.UpdateUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/settings", adminHandler.ListSettings)
	admin.PUT("/settings/:key", adminHandler.UpdateSetting)

	aiGroup := api.Group("/ai", authMiddleware, aiRateLimiter)
	aiGroup.POST("/parse-sms", aiHandler.ParseSMS)
}
