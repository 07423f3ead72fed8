// Package routes defines the API routing configuration.
// It wires repositories, services, and handlers, and applies the admin
// gate to every protected route.
package routes

import (
	"tavola/internal/config"
	"tavola/internal/handlers"
	"tavola/internal/middleware"
	"tavola/internal/repositories"
	"tavola/internal/services/auth"
	"tavola/internal/services/fees"
	"tavola/internal/services/menu"
	"tavola/internal/services/notification"
	"tavola/internal/services/openbanking"
	"tavola/internal/services/order"
	"tavola/internal/services/squareconnect"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, notifier notification.Publisher) {
	// Repositories
	menuRepo := repositories.NewMenuItemRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	clientRepo := repositories.NewClientAccountRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	adminRepo := repositories.NewAdminRepository(db)
	contactRepo := repositories.NewContactRepository(db)

	// Services
	feeCalc := fees.NewCalculator()
	authService := auth.NewService(adminRepo, config.MustGetEnv("JWT_SECRET"))
	menuService := menu.NewService(menuRepo, repositories.CacheService)
	orderService := order.NewService(orderRepo, menuRepo, feeCalc)

	openBankingService := openbanking.NewService(openbanking.Config{
		AuthURL:           config.GetEnv("TRUELAYER_AUTH_URL", "https://auth.truelayer.com"),
		APIURL:            config.GetEnv("TRUELAYER_API_URL", "https://api.truelayer.com"),
		HPPURL:            config.GetEnv("TRUELAYER_HPP_URL", "https://payment.truelayer.com/payments"),
		ClientID:          config.MustGetEnv("TRUELAYER_CLIENT_ID"),
		ClientSecret:      config.MustGetEnv("TRUELAYER_CLIENT_SECRET"),
		MerchantAccountID: config.MustGetEnv("TRUELAYER_MERCHANT_ACCOUNT_ID"),
		BeneficiaryName:   config.GetEnv("TRUELAYER_BENEFICIARY_NAME", "Tavola"),
		ReturnURI:         config.GetEnv("PAYMENT_RETURN_URI", "http://localhost:3000/payment/complete"),
	}, feeCalc, paymentRepo)

	squareService := squareconnect.NewService(squareconnect.Config{
		AppID:     config.MustGetEnv("SQUARE_APP_ID"),
		AppSecret: config.MustGetEnv("SQUARE_APP_SECRET"),
		BaseURL:   config.GetEnv("SQUARE_BASE_URL", "https://connect.squareup.com"),
	}, clientRepo)

	// Handlers
	menuHandler := handlers.NewMenuHandler(menuService)
	orderHandler := handlers.NewOrderHandler(orderService)
	openBankingHandler := handlers.NewOpenBankingHandler(openBankingService, orderService, notifier)
	squareHandler := handlers.NewSquareConnectHandler(squareService)
	adminHandler := handlers.NewAdminHandler(menuService, menuRepo, orderRepo, clientRepo, paymentRepo)
	authHandler := handlers.NewAuthHandler(authService)
	contactHandler := handlers.NewContactHandler(contactRepo, notifier)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints
	api.Get("/menu", menuHandler.GetMenu)
	api.Post("/orders", orderHandler.CreateOrder)
	api.Get("/orders/:id", orderHandler.GetOrder)
	api.Post("/contact", contactHandler.SubmitContact)

	// Payments
	api.Post("/openbanking/create-payment", openBankingHandler.CreatePayment)
	api.Post("/openbanking/webhook", openBankingHandler.Webhook)
	api.Post("/square/connect/onboard", squareHandler.Onboard)
	api.Get("/square/connect/callback", squareHandler.Callback)

	// Admin
	api.Post("/admin/login", authHandler.Login)

	admin := api.Group("/admin", authMiddleware.RequireAdmin)
	admin.Get("/menu-items", adminHandler.ListMenuItems)
	admin.Post("/menu-items", adminHandler.CreateMenuItem)
	admin.Get("/menu-items/:id", adminHandler.GetMenuItem)
	admin.Put("/menu-items/:id", adminHandler.UpdateMenuItem)
	admin.Delete("/menu-items/:id", adminHandler.DeleteMenuItem)
	admin.Get("/stats", adminHandler.Stats)
}
