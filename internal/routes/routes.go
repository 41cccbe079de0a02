package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/kasira/internal/config"
	"github.com/example/kasira/internal/handlers"
	"github.com/example/kasira/internal/middleware"
	"github.com/example/kasira/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	xenditService := services.NewXenditService(cfg)
	orderService := services.NewOrderService(db, xenditService, telegramService, log)

	cartStore := handlers.NewCartStore()

	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db, cartStore, orderService)
	orderHandler := handlers.NewOrderHandler(orderService, cartStore)
	webhookHandler := handlers.NewWebhookHandler(orderService, log)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Catalog routes
	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Post("/", catalogHandler.CreateCategory)
	categories.Put("/:id", catalogHandler.UpdateCategory)
	categories.Delete("/:id", catalogHandler.DeleteCategory)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Post("/", productHandler.CreateProduct)
	products.Get("/:id", productHandler.GetProduct)
	products.Put("/:id", productHandler.UpdateProduct)
	products.Delete("/:id", productHandler.DeleteProduct)

	// Provider-facing webhook; authenticated by the shared callback
	// token, not by JWT.
	app.Post("/payments/webhook",
		middleware.CallbackAuthMiddleware(cfg.XenditCallbackToken),
		webhookHandler.HandlePaymentEvent)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart/items", cartHandler.AddItem)
	protected.Delete("/cart/items/:productId", cartHandler.RemoveItem)
	protected.Delete("/cart", cartHandler.ClearCart)
	protected.Post("/cart/quote", orderHandler.QuoteCart)

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Post("/orders/:id/payment-request", orderHandler.RequestPaymentCode)
	protected.Get("/orders/:id/payment-status", orderHandler.CheckPaymentStatus)
	protected.Post("/orders/:id/simulate-payment", orderHandler.SimulatePayment)
	protected.Post("/orders/:id/finish", orderHandler.FinishOrder)
}
