package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/threadline/internal/config"
	"github.com/example/threadline/internal/handlers"
	"github.com/example/threadline/internal/middleware"
	"github.com/example/threadline/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	processor := services.NewCentimeService(cfg.CentimeBaseURL, cfg.CentimeSecretKey)
	mailer := services.NewMailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)

	cartService := services.NewCartService(db)
	checkoutService := services.NewCheckoutService(db)
	paymentService := services.NewPaymentService(db, processor, mailer, cfg.Currency)
	refundService := services.NewRefundService(db)

	authHandler := handlers.NewAuthHandler(db, cfg)
	itemHandler := handlers.NewItemHandler(db)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	refundHandler := handlers.NewRefundHandler(refundService)
	profileHandler := handlers.NewProfileHandler(db)
	adminHandler := handlers.NewAdminHandler(db, refundService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Catalog
	items := api.Group("/items")
	items.Get("/", itemHandler.ListItems)
	items.Get("/:slug", itemHandler.GetItem)

	// Refund intake is open to any requester with a valid reference code.
	api.Post("/refund", refundHandler.Request)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.Summary)
	cart.Post("/:slug/add", cartHandler.AddItem)
	cart.Post("/:slug/increase", cartHandler.AddItem)
	cart.Post("/:slug/decrease", cartHandler.DecreaseItem)
	cart.Post("/:slug/remove", cartHandler.RemoveItem)

	protected.Get("/checkout", checkoutHandler.Begin)
	protected.Post("/checkout", checkoutHandler.Submit)
	protected.Post("/checkout/coupon", checkoutHandler.ApplyCoupon)

	protected.Get("/payment/:method", paymentHandler.Page)
	protected.Post("/payment/:method", paymentHandler.Pay)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Get("/profile/orders", profileHandler.ListOrders)

	// Admin routes
	admin := protected.Group("/admin", middleware.RequireAdmin(db))
	admin.Post("/items", itemHandler.CreateItem)
	admin.Post("/coupons", adminHandler.CreateCoupon)
	admin.Get("/refunds", adminHandler.ListRefundRequests)
	admin.Post("/refunds/accept", adminHandler.AcceptRefunds)
}
