package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/todoplus/todoplus-backend/internal/config"
	"github.com/todoplus/todoplus-backend/internal/handlers"
	"github.com/todoplus/todoplus-backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	todoHandler *handlers.TodoHandler,
	billingHandler *handlers.BillingHandler,
	webhookHandler *handlers.WebhookHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Todos serve both signed-in users and anonymous visitors: the optional
	// auth layer attaches the session when a valid token is present and the
	// handlers fall back to the X-Client-ID header otherwise.
	todos := api.Group("/todos", middleware.OptionalAuth(cfg))
	todos.Get("/", todoHandler.List)
	todos.Post("/", todoHandler.Create)
	todos.Patch("/:id", todoHandler.Update)
	todos.Patch("/:id/toggle", todoHandler.Toggle)
	todos.Delete("/:id", todoHandler.Delete)

	// Billing requires a verified session; anonymous identities can never
	// reach checkout.
	billing := api.Group("/billing", middleware.JWTProtected(cfg))
	billing.Post("/checkout", billingHandler.Checkout)
	billing.Get("/subscription", billingHandler.Subscription)
	billing.Post("/subscription/cancel", billingHandler.Cancel)

	// Webhooks authenticate by Stripe signature, not JWT.
	webhooks := api.Group("/webhooks")
	webhooks.Post("/stripe", webhookHandler.HandleStripe)

	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Post("/subscriptions", billingHandler.AdminUpsertSubscription)
}
