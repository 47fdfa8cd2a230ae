package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"fitjournal/internal/config"
	"fitjournal/internal/delivery/http/handler"
)

type Router struct {
	app            *fiber.App
	config         *config.Config
	healthHandler  *handler.HealthHandler
	oauthHandler   *handler.OAuthHandler
	webhookHandler *handler.WebhookHandler
	whoopHandler   *handler.WhoopHandler
}

func NewRouter(
	cfg *config.Config,
	healthHandler *handler.HealthHandler,
	oauthHandler *handler.OAuthHandler,
	webhookHandler *handler.WebhookHandler,
	whoopHandler *handler.WhoopHandler,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: customErrorHandler,
	})

	return &Router{
		app:            app,
		config:         cfg,
		healthHandler:  healthHandler,
		oauthHandler:   oauthHandler,
		webhookHandler: webhookHandler,
		whoopHandler:   whoopHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-User-ID",
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	// Health check route
	r.app.Get("/health", r.healthHandler.Health)

	// OAuth callback route (must be at root level for the provider redirect)
	r.app.Get("/redirect/whoop", r.oauthHandler.Callback)

	// Webhook routes (at root level for external callbacks)
	r.app.Post("/webhook/whoop", r.webhookHandler.WhoopCallback)

	// API v1 routes
	api := r.app.Group("/api/v1")
	{
		whoop := api.Group("/whoop")
		{
			whoop.Get("/authorize", r.oauthHandler.Authorize)
			whoop.Delete("/connection", r.oauthHandler.Disconnect)
			whoop.Post("/sync", r.whoopHandler.Sync)
			whoop.Get("/recovery/latest", r.whoopHandler.LatestRecovery)

			sessions := whoop.Group("/sessions")
			{
				sessions.Post("/auto-create", r.whoopHandler.AutoCreate)
				sessions.Get("/:id/matches", r.whoopHandler.Matches)
				sessions.Post("/:id/apply", r.whoopHandler.Apply)
			}
		}
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
		"error": fiber.Map{
			"code":    code,
			"message": err.Error(),
		},
	})
}
