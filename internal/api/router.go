package api

import (
	"context"
	"time"

	"frontdesk/internal/api/handlers"
	"frontdesk/internal/dto"
	"frontdesk/pkg/auth"
	"frontdesk/pkg/config"
	"frontdesk/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Pinger reports storage reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

func SetupRouter(
	authHandler *handlers.AuthHandler,
	helpRequestHandler *handlers.HelpRequestHandler,
	knowledgeHandler *handlers.KnowledgeHandler,
	jwtManager *auth.JWTManager,
	store Pinger,
	cfg *config.ServerConfig,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(dto.Fail(err.Error()))
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			appLogger.Error("Health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
			})
		}
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := app.Group("/api")

	// Auth routes (public)
	api.Post("/auth/login", authHandler.Login)

	// Mutations on behalf of the supervisor require a dashboard token;
	// escalation and all reads stay open to the agent.
	protected := middleware.AuthMiddleware(jwtManager, appLogger)

	requests := api.Group("/help-requests")
	requests.Post("", helpRequestHandler.Create)
	requests.Get("", helpRequestHandler.List)
	requests.Get("/stats", helpRequestHandler.Stats)
	requests.Post("/process-timeouts", protected, helpRequestHandler.ProcessTimeouts)
	requests.Get("/:id", helpRequestHandler.Get)
	requests.Post("/:id/respond", protected, helpRequestHandler.Respond)

	knowledge := api.Group("/knowledge-base")
	knowledge.Get("", knowledgeHandler.List)
	knowledge.Post("", protected, knowledgeHandler.Create)
	knowledge.Get("/stats", knowledgeHandler.Stats)
	knowledge.Get("/search", knowledgeHandler.Search)
	knowledge.Get("/:id", knowledgeHandler.Get)
	knowledge.Patch("/:id", protected, knowledgeHandler.Update)
	knowledge.Delete("/:id", protected, knowledgeHandler.Delete)

	return app
}
