package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/marksheet-go-api/internal/config"
	"github.com/noah-isme/marksheet-go-api/internal/handler"
	"github.com/noah-isme/marksheet-go-api/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler   *handler.StudentHandler
	ImportHandler    *handler.ImportHandler
	MarksheetHandler *handler.MarksheetHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students", jwtMiddleware)
		deps.StudentHandler.Register(students)

		if deps.MarksheetHandler != nil {
			deps.MarksheetHandler.RegisterStudentRoutes(students)
		}
	}

	if deps.MarksheetHandler != nil {
		marksheets := api.Group("/marksheets", jwtMiddleware)
		deps.MarksheetHandler.RegisterPreviewRoutes(marksheets)
	}

	if deps.ImportHandler != nil {
		imports := api.Group("/imports", jwtMiddleware,
			middleware.RequireRole("admin"),
			middleware.RateLimit("imports", cfg.ImportRateLimit, cfg.ImportRateWindow))
		deps.ImportHandler.Register(imports)
	}
}
