package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/juju/errors"
	"github.com/rs/zerolog"

	_ "github.com/wichananm65/person-api/docs"
	"github.com/wichananm65/person-api/internal/config"
	"github.com/wichananm65/person-api/internal/metrics"
	"github.com/wichananm65/person-api/internal/middleware"
	"github.com/wichananm65/person-api/internal/person"
)

// SwaggerPath serves the UI at SwaggerPath/index.html and the document at
// SwaggerPath/doc.json.
const SwaggerPath = "/swagger"

func newApp(cfg config.Config, log zerolog.Logger, recorder *metrics.Recorder, personHandler *person.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "person-api",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(log))
	app.Use(recover.New())
	setupCORS(app, cfg.CORSOrigins)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get(metrics.HandlerPath, recorder.Handler())
	app.Get(SwaggerPath+"/*", swagger.New(swagger.Config{Title: "person-api Swagger UI"}))

	personHandler.RegisterRoutes(app)

	return app
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE",
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.RequestIDHeader,
	}))
}

// errorHandler keeps fiber's own errors (404 for unknown routes, 405, body
// limits) in the same {"message": ...} shape the handlers use.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}
