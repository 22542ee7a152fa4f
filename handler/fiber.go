package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const requestIDKey = "requestid"

// NewApp builds the HTTP server exposing the same contract as Handle.
// withAccessLog adds fiber's request logger on stdout.
func NewApp(h *Handler, withAccessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:     correlationHeader,
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	if withAccessLog {
		app.Use(logger.New())
	}
	h.Register(app)
	return app
}

// Register mounts the routes on r.
func (h *Handler) Register(r fiber.Router) {
	r.Post("/ask", h.fiberAsk)
	r.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

func (h *Handler) fiberAsk(c *fiber.Ctx) error {
	corrID, _ := c.Locals(requestIDKey).(string)
	if corrID == "" {
		corrID = uuid.NewString()
		c.Set(correlationHeader, corrID)
	}
	status, payload := h.serve(c.UserContext(), corrID, c.Body())
	return c.Status(status).JSON(payload)
}
