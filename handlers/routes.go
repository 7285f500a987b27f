package handlers

import (
	"errors"
	"time"

	"rover-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Handlers - dependencies shared by every route
type Handlers struct {
	Sim     *services.Simulator
	Events  *services.EventLog
	Hub     *Hub
	Layouts *services.LayoutGenerator
	Logger  *zap.Logger
}

// NewApp builds the Fiber app with middleware and every route registered
func NewApp(h *Handlers, allowOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Rover simulation server is running.")
	})

	RegisterRoutes(app, h)
	return app
}

// RegisterRoutes mounts the API and websocket routes on app
func RegisterRoutes(app *fiber.App, h *Handlers) {
	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)

	// stateless search over a posted layout
	api.Post("/pathfinding", h.HandlePathfinding)

	sim := api.Group("/sim")
	sim.Get("/state", h.HandleGetState)
	sim.Post("/start", h.HandleStart)
	sim.Post("/pause", h.HandlePause)
	sim.Post("/stop", h.HandleStop)
	sim.Post("/edit-mode", h.HandleEditMode)
	sim.Post("/pointer", h.HandlePointer)
	sim.Post("/resize", h.HandleResize)
	sim.Post("/command", h.HandleCommand)
	sim.Get("/preview", h.HandlePreview)
	sim.Get("/layout", h.HandleGetLayout)
	sim.Put("/layout", h.HandleReplaceLayout)
	sim.Post("/layout/random", h.HandleRandomLayout)
	sim.Put("/obstacles/:id", h.HandleMoveObstacle)

	logsAPI := api.Group("/logs")
	logsAPI.Get("/recent", h.HandleGetRecentLogs)
	logsAPI.Get("/range", h.HandleGetLogsByTimeRange)
	logsAPI.Get("/type", h.HandleGetLogsByEventType)
	logsAPI.Get("/run/:id", h.HandleGetLogsByRun)
	logsAPI.Get("/stats", h.HandleGetLogStats)

	app.Use("/websocket", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/websocket/viewer", websocket.New(h.HandleViewerWebSocket))
}

// HandleHealth - liveness plus a little state
func (h *Handlers) HandleHealth(c *fiber.Ctx) error {
	frame := h.Sim.Snapshot()
	return c.JSON(fiber.Map{
		"status":  "OK",
		"clients": h.Hub.ClientCount(),
		"state":   frame.State,
		"frame":   frame.Frame,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// errorStatus maps service errors onto HTTP codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrEditModeDisabled), errors.Is(err, services.ErrNoDrag):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrObstacleNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidLayout),
		errors.Is(err, services.ErrInvalidCanvas),
		errors.Is(err, services.ErrUnknownCommand):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNoDatabase):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
