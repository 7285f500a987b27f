package handlers

import (
	"strconv"

	"rover-backend/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HandleGetState - current frame snapshot
func (h *Handlers) HandleGetState(c *fiber.Ctx) error {
	return c.JSON(h.Sim.Snapshot())
}

func (h *Handlers) HandleStart(c *fiber.Ctx) error {
	return h.apply(c, models.CommandData{Action: models.ActionStart})
}

func (h *Handlers) HandlePause(c *fiber.Ctx) error {
	return h.apply(c, models.CommandData{Action: models.ActionPause})
}

func (h *Handlers) HandleStop(c *fiber.Ctx) error {
	return h.apply(c, models.CommandData{Action: models.ActionStop})
}

// HandleEditMode - body {"enabled": bool}
func (h *Handlers) HandleEditMode(c *fiber.Ctx) error {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	return h.apply(c, models.CommandData{Action: models.ActionEditMode, Enabled: req.Enabled})
}

// HandlePointer - body {"action": "pointer_down|pointer_move|pointer_up", "x", "y"}
func (h *Handlers) HandlePointer(c *fiber.Ctx) error {
	var cmd models.CommandData
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	switch cmd.Action {
	case models.ActionPointerDown, models.ActionPointerMove, models.ActionPointerUp:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action must be pointer_down, pointer_move or pointer_up"})
	}
	return h.apply(c, cmd)
}

// HandleResize - body {"width", "height"} in pixels
func (h *Handlers) HandleResize(c *fiber.Ctx) error {
	var cmd models.CommandData
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	cmd.Action = models.ActionResize
	return h.apply(c, cmd)
}

// HandleCommand - any CommandData, same as the websocket inbox
func (h *Handlers) HandleCommand(c *fiber.Ctx) error {
	var cmd models.CommandData
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	return h.apply(c, cmd)
}

func (h *Handlers) apply(c *fiber.Ctx, cmd models.CommandData) error {
	frame, err := h.Sim.Apply(cmd)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"state":   frame.State,
		"frame":   frame,
	})
}

// HandlePreview - best-effort route from the agent through the waypoints
func (h *Handlers) HandlePreview(c *fiber.Ctx) error {
	return c.JSON(h.Sim.Preview())
}

func (h *Handlers) HandleGetLayout(c *fiber.Ctx) error {
	return c.JSON(h.Sim.Layout())
}

// HandleReplaceLayout - body is a models.Layout
func (h *Handlers) HandleReplaceLayout(c *fiber.Ctx) error {
	var layout models.Layout
	if err := c.BodyParser(&layout); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	frame, err := h.Sim.ReplaceLayout(layout)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "frame": frame})
}

// HandleRandomLayout - ?count=N obstacles (default 6)
func (h *Handlers) HandleRandomLayout(c *fiber.Ctx) error {
	count, err := strconv.Atoi(c.Query("count", "6"))
	if err != nil || count <= 0 {
		count = 6
	}
	frame := h.Sim.Snapshot()
	layout := h.Layouts.Generate(frame.Canvas, count, frame.Agent.AgentSpec)

	frame, err = h.Sim.ReplaceLayout(layout)
	if err != nil {
		return errorJSON(c, err)
	}
	h.Logger.Info("🎲 random layout", zap.Int("obstacles", len(layout.Obstacles)))
	return c.JSON(fiber.Map{"success": true, "frame": frame})
}

// HandleMoveObstacle - body {"x", "y"} normalized; edit mode only
func (h *Handlers) HandleMoveObstacle(c *fiber.Ctx) error {
	var req models.PointData
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	frame, err := h.Sim.MoveObstacle(c.Params("id"), req.X, req.Y)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "frame": frame})
}
