package handlers

import (
	"rover-backend/models"
	"rover-backend/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PathfindingRequest - a throwaway layout to search; nothing is kept
type PathfindingRequest struct {
	Canvas    models.Canvas     `json:"canvas"`
	CellSize  float64           `json:"cell_size"`
	Agent     models.AgentSpec  `json:"agent"`
	Obstacles []models.Obstacle `json:"obstacles"`
	Waypoints []models.Waypoint `json:"waypoints"`
}

type PathfindingResponse struct {
	Success bool                `json:"success"`
	Preview *models.PathPreview `json:"preview,omitempty"`
	Message string              `json:"message,omitempty"`
}

// HandlePathfinding runs the best-effort search from the first waypoint
// through the rest on the posted layout
func (h *Handlers) HandlePathfinding(c *fiber.Ctx) error {
	var req PathfindingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(PathfindingResponse{
			Message: "invalid request body",
		})
	}
	if req.Canvas.Width <= 0 || req.Canvas.Height <= 0 {
		req.Canvas = models.Canvas{Width: services.DefaultCanvasWidth, Height: services.DefaultCanvasHeight}
	}

	sim, err := services.NewSimulation(services.SimulationConfig{
		Canvas:   req.Canvas,
		CellSize: req.CellSize,
		Agent:    req.Agent,
	}, models.Layout{Obstacles: req.Obstacles, Waypoints: req.Waypoints})
	if err != nil {
		return c.Status(errorStatus(err)).JSON(PathfindingResponse{Message: err.Error()})
	}

	preview := sim.Preview()
	h.Logger.Debug("📍 pathfinding request",
		zap.Int("obstacles", len(req.Obstacles)),
		zap.Int("waypoints", len(req.Waypoints)),
		zap.Bool("reachable", preview.Reachable),
		zap.Int("visited", preview.Visited))

	msg := "route found"
	if !preview.Reachable {
		msg = "no route; path ends at the closest reachable point"
	}
	return c.JSON(PathfindingResponse{
		Success: preview.Reachable,
		Preview: &preview,
		Message: msg,
	})
}
