package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

func queryLimit(c *fiber.Ctx) int {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 {
		return 100
	}
	return limit
}

// HandleGetRecentLogs - newest run events
func (h *Handlers) HandleGetRecentLogs(c *fiber.Ctx) error {
	logs, err := h.Events.Recent(queryLimit(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"logs":    logs,
	})
}

// HandleGetLogsByTimeRange - ?start&end in RFC3339, default last 24h
func (h *Handlers) HandleGetLogsByTimeRange(c *fiber.Ctx) error {
	end := time.Now()
	start := end.Add(-24 * time.Hour)

	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid start time format (use RFC3339)",
			})
		}
		start = parsed
	}
	if e := c.Query("end"); e != "" {
		parsed, err := time.Parse(time.RFC3339, e)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid end time format (use RFC3339)",
			})
		}
		end = parsed
	}

	logs, err := h.Events.ByTimeRange(start, end, queryLimit(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"time_range": fiber.Map{
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		},
		"logs": logs,
	})
}

// HandleGetLogsByEventType - ?event_type required
func (h *Handlers) HandleGetLogsByEventType(c *fiber.Ctx) error {
	eventType := c.Query("event_type")
	if eventType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "event_type parameter is required",
		})
	}

	logs, err := h.Events.ByType(eventType, queryLimit(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"count":      len(logs),
		"event_type": eventType,
		"logs":       logs,
	})
}

// HandleGetLogsByRun - every event of one run, in frame order
func (h *Handlers) HandleGetLogsByRun(c *fiber.Ctx) error {
	runID := c.Params("id")
	logs, err := h.Events.ByRun(runID, queryLimit(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"run_id":  runID,
		"logs":    logs,
	})
}

// HandleGetLogStats - ?hours (default 24)
func (h *Handlers) HandleGetLogStats(c *fiber.Ctx) error {
	hours, err := strconv.Atoi(c.Query("hours", "24"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	stats, err := h.Events.Stats(hours)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
