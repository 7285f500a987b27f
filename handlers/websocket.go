package handlers

import (
	"encoding/json"
	"time"

	"rover-backend/models"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// inboundMessage - viewer -> server envelope; Data is decoded per Type
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleViewerWebSocket streams frames to a viewer and applies the commands
// it sends back
func (h *Handlers) HandleViewerWebSocket(c *websocket.Conn) {
	welcome := models.NewMessage(models.MessageTypeSystemInfo, map[string]interface{}{
		"message":      "viewer connected",
		"connected_at": time.Now().Format(time.RFC3339),
	})
	if err := c.WriteJSON(welcome); err != nil {
		return
	}
	if err := c.WriteJSON(h.Sim.FrameMessage()); err != nil {
		return
	}

	client := NewClient(h.Hub, c)
	if client == nil {
		return
	}
	client.Run(func(data []byte) {
		h.handleViewerMessage(client, data)
	})
}

func (h *Handlers) handleViewerMessage(client *Client, data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		client.Send(models.NewMessage(models.MessageTypeError, map[string]interface{}{"error": "invalid message"}))
		return
	}
	if msg.Type != models.MessageTypeCommand {
		h.Logger.Debug("ignored viewer message", zap.String("type", msg.Type))
		return
	}

	var cmd models.CommandData
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		client.Send(models.NewMessage(models.MessageTypeError, map[string]interface{}{"error": "invalid command"}))
		return
	}
	if _, err := h.Sim.Apply(cmd); err != nil {
		client.Send(models.NewMessage(models.MessageTypeError, map[string]interface{}{
			"action": cmd.Action,
			"error":  err.Error(),
		}))
	}
}
