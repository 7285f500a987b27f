package models

import (
	"time"
)

// RunEvent - persisted scenario event (audit trail only, never replayed)
type RunEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	RunID     string    `gorm:"size:36;index" json:"run_id"`
	EventType string    `gorm:"size:32;index" json:"event_type"`
	State     string    `gorm:"size:16" json:"state"`
	Phase     string    `gorm:"size:16" json:"phase"`
	Frame     uint64    `json:"frame"`

	// Agent pose at the time of the event
	AgentX  float64 `json:"agent_x"`
	AgentY  float64 `json:"agent_y"`
	Heading float64 `json:"heading"`

	Detail string `json:"detail"`
}

// NewRunEvent converts a controller event into a storable row.
func NewRunEvent(ev SimEvent, at time.Time) RunEvent {
	return RunEvent{
		CreatedAt: at,
		RunID:     ev.RunID,
		EventType: ev.Type,
		State:     string(ev.State),
		Phase:     string(ev.Phase),
		Frame:     ev.Frame,
		AgentX:    ev.X,
		AgentY:    ev.Y,
		Heading:   ev.Heading,
		Detail:    ev.Detail,
	}
}

// EventStats - aggregate over a time window
type EventStats struct {
	Total       int64            `json:"total"`
	EventCounts map[string]int64 `json:"event_counts"`
	Runs        int64            `json:"runs"`
	TimeRange   string           `json:"time_range"`
}
