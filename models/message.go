package models

import "time"

// ========================================
// Message types
// ========================================
const (
	// Server -> viewer
	MessageTypeFrame      = "frame"       // snapshot + draw list
	MessageTypeSimEvent   = "sim_event"   // scenario transition
	MessageTypeSystemInfo = "system_info" // connection greeting
	MessageTypeError      = "error"       // rejected command

	// Viewer -> server
	MessageTypeCommand = "command" // start/pause/stop/edit/pointer/resize
)

// Command actions accepted from HTTP and websocket viewers
const (
	ActionStart       = "start"
	ActionPause       = "pause"
	ActionStop        = "stop"
	ActionEditMode    = "edit_mode"
	ActionPointerDown = "pointer_down"
	ActionPointerMove = "pointer_move"
	ActionPointerUp   = "pointer_up"
	ActionResize      = "resize"
)

// ========================================
// Common websocket envelope
// ========================================
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"` // Unix ms
}

// NewMessage stamps a message with the current time.
func NewMessage(msgType string, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// CommandData - one host command. Fields unused by an action are ignored.
type CommandData struct {
	Action  string  `json:"action"`
	Enabled bool    `json:"enabled,omitempty"` // edit_mode
	X       float64 `json:"x,omitempty"`       // pointer, canvas px
	Y       float64 `json:"y,omitempty"`
	Width   float64 `json:"width,omitempty"` // resize
	Height  float64 `json:"height,omitempty"`
}

// ========================================
// Frame snapshot
// ========================================

// PointData - pixel-space point
type PointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ObstacleView - obstacle resolved to pixels for drawing
type ObstacleView struct {
	Obstacle
	PX     float64 `json:"px"`
	PY     float64 `json:"py"`
	Radius float64 `json:"radius"`
}

// WaypointView - waypoint resolved to pixels
type WaypointView struct {
	Waypoint
	PX float64 `json:"px"`
	PY float64 `json:"py"`
}

// BlockedData - blocked-sequence bookkeeping exposed for drawing
type BlockedData struct {
	Phase        BlockedPhase `json:"phase"`
	PhaseFrame   int          `json:"phase_frame"`
	CannonScale  float64      `json:"cannon_scale"`  // 0..1
	BeamTarget   string       `json:"beam_target"`   // obstacle ID, empty outside beam_fire
	BeamProgress float64      `json:"beam_progress"` // 0..1
	ClosestPoint PointData    `json:"closest_point"` // best-effort fallback target
	Destroyed    int          `json:"destroyed"`
}

// FrameData is the full render snapshot for one frame.
type FrameData struct {
	Frame       uint64         `json:"frame"`
	RunID       string         `json:"run_id"`
	State       ScenarioState  `json:"state"`
	Paused      bool           `json:"paused"`
	EditMode    bool           `json:"edit_mode"`
	Canvas      Canvas         `json:"canvas"`
	Agent       Agent          `json:"agent"`
	Sensors     SensorData     `json:"sensors"`
	TargetIndex int            `json:"target_index"`
	Obstacles   []ObstacleView `json:"obstacles"`
	Waypoints   []WaypointView `json:"waypoints"`
	Blocked     *BlockedData   `json:"blocked,omitempty"`
}

// PathPreview - best-effort search result with a simplified pixel path
type PathPreview struct {
	Reachable bool        `json:"reachable"`
	Complete  bool        `json:"complete"`
	Target    PointData   `json:"target"`
	Path      []PointData `json:"path"`
	Visited   int         `json:"visited"`
}

// ========================================
// Scenario events
// ========================================
const (
	EventRunStarted      = "run_started"
	EventRunResumed      = "run_resumed"
	EventRunBlocked      = "run_blocked"
	EventPaused          = "paused"
	EventStopped         = "stopped"
	EventWaypointReached = "waypoint_reached"
	EventGoalReached     = "goal_reached"
	EventPhaseChanged    = "phase_changed"
	EventObstacleFired   = "obstacle_destroyed"
	EventSequenceDone    = "sequence_done"
	EventObstacleMoved   = "obstacle_moved"
	EventEditMode        = "edit_mode"
	EventResized         = "resized"
	EventLayoutReplaced  = "layout_replaced"
)

// SimEvent - one scenario transition, emitted by the controller
type SimEvent struct {
	Type    string        `json:"type"`
	RunID   string        `json:"run_id"`
	Frame   uint64        `json:"frame"`
	State   ScenarioState `json:"state"`
	Phase   BlockedPhase  `json:"phase,omitempty"`
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Heading float64       `json:"heading"`
	Detail  string        `json:"detail,omitempty"`
}
