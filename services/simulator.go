package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rover-backend/models"
	"rover-backend/render"

	"go.uber.org/zap"
)

// EventRecorder receives every scenario event after it is drained
type EventRecorder interface {
	Record(ev models.SimEvent)
}

// SimulatorConfig - frame loop settings
type SimulatorConfig struct {
	FPS            int
	BroadcastEvery int // frames between frame broadcasts
}

// FrameMessage - payload of a "frame" websocket message
type FrameMessage struct {
	models.FrameData
	Preview *models.PathPreview `json:"preview,omitempty"`
	Draw    *render.DrawList    `json:"draw"`
}

// Simulator hosts one Simulation: it owns the frame loop and serializes
// commands and ticks behind a single mutex.
type Simulator struct {
	mu  sync.Mutex
	sim *Simulation
	cfg SimulatorConfig

	logger        *zap.Logger
	broadcastFunc func(models.WebSocketMessage)
	recorder      EventRecorder
}

// NewSimulator - host for sim
func NewSimulator(sim *Simulation, cfg SimulatorConfig, logger *zap.Logger) *Simulator {
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	if cfg.BroadcastEvery <= 0 {
		cfg.BroadcastEvery = 1
	}
	return &Simulator{sim: sim, cfg: cfg, logger: logger}
}

// SetBroadcastFunc - sink for frame and event messages
func (s *Simulator) SetBroadcastFunc(fn func(models.WebSocketMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastFunc = fn
}

// SetEventRecorder - sink for drained events (the run-event log)
func (s *Simulator) SetEventRecorder(r EventRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
}

// Run ticks at the configured FPS until ctx is done
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.FPS))
	defer ticker.Stop()

	s.logger.Info("🚀 frame loop started", zap.Int("fps", s.cfg.FPS))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("🛑 frame loop stopped")
			return nil
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step advances one frame, dispatches its events and broadcasts the frame
// every BroadcastEvery frames
func (s *Simulator) Step() models.FrameData {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sim.Tick()
	frame := s.sim.Snapshot()
	s.dispatchLocked(s.sim.TakeEvents())
	if s.broadcastFunc != nil && frame.Frame%uint64(s.cfg.BroadcastEvery) == 0 {
		s.broadcastFunc(s.frameMessageLocked(frame))
	}
	return frame
}

// Apply executes one command and returns the resulting snapshot
func (s *Simulator) Apply(cmd models.CommandData) (models.FrameData, error) {
	var err error
	frame := s.withSimulation(func(sim *Simulation) {
		switch cmd.Action {
		case models.ActionStart:
			sim.Start()
		case models.ActionPause:
			sim.Pause()
		case models.ActionStop:
			sim.Stop()
		case models.ActionEditMode:
			sim.SetEditMode(cmd.Enabled)
		case models.ActionPointerDown:
			_, err = sim.PointerDown(cmd.X, cmd.Y)
		case models.ActionPointerMove:
			err = sim.DragTo(cmd.X, cmd.Y)
		case models.ActionPointerUp:
			sim.PointerUp()
		case models.ActionResize:
			err = sim.Resize(cmd.Width, cmd.Height)
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Action)
		}
	})
	if err != nil {
		s.logger.Debug("command rejected", zap.String("action", cmd.Action), zap.Error(err))
	}
	return frame, err
}

// MoveObstacle places an obstacle by ID (normalized coordinates)
func (s *Simulator) MoveObstacle(id string, x, y float64) (models.FrameData, error) {
	var err error
	frame := s.withSimulation(func(sim *Simulation) {
		err = sim.MoveObstacle(id, x, y)
	})
	return frame, err
}

// ReplaceLayout swaps the obstacle/waypoint layout
func (s *Simulator) ReplaceLayout(layout models.Layout) (models.FrameData, error) {
	var err error
	frame := s.withSimulation(func(sim *Simulation) {
		err = sim.ReplaceLayout(layout)
	})
	return frame, err
}

// withSimulation runs fn under the lock, dispatches the events it produced
// and returns the snapshot taken right after fn
func (s *Simulator) withSimulation(fn func(*Simulation)) models.FrameData {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.sim)
	frame := s.sim.Snapshot()
	s.dispatchLocked(s.sim.TakeEvents())
	return frame
}

// Snapshot - current frame without advancing
func (s *Simulator) Snapshot() models.FrameData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Snapshot()
}

// Preview - cached best-effort route
func (s *Simulator) Preview() models.PathPreview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Preview()
}

// Reachable - existence check from the agent's current position
func (s *Simulator) Reachable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Reachable()
}

// Layout - copy of the current layout
func (s *Simulator) Layout() models.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Layout()
}

// FrameMessage builds the broadcast payload for the current frame
func (s *Simulator) FrameMessage() models.WebSocketMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameMessageLocked(s.sim.Snapshot())
}

func (s *Simulator) frameMessageLocked(frame models.FrameData) models.WebSocketMessage {
	var preview *models.PathPreview
	if frame.EditMode {
		p := s.sim.Preview()
		preview = &p
	}
	return models.NewMessage(models.MessageTypeFrame, FrameMessage{
		FrameData: frame,
		Preview:   preview,
		Draw:      render.Record(frame, preview),
	})
}

// dispatchLocked hands events to the logger and sinks in emission order.
// Sinks run under s.mu and must not call back into the Simulator.
func (s *Simulator) dispatchLocked(events []models.SimEvent) {
	for _, ev := range events {
		s.logger.Info("scenario event",
			zap.String("type", ev.Type),
			zap.String("run_id", ev.RunID),
			zap.Uint64("frame", ev.Frame),
			zap.String("state", string(ev.State)),
			zap.String("phase", string(ev.Phase)),
			zap.String("detail", ev.Detail))
		if s.recorder != nil {
			s.recorder.Record(ev)
		}
		if s.broadcastFunc != nil {
			s.broadcastFunc(models.NewMessage(models.MessageTypeSimEvent, ev))
		}
	}
}

// Outcome - summary of a headless run
type Outcome struct {
	RunID     string               `json:"run_id"`
	State     models.ScenarioState `json:"state"`
	Blocked   bool                 `json:"blocked"`
	GoalHit   bool                 `json:"goal_reached"`
	Destroyed int                  `json:"destroyed"`
	Frames    int                  `json:"frames"`
	Agent     models.Agent         `json:"agent"`
	Events    []models.SimEvent    `json:"events"`
}

// RunHeadless starts a run and steps it without sleeping until it settles
// back into stopped, maxFrames elapse, or ctx is done.
func (s *Simulator) RunHeadless(ctx context.Context, maxFrames int) (Outcome, error) {
	out := Outcome{}
	collect := &eventCollector{}

	s.mu.Lock()
	prev := s.recorder
	s.recorder = teeRecorder{prev, collect}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.recorder = prev
		s.mu.Unlock()
	}()

	frame, err := s.Apply(models.CommandData{Action: models.ActionStart})
	if err != nil {
		return out, err
	}
	out.RunID = frame.RunID
	out.Blocked = frame.State == models.StateBlocked

	for out.Frames < maxFrames && frame.State != models.StateStopped {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		frame = s.Step()
		out.Frames++
	}

	out.State = frame.State
	out.Agent = frame.Agent
	out.Events = collect.events
	for _, ev := range collect.events {
		switch ev.Type {
		case models.EventGoalReached:
			out.GoalHit = true
		case models.EventObstacleFired:
			out.Destroyed++
		}
	}
	return out, nil
}

type eventCollector struct {
	events []models.SimEvent
}

func (c *eventCollector) Record(ev models.SimEvent) {
	c.events = append(c.events, ev)
}

type teeRecorder [2]EventRecorder

func (t teeRecorder) Record(ev models.SimEvent) {
	for _, r := range t {
		if r != nil {
			r.Record(ev)
		}
	}
}
