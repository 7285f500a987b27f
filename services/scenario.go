package services

import (
	"fmt"
	"math"

	"rover-backend/algorithms"
	"rover-backend/models"

	"github.com/google/uuid"
)

// DefaultCellSize is the one grid resolution used for both the pre-flight
// check and the best-effort preview.
const DefaultCellSize = 25.0

// previewEpsilon - Douglas-Peucker tolerance for preview paths (px)
const previewEpsilon = 6.0

// SimulationConfig - fixed parameters of a simulation instance
type SimulationConfig struct {
	Canvas   models.Canvas
	CellSize float64
	Agent    models.AgentSpec
}

// Simulation is the scenario controller: explicit state mutated by the frame
// tick and by discrete commands. It is not safe for concurrent use; the
// Simulator host serializes every call.
type Simulation struct {
	canvas   models.Canvas
	cellSize float64

	agent     models.Agent
	sensors   algorithms.SensorReadings
	obstacles []models.Obstacle
	waypoints []models.Waypoint

	state       models.ScenarioState
	paused      bool
	editMode    bool
	targetIndex int
	blocked     *blockedSequence

	dragIndex int
	dragMoved bool

	frame   uint64
	runID   string
	preview *models.PathPreview // cleared by every obstacle or canvas mutation
	events  []models.SimEvent
}

// NewSimulation - controller in the idle state with the agent on the start waypoint
func NewSimulation(cfg SimulationConfig, layout models.Layout) (*Simulation, error) {
	if cfg.CellSize <= 0 {
		cfg.CellSize = DefaultCellSize
	}
	if err := ValidateCanvas(cfg.Canvas, cfg.CellSize); err != nil {
		return nil, err
	}
	if err := ValidateLayout(layout); err != nil {
		return nil, err
	}
	if cfg.Agent.Size <= 0 || cfg.Agent.Speed <= 0 || cfg.Agent.MaxAngularVelocity <= 0 {
		cfg.Agent = models.DefaultAgentSpec()
	}

	layout = layout.Clone()
	assignObstacleIDs(layout.Obstacles)

	s := &Simulation{
		canvas:    cfg.Canvas,
		cellSize:  cfg.CellSize,
		agent:     models.Agent{AgentSpec: cfg.Agent},
		obstacles: layout.Obstacles,
		waypoints: layout.Waypoints,
		state:     models.StateIdle,
		dragIndex: -1,
	}
	s.resetAgent()
	return s, nil
}

// ValidateCanvas - positive extent whose grid stays within MaxGridCells
func ValidateCanvas(canvas models.Canvas, cellSize float64) error {
	if !(canvas.Width > 0 && canvas.Height > 0) {
		return fmt.Errorf("%w: dimensions must be positive, got %gx%g", ErrInvalidCanvas, canvas.Width, canvas.Height)
	}
	if cells := algorithms.GridCells(canvas.Width, canvas.Height, cellSize); !(cells <= algorithms.MaxGridCells) {
		return fmt.Errorf("%w: %gx%g at cell size %g needs %g cells, limit %d",
			ErrInvalidCanvas, canvas.Width, canvas.Height, cellSize, cells, algorithms.MaxGridCells)
	}
	return nil
}

// ValidateLayout - at least two waypoints, normalized coordinates, non-negative sizes
func ValidateLayout(layout models.Layout) error {
	if len(layout.Waypoints) < 2 {
		return fmt.Errorf("%w: need a start and a goal waypoint, got %d", ErrInvalidLayout, len(layout.Waypoints))
	}
	for i, wp := range layout.Waypoints {
		if !normalized(wp.X) || !normalized(wp.Y) {
			return fmt.Errorf("%w: waypoint %d (%s) outside [0,1]", ErrInvalidLayout, i, wp.Label)
		}
	}
	for i, o := range layout.Obstacles {
		if !normalized(o.X) || !normalized(o.Y) {
			return fmt.Errorf("%w: obstacle %d outside [0,1]", ErrInvalidLayout, i)
		}
		if o.Size < 0 || math.IsNaN(o.Size) {
			return fmt.Errorf("%w: obstacle %d has negative size", ErrInvalidLayout, i)
		}
	}
	return nil
}

func normalized(v float64) bool {
	return v >= 0 && v <= 1
}

func assignObstacleIDs(obstacles []models.Obstacle) {
	for i := range obstacles {
		if obstacles[i].ID == "" {
			obstacles[i].ID = uuid.NewString()
		}
	}
}

// ========================================
// Accessors
// ========================================

func (s *Simulation) State() models.ScenarioState { return s.state }
func (s *Simulation) Paused() bool                { return s.paused }
func (s *Simulation) EditMode() bool              { return s.editMode }
func (s *Simulation) Frame() uint64               { return s.frame }
func (s *Simulation) RunID() string               { return s.runID }
func (s *Simulation) Agent() models.Agent         { return s.agent }
func (s *Simulation) Canvas() models.Canvas       { return s.canvas }

// Phase returns the blocked-sequence phase, empty outside the blocked state
func (s *Simulation) Phase() models.BlockedPhase {
	if s.blocked == nil {
		return ""
	}
	return s.blocked.phase
}

// Layout returns a copy of the current obstacles and waypoints
func (s *Simulation) Layout() models.Layout {
	return models.Layout{Obstacles: s.obstacles, Waypoints: s.waypoints}.Clone()
}

// TakeEvents drains the events recorded since the last call
func (s *Simulation) TakeEvents() []models.SimEvent {
	out := s.events
	s.events = nil
	return out
}

// ========================================
// Commands
// ========================================

// Start begins a fresh run, or resumes a paused one. A fresh run resets the
// agent to the start waypoint and runs the reachability check along every
// leg: reachable -> moving, otherwise -> blocked (cannon_grow).
func (s *Simulation) Start() models.ScenarioState {
	running := s.state == models.StateMoving || s.state == models.StateBlocked
	if running && s.paused {
		s.paused = false
		s.emit(models.EventRunResumed, "")
		return s.state
	}
	if running {
		return s.state
	}

	s.restoreObstacles()
	s.resetAgent()
	s.blocked = nil
	s.paused = false
	s.runID = uuid.NewString()

	if s.routeReachable() {
		s.state = models.StateMoving
		s.emit(models.EventRunStarted, "")
	} else {
		s.state = models.StateBlocked
		s.enterBlocked()
		s.emit(models.EventRunBlocked, "no path from start to goal")
	}
	return s.state
}

// Pause holds a running scenario in place
func (s *Simulation) Pause() {
	if s.paused || (s.state != models.StateMoving && s.state != models.StateBlocked) {
		return
	}
	s.paused = true
	s.emit(models.EventPaused, "")
}

// Stop resets unconditionally: agent back to start, blocked bookkeeping
// cleared, destroyed obstacles restored.
func (s *Simulation) Stop() {
	s.reset("stop")
}

func (s *Simulation) reset(reason string) {
	s.restoreObstacles()
	s.resetAgent()
	s.blocked = nil
	s.paused = false
	s.state = models.StateStopped
	s.emit(models.EventStopped, reason)
}

// SetEditMode toggles obstacle dragging. Leaving edit mode drops any drag.
func (s *Simulation) SetEditMode(enabled bool) {
	if s.editMode == enabled {
		return
	}
	s.editMode = enabled
	if !enabled {
		s.PointerUp()
	}
	s.emit(models.EventEditMode, fmt.Sprintf("%t", enabled))
}

// PointerDown picks the topmost active obstacle under (x, y)
func (s *Simulation) PointerDown(x, y float64) (bool, error) {
	if !s.editMode {
		return false, ErrEditModeDisabled
	}
	p := algorithms.Vec2{X: x, Y: y}
	for i := len(s.obstacles) - 1; i >= 0; i-- {
		o := s.obstacles[i]
		if o.Destroyed {
			continue
		}
		if s.obstaclePx(o).Dist(p) <= o.Radius() {
			s.dragIndex = i
			s.dragMoved = false
			return true, nil
		}
	}
	return false, nil
}

// DragTo moves the grabbed obstacle to the pointer position
func (s *Simulation) DragTo(x, y float64) error {
	if !s.editMode {
		return ErrEditModeDisabled
	}
	if s.dragIndex < 0 || s.dragIndex >= len(s.obstacles) {
		return ErrNoDrag
	}
	o := &s.obstacles[s.dragIndex]
	o.X = algorithms.Clamp(x/s.canvas.Width, 0, 1)
	o.Y = algorithms.Clamp(y/s.canvas.Height, 0, 1)
	s.dragMoved = true
	s.obstaclesChanged()
	return nil
}

// PointerUp releases the drag
func (s *Simulation) PointerUp() {
	if s.dragIndex >= 0 && s.dragMoved && s.dragIndex < len(s.obstacles) {
		s.emit(models.EventObstacleMoved, s.obstacles[s.dragIndex].ID)
	}
	s.dragIndex = -1
	s.dragMoved = false
}

// MoveObstacle places an obstacle by ID at a normalized position
func (s *Simulation) MoveObstacle(id string, nx, ny float64) error {
	if !s.editMode {
		return ErrEditModeDisabled
	}
	for i := range s.obstacles {
		if s.obstacles[i].ID != id {
			continue
		}
		s.obstacles[i].X = algorithms.Clamp(nx, 0, 1)
		s.obstacles[i].Y = algorithms.Clamp(ny, 0, 1)
		s.obstaclesChanged()
		s.emit(models.EventObstacleMoved, id)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrObstacleNotFound, id)
}

// Resize recomputes pixel positions for a new canvas and resets the agent
func (s *Simulation) Resize(width, height float64) error {
	canvas := models.Canvas{Width: width, Height: height}
	if err := ValidateCanvas(canvas, s.cellSize); err != nil {
		return err
	}
	s.canvas = canvas
	s.preview = nil
	if s.state == models.StateBlocked {
		s.reset("resize")
	} else {
		s.resetAgent()
	}
	s.emit(models.EventResized, fmt.Sprintf("%.0fx%.0f", width, height))
	return nil
}

// ReplaceLayout swaps obstacles and waypoints. A running scenario is stopped.
func (s *Simulation) ReplaceLayout(layout models.Layout) error {
	if err := ValidateLayout(layout); err != nil {
		return err
	}
	layout = layout.Clone()
	assignObstacleIDs(layout.Obstacles)

	s.obstacles = layout.Obstacles
	s.waypoints = layout.Waypoints
	s.dragIndex = -1
	s.preview = nil
	if s.state != models.StateIdle {
		s.reset("layout replaced")
	} else {
		s.resetAgent()
	}
	s.emit(models.EventLayoutReplaced, fmt.Sprintf("%d obstacles", len(s.obstacles)))
	return nil
}

// obstaclesChanged invalidates everything derived from obstacle positions.
// An in-progress blocked sequence is abandoned; moving keeps going and
// steers against the new position.
func (s *Simulation) obstaclesChanged() {
	s.preview = nil
	if s.state == models.StateBlocked {
		s.reset("layout edited")
	}
}

// ========================================
// Frame tick
// ========================================

// Tick advances one animation frame
func (s *Simulation) Tick() {
	s.frame++
	if s.paused {
		return
	}
	switch s.state {
	case models.StateMoving:
		s.stepMoving()
	case models.StateBlocked:
		s.stepBlocked()
	}
}

func (s *Simulation) stepMoving() {
	body := s.body()
	s.sensors = algorithms.Sense(body.Pos, body.Heading, s.activeCircles(), s.canvas.Width, s.canvas.Height)

	target := s.waypointPx(s.targetIndex)
	algorithms.Steer(&body, target, s.sensors, s.canvas.Width, s.canvas.Height)
	s.applyBody(body)

	if !algorithms.GoalReached(body.Pos, target, s.agent.Size) {
		return
	}
	s.emit(models.EventWaypointReached, s.waypoints[s.targetIndex].Label)
	if s.targetIndex+1 < len(s.waypoints) {
		s.targetIndex++
		return
	}
	s.state = models.StateStopped
	s.emit(models.EventGoalReached, s.waypoints[s.targetIndex].Label)
}

// ========================================
// Reachability
// ========================================

// Grid rasterizes the active obstacles with the agent half-size as buffer
func (s *Simulation) Grid() *algorithms.OccupancyGrid {
	return algorithms.Rasterize(s.activeCircles(), s.canvas.Width, s.canvas.Height, s.cellSize, s.agent.HalfSize())
}

// Reachable runs the existence check from the agent's cell through every
// remaining waypoint. The grid is rebuilt for each call.
func (s *Simulation) Reachable() bool {
	return s.routeReachable()
}

func (s *Simulation) routeReachable() bool {
	grid := s.Grid()
	cur := grid.CellOf(s.agentPos())
	for i := s.targetIndex; i < len(s.waypoints); i++ {
		next := grid.CellOf(s.waypointPx(i))
		if !grid.Reachable(cur, next) {
			return false
		}
		cur = next
	}
	return true
}

// Preview returns the best-effort route from the agent through the
// remaining waypoints. Cached until the next obstacle or canvas mutation.
func (s *Simulation) Preview() models.PathPreview {
	if s.preview != nil {
		return *s.preview
	}

	grid := s.Grid()
	cur := grid.CellOf(s.agentPos())
	out := models.PathPreview{Reachable: true, Complete: true}
	var cells []algorithms.Cell

	for i := s.targetIndex; i < len(s.waypoints); i++ {
		goal := grid.CellOf(s.waypointPx(i))
		res := grid.BestEffort(cur, goal)
		leg, _ := grid.TracePath(cur, goal)
		if len(cells) > 0 && len(leg) > 0 {
			leg = leg[1:]
		}
		cells = append(cells, leg...)
		out.Visited += res.Visited
		out.Target = pointData(res.Target)
		if !res.Complete {
			out.Reachable = false
			out.Complete = false
			break
		}
		cur = goal
	}

	simplified := algorithms.SimplifyPath(grid.CellPath(cells), previewEpsilon)
	out.Path = make([]models.PointData, len(simplified))
	for i, p := range simplified {
		out.Path[i] = pointData(p)
	}

	s.preview = &out
	return out
}

// ========================================
// Snapshot
// ========================================

// Snapshot captures everything a renderer needs for the current frame
func (s *Simulation) Snapshot() models.FrameData {
	frame := models.FrameData{
		Frame:       s.frame,
		RunID:       s.runID,
		State:       s.state,
		Paused:      s.paused,
		EditMode:    s.editMode,
		Canvas:      s.canvas,
		Agent:       s.agent,
		TargetIndex: s.targetIndex,
		Sensors: models.SensorData{
			Left:    s.sensors[0],
			Forward: s.sensors[1],
			Right:   s.sensors[2],
		},
		Obstacles: make([]models.ObstacleView, len(s.obstacles)),
		Waypoints: make([]models.WaypointView, len(s.waypoints)),
	}
	for i, o := range s.obstacles {
		p := s.obstaclePx(o)
		frame.Obstacles[i] = models.ObstacleView{Obstacle: o, PX: p.X, PY: p.Y, Radius: o.Radius()}
	}
	for i, wp := range s.waypoints {
		p := s.waypointPx(i)
		frame.Waypoints[i] = models.WaypointView{Waypoint: wp, PX: p.X, PY: p.Y}
	}
	if s.blocked != nil {
		frame.Blocked = s.blocked.data(s.obstacles)
	}
	return frame
}

// ========================================
// Internal helpers
// ========================================

func (s *Simulation) emit(eventType, detail string) {
	s.events = append(s.events, models.SimEvent{
		Type:    eventType,
		RunID:   s.runID,
		Frame:   s.frame,
		State:   s.state,
		Phase:   s.Phase(),
		X:       s.agent.X,
		Y:       s.agent.Y,
		Heading: s.agent.Heading,
		Detail:  detail,
	})
}

// resetAgent puts the agent on the start waypoint facing the first leg
func (s *Simulation) resetAgent() {
	start := algorithms.ClampToCanvas(s.waypointPx(0), s.agent.HalfSize(), s.canvas.Width, s.canvas.Height)
	s.agent.X, s.agent.Y = start.X, start.Y
	s.agent.Heading = s.waypointPx(1).Sub(start).Angle()
	s.targetIndex = 1
	s.sensors = algorithms.SensorReadings{}
}

func (s *Simulation) restoreObstacles() {
	for i := range s.obstacles {
		if s.obstacles[i].Destroyed {
			s.obstacles[i].Destroyed = false
			s.preview = nil
		}
	}
}

func (s *Simulation) body() algorithms.Body {
	return algorithms.Body{
		Pos:     s.agentPos(),
		Heading: s.agent.Heading,
		Size:    s.agent.Size,
		Speed:   s.agent.Speed,
		MaxTurn: s.agent.MaxAngularVelocity,
	}
}

func (s *Simulation) applyBody(b algorithms.Body) {
	s.agent.X, s.agent.Y = b.Pos.X, b.Pos.Y
	s.agent.Heading = b.Heading
}

func (s *Simulation) agentPos() algorithms.Vec2 {
	return algorithms.Vec2{X: s.agent.X, Y: s.agent.Y}
}

func (s *Simulation) obstaclePx(o models.Obstacle) algorithms.Vec2 {
	return algorithms.Vec2{X: o.X * s.canvas.Width, Y: o.Y * s.canvas.Height}
}

func (s *Simulation) waypointPx(i int) algorithms.Vec2 {
	wp := s.waypoints[i]
	return algorithms.Vec2{X: wp.X * s.canvas.Width, Y: wp.Y * s.canvas.Height}
}

// activeCircles - non-destroyed obstacles in pixel space
func (s *Simulation) activeCircles() []algorithms.Circle {
	out := make([]algorithms.Circle, 0, len(s.obstacles))
	for _, o := range s.obstacles {
		if o.Destroyed {
			continue
		}
		out = append(out, algorithms.Circle{Center: s.obstaclePx(o), Radius: o.Radius()})
	}
	return out
}

func pointData(v algorithms.Vec2) models.PointData {
	return models.PointData{X: v.X, Y: v.Y}
}
