package models

// Obstacle - static disc placed in normalized canvas coordinates
type Obstacle struct {
	ID        string  `json:"id" yaml:"id"`
	X         float64 `json:"x" yaml:"x"`       // fraction of canvas width
	Y         float64 `json:"y" yaml:"y"`       // fraction of canvas height
	Size      float64 `json:"size" yaml:"size"` // diameter (px)
	Destroyed bool    `json:"destroyed" yaml:"-"`
}

// Radius returns half the obstacle diameter in pixels.
func (o Obstacle) Radius() float64 {
	return o.Size / 2
}

// Waypoint - fixed target in normalized canvas coordinates
type Waypoint struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Label string  `json:"label" yaml:"label"` // "A" start, "B" goal, ...
}

// Layout is the editable part of a scenario. Waypoints[0] is the start.
type Layout struct {
	Obstacles []Obstacle `json:"obstacles" yaml:"obstacles"`
	Waypoints []Waypoint `json:"waypoints" yaml:"waypoints"`
}

// Clone returns a deep copy so callers can't alias simulation state.
func (l Layout) Clone() Layout {
	out := Layout{
		Obstacles: make([]Obstacle, len(l.Obstacles)),
		Waypoints: make([]Waypoint, len(l.Waypoints)),
	}
	copy(out.Obstacles, l.Obstacles)
	copy(out.Waypoints, l.Waypoints)
	return out
}

// Canvas - pixel extent of the drawing surface
type Canvas struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Scenario is the on-disk (YAML) description of a run.
type Scenario struct {
	Name      string    `json:"name" yaml:"name"`
	Canvas    Canvas    `json:"canvas" yaml:"canvas"`
	CellSize  float64   `json:"cell_size" yaml:"cell_size"`
	MaxFrames int       `json:"max_frames" yaml:"max_frames"`
	Agent     AgentSpec `json:"agent" yaml:"agent"`
	Layout    `yaml:",inline"`
}
