package services

import (
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"rover-backend/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Default canvas used when a scenario file leaves it out
const (
	DefaultCanvasWidth  = 800.0
	DefaultCanvasHeight = 600.0
)

// Random layout parameters
const (
	layoutMargin       = 0.1 // keep obstacles off the border (fraction of canvas)
	minObstacleSize    = 40.0
	maxObstacleSize    = 120.0
	placementAttempts  = 50
	defaultRandomCount = 6
)

// DefaultLayout - start bottom-left, goal top-right, three discs leaving a route
func DefaultLayout() models.Layout {
	return models.Layout{
		Obstacles: []models.Obstacle{
			{ID: "obstacle-1", X: 0.35, Y: 0.55, Size: 90},
			{ID: "obstacle-2", X: 0.55, Y: 0.30, Size: 70},
			{ID: "obstacle-3", X: 0.65, Y: 0.72, Size: 80},
		},
		Waypoints: []models.Waypoint{
			{X: 0.06, Y: 0.92, Label: "A"},
			{X: 0.94, Y: 0.08, Label: "B"},
		},
	}
}

// DefaultScenario wraps DefaultLayout with the default canvas and rover
func DefaultScenario() models.Scenario {
	return models.Scenario{
		Name:     "default",
		Canvas:   models.Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight},
		CellSize: DefaultCellSize,
		Agent:    models.DefaultAgentSpec(),
		Layout:   DefaultLayout(),
	}
}

// LayoutGenerator produces random obstacle layouts
type LayoutGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLayoutGenerator - seed 0 uses the clock
func NewLayoutGenerator(seed int64) *LayoutGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LayoutGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Generate places count discs between the default waypoints. Discs keep an
// agent-size clearance from every waypoint; a disc that can't be placed
// within a bounded number of tries is skipped.
func (lg *LayoutGenerator) Generate(canvas models.Canvas, count int, agent models.AgentSpec) models.Layout {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if count <= 0 {
		count = defaultRandomCount
	}
	layout := models.Layout{Waypoints: DefaultLayout().Waypoints}

	for i := 0; i < count; i++ {
		for attempt := 0; attempt < placementAttempts; attempt++ {
			o := models.Obstacle{
				ID:   uuid.New().String(),
				X:    layoutMargin + lg.rng.Float64()*(1-2*layoutMargin),
				Y:    layoutMargin + lg.rng.Float64()*(1-2*layoutMargin),
				Size: minObstacleSize + lg.rng.Float64()*(maxObstacleSize-minObstacleSize),
			}
			if clearOfWaypoints(o, layout.Waypoints, canvas, agent.Size) {
				layout.Obstacles = append(layout.Obstacles, o)
				break
			}
		}
	}
	return layout
}

func clearOfWaypoints(o models.Obstacle, waypoints []models.Waypoint, canvas models.Canvas, clearance float64) bool {
	for _, wp := range waypoints {
		dx := (o.X - wp.X) * canvas.Width
		dy := (o.Y - wp.Y) * canvas.Height
		reach := o.Radius() + clearance
		if dx*dx+dy*dy < reach*reach {
			return false
		}
	}
	return true
}

// ========================================
// Scenario files
// ========================================

// ParseScenario decodes YAML and fills defaults for omitted fields
func ParseScenario(data []byte) (models.Scenario, error) {
	sc := models.Scenario{}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("parse scenario: %w", err)
	}
	if sc.Canvas.Width <= 0 || sc.Canvas.Height <= 0 {
		sc.Canvas = models.Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight}
	}
	if sc.CellSize <= 0 {
		sc.CellSize = DefaultCellSize
	}
	if sc.Agent.Size <= 0 || sc.Agent.Speed <= 0 || sc.Agent.MaxAngularVelocity <= 0 {
		sc.Agent = models.DefaultAgentSpec()
	}
	if err := ValidateCanvas(sc.Canvas, sc.CellSize); err != nil {
		return sc, err
	}
	if err := ValidateLayout(sc.Layout); err != nil {
		return sc, err
	}
	return sc, nil
}

// LoadScenario reads a scenario file
func LoadScenario(path string) (models.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Scenario{}, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return ParseScenario(data)
}

// SaveScenario writes a scenario file
func SaveScenario(path string, sc models.Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scenario %s: %w", path, err)
	}
	return nil
}

// NewSimulationFromScenario builds a controller for a loaded scenario
func NewSimulationFromScenario(sc models.Scenario) (*Simulation, error) {
	return NewSimulation(SimulationConfig{
		Canvas:   sc.Canvas,
		CellSize: sc.CellSize,
		Agent:    sc.Agent,
	}, sc.Layout)
}
