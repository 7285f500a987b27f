package models

// ========================================
// Scenario states
// ========================================
const (
	StateIdle    ScenarioState = "idle"    // created, never started
	StateMoving  ScenarioState = "moving"  // steering toward the current waypoint
	StateStopped ScenarioState = "stopped" // reset by stop, goal reached or sequence finished
	StateBlocked ScenarioState = "blocked" // no path: cosmetic blocked-sequence running
)

// Blocked-sequence phases, in order
const (
	PhaseCannonGrow  BlockedPhase = "cannon_grow"
	PhaseBeamFire    BlockedPhase = "beam_fire"
	PhasePause       BlockedPhase = "pause"
	PhaseTurboCharge BlockedPhase = "turbo_charge"
	PhaseVictorySpin BlockedPhase = "victory_spin"
)

// ScenarioState - scenario controller state
type ScenarioState string

// BlockedPhase - blocked-sequence sub-state
type BlockedPhase string

// ========================================
// Agent
// ========================================

// AgentSpec holds the fixed physical properties of the rover.
type AgentSpec struct {
	Size               float64 `json:"size" yaml:"size"`                                 // collision diameter (px)
	Speed              float64 `json:"speed" yaml:"speed"`                               // px per frame
	MaxAngularVelocity float64 `json:"max_angular_velocity" yaml:"max_angular_velocity"` // rad per frame
}

// DefaultAgentSpec - rover used by every built-in scenario
func DefaultAgentSpec() AgentSpec {
	return AgentSpec{
		Size:               30,
		Speed:              2,
		MaxAngularVelocity: 0.1,
	}
}

// Agent - rover state in canvas pixel space
type Agent struct {
	AgentSpec
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"` // radians, canvas y axis points down
}

// HalfSize returns the clearance buffer used by rasterization and clamping.
func (a Agent) HalfSize() float64 {
	return a.Size / 2
}

// SensorData - last ray readings, ordered left-diagonal, forward, right-diagonal
type SensorData struct {
	Left    float64 `json:"left"`
	Forward float64 `json:"forward"`
	Right   float64 `json:"right"`
}
