package services

import (
	"math"

	"rover-backend/algorithms"
	"rover-backend/models"
)

// Blocked-sequence timing, in frames
const (
	cannonGrowFrames = 45
	beamFrames       = 30
	pauseFrames      = 30
	turboMaxFrames   = 600
	victoryFrames    = 120

	turboSpeedFactor = 3.0
	turboTurnFactor  = 3.0
	victorySpinRate  = 0.2 // rad per frame
)

// blockedSequence - bookkeeping for the cosmetic no-path sequence
type blockedSequence struct {
	phase      models.BlockedPhase
	phaseFrame int
	beamTarget int // obstacle index, -1 when nothing is targeted
	destroyed  int
	closest    algorithms.Vec2 // best-effort point toward the goal at entry
}

func (b *blockedSequence) data(obstacles []models.Obstacle) *models.BlockedData {
	out := &models.BlockedData{
		Phase:        b.phase,
		PhaseFrame:   b.phaseFrame,
		CannonScale:  1,
		ClosestPoint: pointData(b.closest),
		Destroyed:    b.destroyed,
	}
	switch b.phase {
	case models.PhaseCannonGrow:
		out.CannonScale = math.Min(1, float64(b.phaseFrame)/cannonGrowFrames)
	case models.PhaseBeamFire:
		out.BeamProgress = math.Min(1, float64(b.phaseFrame)/beamFrames)
		if b.beamTarget >= 0 && b.beamTarget < len(obstacles) {
			out.BeamTarget = obstacles[b.beamTarget].ID
		}
	}
	return out
}

// enterBlocked starts the sequence at cannon_grow. The first beam target is
// the active obstacle nearest the goal.
func (s *Simulation) enterBlocked() {
	grid := s.Grid()
	goal := len(s.waypoints) - 1
	res := grid.BestEffort(grid.CellOf(s.agentPos()), grid.CellOf(s.waypointPx(goal)))

	s.blocked = &blockedSequence{
		phase:      models.PhaseCannonGrow,
		beamTarget: s.nearestObstacleToGoal(),
		closest:    res.Target,
	}
}

func (s *Simulation) setPhase(phase models.BlockedPhase) {
	s.blocked.phase = phase
	s.blocked.phaseFrame = 0
	s.emit(models.EventPhaseChanged, string(phase))
}

// stepBlocked advances the phase machine by one frame
func (s *Simulation) stepBlocked() {
	b := s.blocked
	if b == nil {
		s.state = models.StateStopped
		return
	}
	b.phaseFrame++

	switch b.phase {
	case models.PhaseCannonGrow:
		if b.phaseFrame < cannonGrowFrames {
			return
		}
		if b.beamTarget < 0 {
			s.setPhase(models.PhasePause)
			return
		}
		s.setPhase(models.PhaseBeamFire)

	case models.PhaseBeamFire:
		s.aimAtBeamTarget()
		if b.phaseFrame < beamFrames {
			return
		}
		s.fireBeam()

	case models.PhasePause:
		if b.phaseFrame >= pauseFrames {
			s.setPhase(models.PhaseTurboCharge)
		}

	case models.PhaseTurboCharge:
		if s.stepTurbo() || b.phaseFrame >= turboMaxFrames {
			s.setPhase(models.PhaseVictorySpin)
		}

	case models.PhaseVictorySpin:
		s.agent.Heading = algorithms.WrapAngle(s.agent.Heading + victorySpinRate)
		if b.phaseFrame >= victoryFrames {
			s.emit(models.EventSequenceDone, "")
			s.reset("sequence finished")
		}
	}
}

// fireBeam destroys the current target, then either picks the next one or
// moves on once the route is open or nothing is left to destroy.
func (s *Simulation) fireBeam() {
	b := s.blocked
	if b.beamTarget >= 0 && b.beamTarget < len(s.obstacles) {
		s.obstacles[b.beamTarget].Destroyed = true
		b.destroyed++
		s.preview = nil
		s.emit(models.EventObstacleFired, s.obstacles[b.beamTarget].ID)
	}

	b.beamTarget = -1
	if !s.routeReachable() {
		b.beamTarget = s.nearestObstacleToGoal()
	}
	if b.beamTarget < 0 {
		s.setPhase(models.PhasePause)
		return
	}
	b.phaseFrame = 0
}

func (s *Simulation) aimAtBeamTarget() {
	b := s.blocked
	if b.beamTarget < 0 || b.beamTarget >= len(s.obstacles) {
		return
	}
	body := s.body()
	algorithms.TurnToward(&body, s.obstaclePx(s.obstacles[b.beamTarget]).Sub(body.Pos))
	s.applyBody(body)
}

// stepTurbo drives straight for the goal at boosted speed and turn rate,
// ignoring sensors. Returns true once the goal is reached.
func (s *Simulation) stepTurbo() bool {
	goalIndex := len(s.waypoints) - 1
	goal := s.waypointPx(goalIndex)
	s.targetIndex = goalIndex

	body := s.body()
	body.MaxTurn *= turboTurnFactor
	algorithms.TurnToward(&body, goal.Sub(body.Pos))
	body.Pos = body.Pos.Add(algorithms.FromAngle(body.Heading).Scale(body.Speed * turboSpeedFactor))
	body.Pos = algorithms.ClampToCanvas(body.Pos, body.Size/2, s.canvas.Width, s.canvas.Height)
	s.applyBody(body)

	return algorithms.GoalReached(body.Pos, goal, s.agent.Size)
}

// nearestObstacleToGoal - index of the active obstacle closest to the final
// waypoint, -1 if none remain
func (s *Simulation) nearestObstacleToGoal() int {
	goal := s.waypointPx(len(s.waypoints) - 1)
	best := -1
	bestDist := math.Inf(1)
	for i, o := range s.obstacles {
		if o.Destroyed {
			continue
		}
		if d := s.obstaclePx(o).Dist(goal); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
