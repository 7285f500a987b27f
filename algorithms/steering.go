package algorithms

import "math"

// Steering constants
const (
	DangerThreshold     = 60.0 // px; readings below this push the agent away
	AvoidMaxStrength    = 1.0  // reading 0
	AvoidMinStrength    = 0.2  // reading == DangerThreshold
	GoalWeight          = 1.0
	AvoidanceWeight     = 1.5
	GoalToleranceFactor = 0.75 // fraction of agent size
	stallFactor         = 1.0 / 3.0
)

// Body - the kinematic part of an agent the controller mutates
type Body struct {
	Pos     Vec2
	Heading float64
	Size    float64
	Speed   float64
	MaxTurn float64 // rad per frame
}

// SteerResult reports what a single frame did
type SteerResult struct {
	Avoidance Vec2    // summed avoidance before weighting
	Combined  Vec2    // normalized blend, zero when degenerate
	Turn      float64 // applied heading change
	Moved     bool    // false when stalled by a close reading
}

// AvoidanceVector sums one push per sensor reading below the danger
// threshold, pointing away from that sensor's direction. Closer is stronger.
func AvoidanceVector(heading float64, readings SensorReadings) Vec2 {
	avoid := Vec2{}
	for i, r := range readings {
		if r >= DangerThreshold {
			continue
		}
		t := Clamp(r/DangerThreshold, 0, 1)
		strength := Lerp(AvoidMaxStrength, AvoidMinStrength, t)
		avoid = avoid.Sub(FromAngle(heading + SensorOffsets[i]).Scale(strength))
	}
	return avoid
}

// Steer advances b by one frame toward target.
//
// The heading change is clamped to b.MaxTurn. A degenerate (zero) blend
// keeps the heading. Position only advances while every reading is above a
// third of the danger threshold, and always ends clamped to the canvas.
func Steer(b *Body, target Vec2, readings SensorReadings, width, height float64) SteerResult {
	res := SteerResult{Avoidance: AvoidanceVector(b.Heading, readings)}

	goal := target.Sub(b.Pos).Normalize()
	res.Combined = goal.Scale(GoalWeight).Add(res.Avoidance.Scale(AvoidanceWeight)).Normalize()

	res.Turn = TurnToward(b, res.Combined)

	if readings.Min() > DangerThreshold*stallFactor {
		b.Pos = b.Pos.Add(FromAngle(b.Heading).Scale(b.Speed))
		res.Moved = true
	}

	b.Pos = ClampToCanvas(b.Pos, b.Size/2, width, height)
	return res
}

// TurnToward rotates b toward dir by at most b.MaxTurn and returns the
// applied change. A zero dir leaves the heading untouched.
func TurnToward(b *Body, dir Vec2) float64 {
	if dir.IsZero() || math.IsNaN(dir.X) || math.IsNaN(dir.Y) {
		return 0
	}
	turn := AngleDiff(b.Heading, dir.Angle())
	turn = Clamp(turn, -b.MaxTurn, b.MaxTurn)
	b.Heading = WrapAngle(b.Heading + turn)
	return turn
}

// ClampToCanvas keeps p inside the canvas minus half. A canvas smaller than
// the agent pins it to the center on that axis.
func ClampToCanvas(p Vec2, half, width, height float64) Vec2 {
	return Vec2{
		X: clampAxis(p.X, half, width),
		Y: clampAxis(p.Y, half, height),
	}
}

func clampAxis(v, half, extent float64) float64 {
	if extent < 2*half {
		return extent / 2
	}
	return Clamp(v, half, extent-half)
}

// GoalReached - distance to target below a fixed fraction of agent size
func GoalReached(pos, target Vec2, size float64) bool {
	return pos.Dist(target) < size*GoalToleranceFactor
}
