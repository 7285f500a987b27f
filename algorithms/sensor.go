package algorithms

import "math"

// Sensor constants. The three rays are fixed; they aren't runtime tunable.
const (
	SensorRange = 120.0 // px
	SensorStep  = 4.0   // px per probe increment
)

// SensorOffsets - left-diagonal, forward, right-diagonal relative to heading
var SensorOffsets = [3]float64{-math.Pi / 4, 0, math.Pi / 4}

// SensorReadings - distance to the first hit along each ray
type SensorReadings [3]float64

// Min returns the smallest of the three readings
func (r SensorReadings) Min() float64 {
	return math.Min(r[0], math.Min(r[1], r[2]))
}

// Sense steps each ray outward from pos and stops at the first increment that
// leaves the canvas or falls inside an obstacle. Rays that hit nothing report
// SensorRange. Only pass active obstacles.
func Sense(pos Vec2, heading float64, obstacles []Circle, width, height float64) SensorReadings {
	var out SensorReadings
	for i, off := range SensorOffsets {
		out[i] = castRay(pos, FromAngle(heading+off), obstacles, width, height)
	}
	return out
}

func castRay(pos, dir Vec2, obstacles []Circle, width, height float64) float64 {
	for d := SensorStep; d <= SensorRange; d += SensorStep {
		p := pos.Add(dir.Scale(d))
		if p.X < 0 || p.X > width || p.Y < 0 || p.Y > height {
			return d
		}
		for _, obs := range obstacles {
			if obs.Contains(p) {
				return d
			}
		}
	}
	return SensorRange
}
