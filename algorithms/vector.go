package algorithms

import "math"

// Vec2 - point or direction in canvas pixel space
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2        { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2   { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float64           { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64    { return math.Hypot(v.X-o.X, v.Y-o.Y) }
func (v Vec2) Angle() float64         { return math.Atan2(v.Y, v.X) }
func (v Vec2) IsZero() bool           { return v.X == 0 && v.Y == 0 }
func FromAngle(angle float64) Vec2    { return Vec2{math.Cos(angle), math.Sin(angle)} }
func Lerp(a, b, t float64) float64    { return a + (b-a)*t }
func Clamp(x, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, x)) }

// Normalize returns the unit vector, or zero for (near) zero input
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// WrapAngle maps an angle into (-π, π]
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// AngleDiff returns the signed shortest rotation from -> to
func AngleDiff(from, to float64) float64 {
	return WrapAngle(to - from)
}

// Circle - obstacle footprint in pixel space
type Circle struct {
	Center Vec2
	Radius float64
}

// Contains reports whether p lies strictly inside the circle
func (c Circle) Contains(p Vec2) bool {
	return c.Center.Dist(p) < c.Radius
}
