package algorithms

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearReadings() SensorReadings {
	return SensorReadings{SensorRange, SensorRange, SensorRange}
}

func testBody() Body {
	return Body{Pos: Vec2{X: 400, Y: 300}, Size: 30, Speed: 2, MaxTurn: 0.1}
}

func TestAvoidanceVector(t *testing.T) {
	assert.True(t, AvoidanceVector(0, clearReadings()).IsZero())

	// reading exactly at the threshold contributes nothing
	assert.True(t, AvoidanceVector(0, SensorReadings{SensorRange, DangerThreshold, SensorRange}).IsZero())

	v := AvoidanceVector(0, SensorReadings{SensorRange, 0, SensorRange})
	assert.InDelta(t, -AvoidMaxStrength, v.X, 1e-9)
	assert.InDelta(t, 0, v.Y, 1e-9)

	v = AvoidanceVector(0, SensorReadings{SensorRange, DangerThreshold / 2, SensorRange})
	assert.InDelta(t, -0.6, v.X, 1e-9, "halfway between 1.0 and 0.2")

	// obstacle on the left diagonal pushes toward +y (right side)
	v = AvoidanceVector(0, SensorReadings{10, SensorRange, SensorRange})
	assert.Greater(t, v.Y, 0.0)
	assert.Less(t, v.X, 0.0)
}

func TestSteerTowardGoal(t *testing.T) {
	b := testBody()
	res := Steer(&b, Vec2{X: 600, Y: 300}, clearReadings(), 800, 600)

	assert.True(t, res.Moved)
	assert.InDelta(t, 0, res.Turn, 1e-12)
	assert.InDelta(t, 402, b.Pos.X, 1e-9)
	assert.InDelta(t, 300, b.Pos.Y, 1e-9)
}

func TestSteerTurnRateBound(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		b := testBody()
		b.Heading = WrapAngle(rng.Float64() * 2 * math.Pi)
		target := Vec2{X: rng.Float64() * 800, Y: rng.Float64() * 600}
		readings := SensorReadings{rng.Float64() * SensorRange, rng.Float64() * SensorRange, rng.Float64() * SensorRange}

		before := b.Heading
		res := Steer(&b, target, readings, 800, 600)

		require.LessOrEqual(t, math.Abs(res.Turn), b.MaxTurn+1e-12)
		require.LessOrEqual(t, math.Abs(AngleDiff(before, b.Heading)), b.MaxTurn+1e-9)
		require.False(t, math.IsNaN(b.Heading))
	}
}

func TestSteerDegenerateKeepsHeading(t *testing.T) {
	b := testBody()
	b.Heading = 1.0

	// target on top of the agent and nothing sensed: zero blend
	res := Steer(&b, b.Pos, clearReadings(), 800, 600)

	assert.True(t, res.Combined.IsZero())
	assert.Zero(t, res.Turn)
	assert.Equal(t, 1.0, b.Heading)
	assert.False(t, math.IsNaN(b.Pos.X) || math.IsNaN(b.Pos.Y))
}

func TestSteerStallsNearObstacle(t *testing.T) {
	b := testBody()
	start := b.Pos
	res := Steer(&b, Vec2{X: 600, Y: 300}, SensorReadings{SensorRange, DangerThreshold / 3, SensorRange}, 800, 600)

	assert.False(t, res.Moved, "min reading at threshold/3 is not above it")
	assert.Equal(t, start, b.Pos)
	assert.NotZero(t, res.Turn, "still rotates away while stalled")
}

func TestSteerClampsToCanvas(t *testing.T) {
	b := testBody()
	b.Pos = Vec2{X: 16, Y: 300}
	b.Heading = math.Pi
	Steer(&b, Vec2{X: -100, Y: 300}, clearReadings(), 800, 600)

	assert.InDelta(t, 15, b.Pos.X, 1e-9)
}

func TestClampToCanvas(t *testing.T) {
	p := ClampToCanvas(Vec2{X: 5, Y: 700}, 15, 800, 600)
	assert.Equal(t, Vec2{X: 15, Y: 585}, p)

	// canvas narrower than the agent: pinned to the center on that axis
	p = ClampToCanvas(Vec2{X: 3, Y: 300}, 15, 20, 600)
	assert.Equal(t, 10.0, p.X)
	assert.Equal(t, 300.0, p.Y)
}

func TestTurnToward(t *testing.T) {
	b := testBody()

	turn := TurnToward(&b, Vec2{X: 0, Y: 1})
	assert.InDelta(t, 0.1, turn, 1e-12)
	assert.InDelta(t, 0.1, b.Heading, 1e-12)

	assert.Zero(t, TurnToward(&b, Vec2{}))
	assert.Zero(t, TurnToward(&b, Vec2{X: math.NaN(), Y: 1}))
	assert.InDelta(t, 0.1, b.Heading, 1e-12)

	// shortest way across ±π
	b.Heading = 3.1
	turn = TurnToward(&b, FromAngle(-3.1))
	assert.Greater(t, turn, 0.0)
	assert.InDelta(t, WrapAngle(3.1+turn), b.Heading, 1e-12)
	assert.LessOrEqual(t, b.Heading, math.Pi)
}

func TestGoalReached(t *testing.T) {
	target := Vec2{X: 100, Y: 100}
	assert.True(t, GoalReached(Vec2{X: 122.4, Y: 100}, target, 30))
	assert.False(t, GoalReached(Vec2{X: 122.5, Y: 100}, target, 30))
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, math.Pi, WrapAngle(math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, WrapAngle(-math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi/2, WrapAngle(3*math.Pi/2), 1e-12)
	assert.InDelta(t, 0.5, AngleDiff(-0.25, 0.25), 1e-12)
}

func TestNormalizeZero(t *testing.T) {
	assert.True(t, Vec2{}.Normalize().IsZero())
	assert.InDelta(t, 1, Vec2{X: 3, Y: 4}.Normalize().Len(), 1e-12)
}

func TestSimplifyPath(t *testing.T) {
	line := []Vec2{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	assert.Equal(t, []Vec2{{0, 0}, {3, 0}}, SimplifyPath(line, 0.5))

	corner := []Vec2{{0, 0}, {5, 0}, {10, 0}, {10, 5}, {10, 10}}
	assert.Equal(t, []Vec2{{0, 0}, {10, 0}, {10, 10}}, SimplifyPath(corner, 0.5))

	assert.Len(t, SimplifyPath(nil, 1), 0)
}
