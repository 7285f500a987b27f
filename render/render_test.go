package render

import (
	"encoding/json"
	"testing"

	"rover-backend/models"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame() models.FrameData {
	return models.FrameData{
		Frame:  12,
		State:  models.StateMoving,
		Canvas: models.Canvas{Width: 800, Height: 600},
		Agent: models.Agent{
			AgentSpec: models.DefaultAgentSpec(),
			X:         100, Y: 500,
		},
		Sensors: models.SensorData{Left: 120, Forward: 30, Right: 120},
		Obstacles: []models.ObstacleView{
			{Obstacle: models.Obstacle{ID: "o1", X: 0.5, Y: 0.5, Size: 200}, PX: 400, PY: 300, Radius: 100},
			{Obstacle: models.Obstacle{ID: "o2", X: 0.2, Y: 0.2, Size: 60, Destroyed: true}, PX: 160, PY: 120, Radius: 30},
		},
		Waypoints: []models.WaypointView{
			{Waypoint: models.Waypoint{X: 0.06, Y: 0.92, Label: "A"}, PX: 48, PY: 552},
			{Waypoint: models.Waypoint{X: 0.94, Y: 0.08, Label: "B"}, PX: 752, PY: 48},
		},
		TargetIndex: 1,
	}
}

func TestDrawMovingFrame(t *testing.T) {
	dl := Record(testFrame(), nil)

	require.NotEmpty(t, dl.Ops)
	assert.Equal(t, OpClear, dl.Ops[0].Kind)
	assert.Equal(t, 1, dl.Count(OpClear))
	assert.Equal(t, 2, dl.Count(OpFillCircle), "live obstacle and agent")
	assert.Equal(t, 3, dl.Count(OpStrokeCircle), "destroyed obstacle and two waypoint rings")
	assert.Equal(t, 4, dl.Count(OpLine), "three sensor rays and the heading")
	assert.Equal(t, 3, dl.Count(OpText), "two labels and the HUD")

	var danger int
	for _, op := range dl.Ops {
		if op.Kind == OpLine && op.Color == ColorDanger {
			danger++
		}
	}
	assert.Equal(t, 1, danger, "only the short forward ray is in danger range")

	hud := dl.Ops[len(dl.Ops)-1]
	assert.Equal(t, "moving  frame 12", hud.Text)
}

func TestDrawPreviewAndBlocked(t *testing.T) {
	frame := testFrame()
	frame.State = models.StateBlocked
	frame.Paused = true
	frame.Blocked = &models.BlockedData{
		Phase:        models.PhaseBeamFire,
		CannonScale:  1,
		BeamTarget:   "o1",
		BeamProgress: 1,
		ClosestPoint: models.PointData{X: 250, Y: 400},
	}
	preview := &models.PathPreview{Path: []models.PointData{{X: 100, Y: 500}, {X: 300, Y: 500}, {X: 752, Y: 48}}}

	dl := Record(frame, preview)

	// 4 from the agent, 2 preview segments, cannon and beam
	assert.Equal(t, 8, dl.Count(OpLine))
	// destroyed, targeted outline, 2 waypoints, closest point, beam impact
	assert.Equal(t, 6, dl.Count(OpStrokeCircle))

	var targeted, beams int
	for _, op := range dl.Ops {
		switch op.Color {
		case ColorTargeted:
			targeted++
		case ColorBeam:
			beams++
		}
	}
	assert.Equal(t, 1, targeted)
	assert.Equal(t, 2, beams)
	assert.Equal(t, "blocked  frame 12  beam_fire  [paused]", dl.Ops[len(dl.Ops)-1].Text)
}

func TestDrawListReplay(t *testing.T) {
	original := Record(testFrame(), nil)
	copied := &DrawList{}
	original.Replay(copied)
	assert.Equal(t, original.Ops, copied.Ops)

	// a second frame on the same list starts over at Clear
	Draw(testFrame(), nil, copied)
	assert.Equal(t, len(original.Ops), len(copied.Ops))
}

func TestDrawListJSON(t *testing.T) {
	dl := &DrawList{}
	dl.Text(1, 2, "hi", ColorHUD)

	data, err := json.Marshal(dl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ops":[{"op":"text","args":[1,2],"text":"hi","color":"#d1d5db"}]}`, string(data))
}

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(cols, rows)
	return screen
}

func TestTerminalCanvasScaling(t *testing.T) {
	screen := newSimScreen(t, 80, 30)
	tc := NewTerminalCanvas(screen, 800, 600)

	x, y := tc.ToCanvas(0, 0)
	assert.InDelta(t, 5, x, 1e-9)
	assert.InDelta(t, 10, y, 1e-9)

	x, y = tc.ToCanvas(40, 15)
	assert.InDelta(t, 405, x, 1e-9)
	assert.InDelta(t, 310, y, 1e-9)

	tc.SetExtent(1600, 600)
	x, _ = tc.ToCanvas(40, 15)
	assert.InDelta(t, 810, x, 1e-9)
}

func TestTerminalCanvasDrawsShapes(t *testing.T) {
	screen := newSimScreen(t, 80, 30)
	tc := NewTerminalCanvas(screen, 800, 600)

	tc.Clear(ColorBackground)
	tc.FillCircle(400, 300, 100, ColorObstacle)
	tc.Line(0, 590, 800, 590, ColorPath)
	tc.Text(10, 10, "HUD", ColorHUD)
	tc.Text(-100, 10000, "off screen", ColorHUD)
	screen.Show()

	r, _, _, _ := screen.GetContent(40, 15)
	assert.Equal(t, fillRune, r, "circle center is filled")
	r, _, _, _ = screen.GetContent(5, 5)
	assert.NotEqual(t, fillRune, r, "outside the circle stays clear")

	r, _, _, _ = screen.GetContent(20, 29)
	assert.Equal(t, lineRune, r)

	for i, want := range "HUD" {
		r, _, _, _ = screen.GetContent(1+i, 0)
		assert.Equal(t, want, r)
	}
}

func TestTerminalCanvasRendersFrame(t *testing.T) {
	screen := newSimScreen(t, 80, 30)
	tc := NewTerminalCanvas(screen, 800, 600)

	Record(testFrame(), nil).Replay(tc)
	screen.Show()

	r, _, _, _ := screen.GetContent(40, 15)
	assert.Equal(t, fillRune, r)
}
