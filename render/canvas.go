// Package render turns a frame snapshot into draw calls on a Canvas.
package render

import (
	"fmt"
	"math"

	"rover-backend/algorithms"
	"rover-backend/models"
)

// Canvas - drawing surface in canvas pixel coordinates. Colors are "#rrggbb".
type Canvas interface {
	Clear(color string)
	FillCircle(x, y, r float64, color string)
	StrokeCircle(x, y, r float64, color string)
	Line(x1, y1, x2, y2 float64, color string)
	Text(x, y float64, text, color string)
}

// Palette
const (
	ColorBackground = "#101820"
	ColorObstacle   = "#6b7280"
	ColorDestroyed  = "#2a2f36"
	ColorTargeted   = "#f97316"
	ColorWaypoint   = "#22c55e"
	ColorAgent      = "#3b82f6"
	ColorHeading    = "#e5e7eb"
	ColorSensor     = "#38bdf8"
	ColorDanger     = "#ef4444"
	ColorPath       = "#facc15"
	ColorCannon     = "#a855f7"
	ColorBeam       = "#f43f5e"
	ColorHUD        = "#d1d5db"
)

// Draw issues the draw calls for one frame. preview may be nil.
func Draw(frame models.FrameData, preview *models.PathPreview, c Canvas) {
	c.Clear(ColorBackground)

	beamTarget := ""
	if frame.Blocked != nil {
		beamTarget = frame.Blocked.BeamTarget
	}
	for _, o := range frame.Obstacles {
		switch {
		case o.Destroyed:
			c.StrokeCircle(o.PX, o.PY, o.Radius, ColorDestroyed)
		case o.ID == beamTarget:
			c.FillCircle(o.PX, o.PY, o.Radius, ColorObstacle)
			c.StrokeCircle(o.PX, o.PY, o.Radius, ColorTargeted)
		default:
			c.FillCircle(o.PX, o.PY, o.Radius, ColorObstacle)
		}
	}

	for i, wp := range frame.Waypoints {
		color := ColorWaypoint
		if i == frame.TargetIndex {
			color = ColorPath
		}
		c.StrokeCircle(wp.PX, wp.PY, frame.Agent.Size*algorithms.GoalToleranceFactor, color)
		c.Text(wp.PX, wp.PY, wp.Label, color)
	}

	if preview != nil {
		drawPath(preview.Path, c)
	}

	drawAgent(frame, c)

	if frame.Blocked != nil {
		drawBlocked(frame, c)
	}

	hud := fmt.Sprintf("%s  frame %d", frame.State, frame.Frame)
	if frame.Blocked != nil {
		hud += "  " + string(frame.Blocked.Phase)
	}
	if frame.Paused {
		hud += "  [paused]"
	}
	if frame.EditMode {
		hud += "  [edit]"
	}
	c.Text(8, 8, hud, ColorHUD)
}

func drawPath(path []models.PointData, c Canvas) {
	for i := 1; i < len(path); i++ {
		c.Line(path[i-1].X, path[i-1].Y, path[i].X, path[i].Y, ColorPath)
	}
}

func drawAgent(frame models.FrameData, c Canvas) {
	a := frame.Agent
	pos := algorithms.Vec2{X: a.X, Y: a.Y}

	readings := []float64{frame.Sensors.Left, frame.Sensors.Forward, frame.Sensors.Right}
	for i, r := range readings {
		if r <= 0 {
			continue
		}
		color := ColorSensor
		if r < algorithms.DangerThreshold {
			color = ColorDanger
		}
		end := pos.Add(algorithms.FromAngle(a.Heading + algorithms.SensorOffsets[i]).Scale(r))
		c.Line(pos.X, pos.Y, end.X, end.Y, color)
	}

	c.FillCircle(pos.X, pos.Y, a.HalfSize(), ColorAgent)
	nose := pos.Add(algorithms.FromAngle(a.Heading).Scale(a.Size))
	c.Line(pos.X, pos.Y, nose.X, nose.Y, ColorHeading)
}

func drawBlocked(frame models.FrameData, c Canvas) {
	b := frame.Blocked
	a := frame.Agent
	pos := algorithms.Vec2{X: a.X, Y: a.Y}

	c.StrokeCircle(b.ClosestPoint.X, b.ClosestPoint.Y, a.HalfSize()/2, ColorPath)

	if b.CannonScale > 0 {
		barrel := pos.Add(algorithms.FromAngle(a.Heading).Scale(a.Size * 1.5 * b.CannonScale))
		c.Line(pos.X, pos.Y, barrel.X, barrel.Y, ColorCannon)
	}

	if b.Phase != models.PhaseBeamFire || b.BeamTarget == "" {
		return
	}
	for _, o := range frame.Obstacles {
		if o.ID != b.BeamTarget {
			continue
		}
		tip := pos.Add(algorithms.Vec2{X: o.PX, Y: o.PY}.Sub(pos).Scale(b.BeamProgress))
		c.Line(pos.X, pos.Y, tip.X, tip.Y, ColorBeam)
		if b.BeamProgress >= 1 {
			c.StrokeCircle(o.PX, o.PY, math.Max(o.Radius, 1), ColorBeam)
		}
	}
}
