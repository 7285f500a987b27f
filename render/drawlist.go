package render

import "rover-backend/models"

// Draw op kinds
const (
	OpClear        = "clear"
	OpFillCircle   = "fill_circle"
	OpStrokeCircle = "stroke_circle"
	OpLine         = "line"
	OpText         = "text"
)

// Op - one recorded draw call, shipped to browser viewers as JSON
type Op struct {
	Kind  string    `json:"op"`
	Args  []float64 `json:"args,omitempty"`
	Text  string    `json:"text,omitempty"`
	Color string    `json:"color"`
}

// DrawList is a Canvas that records calls instead of drawing them
type DrawList struct {
	Ops []Op `json:"ops"`
}

// Record draws frame onto a fresh DrawList
func Record(frame models.FrameData, preview *models.PathPreview) *DrawList {
	dl := &DrawList{}
	Draw(frame, preview, dl)
	return dl
}

func (d *DrawList) Clear(color string) {
	d.Ops = d.Ops[:0]
	d.Ops = append(d.Ops, Op{Kind: OpClear, Color: color})
}

func (d *DrawList) FillCircle(x, y, r float64, color string) {
	d.Ops = append(d.Ops, Op{Kind: OpFillCircle, Args: []float64{x, y, r}, Color: color})
}

func (d *DrawList) StrokeCircle(x, y, r float64, color string) {
	d.Ops = append(d.Ops, Op{Kind: OpStrokeCircle, Args: []float64{x, y, r}, Color: color})
}

func (d *DrawList) Line(x1, y1, x2, y2 float64, color string) {
	d.Ops = append(d.Ops, Op{Kind: OpLine, Args: []float64{x1, y1, x2, y2}, Color: color})
}

func (d *DrawList) Text(x, y float64, text, color string) {
	d.Ops = append(d.Ops, Op{Kind: OpText, Args: []float64{x, y}, Text: text, Color: color})
}

// Count returns how many ops of a kind were recorded
func (d *DrawList) Count(kind string) int {
	n := 0
	for _, op := range d.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Replay issues the recorded calls on another canvas
func (d *DrawList) Replay(c Canvas) {
	for _, op := range d.Ops {
		switch op.Kind {
		case OpClear:
			c.Clear(op.Color)
		case OpFillCircle:
			c.FillCircle(op.Args[0], op.Args[1], op.Args[2], op.Color)
		case OpStrokeCircle:
			c.StrokeCircle(op.Args[0], op.Args[1], op.Args[2], op.Color)
		case OpLine:
			c.Line(op.Args[0], op.Args[1], op.Args[2], op.Args[3], op.Color)
		case OpText:
			c.Text(op.Args[0], op.Args[1], op.Text, op.Color)
		}
	}
}
