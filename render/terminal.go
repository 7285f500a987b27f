package render

import (
	"math"

	"github.com/gdamore/tcell/v2"
)

const (
	fillRune   = '█'
	strokeRune = '○'
	lineRune   = '·'
)

// TerminalCanvas draws onto a tcell screen, scaling canvas pixels to cells
type TerminalCanvas struct {
	screen tcell.Screen
	width  float64 // canvas extent in pixels
	height float64
	bg     tcell.Color
}

// NewTerminalCanvas - canvas of width x height pixels mapped onto screen
func NewTerminalCanvas(screen tcell.Screen, width, height float64) *TerminalCanvas {
	return &TerminalCanvas{screen: screen, width: width, height: height, bg: tcell.ColorBlack}
}

// SetExtent changes the pixel extent mapped onto the screen
func (t *TerminalCanvas) SetExtent(width, height float64) {
	t.width, t.height = width, height
}

// ToCanvas maps a screen cell to the pixel at its center
func (t *TerminalCanvas) ToCanvas(col, row int) (float64, float64) {
	sx, sy := t.scale()
	return (float64(col) + 0.5) / sx, (float64(row) + 0.5) / sy
}

// scale - cells per pixel on each axis
func (t *TerminalCanvas) scale() (float64, float64) {
	cols, rows := t.screen.Size()
	if t.width <= 0 || t.height <= 0 {
		return 1, 1
	}
	return float64(cols) / t.width, float64(rows) / t.height
}

func (t *TerminalCanvas) style(color string) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.GetColor(color)).Background(t.bg)
}

func (t *TerminalCanvas) Clear(color string) {
	t.bg = tcell.GetColor(color)
	t.screen.SetStyle(tcell.StyleDefault.Background(t.bg))
	t.screen.Clear()
}

func (t *TerminalCanvas) FillCircle(x, y, r float64, color string) {
	t.circle(x, y, r, color, true)
}

func (t *TerminalCanvas) StrokeCircle(x, y, r float64, color string) {
	t.circle(x, y, r, color, false)
}

func (t *TerminalCanvas) circle(x, y, r float64, color string, fill bool) {
	sx, sy := t.scale()
	cols, rows := t.screen.Size()
	st := t.style(color)

	// one cell of tolerance for the outline
	band := math.Max(1/sx, 1/sy)

	minCol := max(0, int(math.Floor((x-r)*sx)))
	maxCol := min(cols-1, int(math.Ceil((x+r)*sx)))
	minRow := max(0, int(math.Floor((y-r)*sy)))
	maxRow := min(rows-1, int(math.Ceil((y+r)*sy)))

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			px, py := t.ToCanvas(col, row)
			d := math.Hypot(px-x, py-y)
			switch {
			case fill && d <= math.Max(r, band/2):
				t.screen.SetContent(col, row, fillRune, nil, st)
			case !fill && math.Abs(d-r) <= band/2:
				t.screen.SetContent(col, row, strokeRune, nil, st)
			}
		}
	}
}

func (t *TerminalCanvas) Line(x1, y1, x2, y2 float64, color string) {
	sx, sy := t.scale()
	cols, rows := t.screen.Size()
	st := t.style(color)

	c1, r1 := x1*sx, y1*sy
	c2, r2 := x2*sx, y2*sy
	steps := int(math.Ceil(math.Max(math.Abs(c2-c1), math.Abs(r2-r1))))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		col := int(math.Floor(c1 + (c2-c1)*f))
		row := int(math.Floor(r1 + (r2-r1)*f))
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		t.screen.SetContent(col, row, lineRune, nil, st)
	}
}

func (t *TerminalCanvas) Text(x, y float64, text, color string) {
	sx, sy := t.scale()
	cols, rows := t.screen.Size()
	col := int(math.Floor(x * sx))
	row := int(math.Floor(y * sy))
	if row < 0 || row >= rows {
		return
	}
	st := t.style(color)
	for _, r := range text {
		if col >= cols {
			return
		}
		if col >= 0 {
			t.screen.SetContent(col, row, r, nil, st)
		}
		col++
	}
}
