package algorithms

import "math"

// CellPath converts a cell sequence into pixel-space cell centers
func (g *OccupancyGrid) CellPath(cells []Cell) []Vec2 {
	out := make([]Vec2, len(cells))
	for i, c := range cells {
		out[i] = g.CellCenter(c)
	}
	return out
}

// SimplifyPath - Douglas-Peucker reduction of a polyline
func SimplifyPath(path []Vec2, epsilon float64) []Vec2 {
	if len(path) < 3 {
		return path
	}

	// farthest point from the chord
	dmax := 0.0
	index := 0
	for i := 1; i < len(path)-1; i++ {
		d := perpendicularDistance(path[i], path[0], path[len(path)-1])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax > epsilon {
		left := SimplifyPath(path[:index+1], epsilon)
		right := SimplifyPath(path[index:], epsilon)
		out := make([]Vec2, 0, len(left)+len(right)-1)
		out = append(out, left[:len(left)-1]...)
		return append(out, right...)
	}

	return []Vec2{path[0], path[len(path)-1]}
}

// perpendicularDistance - distance from point to the segment lineStart-lineEnd
func perpendicularDistance(point, lineStart, lineEnd Vec2) float64 {
	d := lineEnd.Sub(lineStart)
	if d.IsZero() {
		return point.Dist(lineStart)
	}

	t := ((point.X-lineStart.X)*d.X + (point.Y-lineStart.Y)*d.Y) / (d.X*d.X + d.Y*d.Y)
	t = math.Max(0, math.Min(1, t))

	return point.Dist(lineStart.Add(d.Scale(t)))
}
