package algorithms

// Neighbour order is fixed: up, right, down, left, then the four diagonals.
// It decides which of several equally short routes is discovered first.
var searchDirections = [8][2]int{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}

// SearchResult - outcome of a best-effort breadth-first search
type SearchResult struct {
	Complete bool // goal cell was reached
	Cell     Cell // goal cell, or the visited cell closest to it
	Target   Vec2 // pixel center of Cell
	Visited  int  // cells popped from the frontier
}

// Reachable - existence check. Returns true the moment the goal cell is
// popped and false once the frontier is exhausted. A blocked start or goal
// cell is never reachable.
func (g *OccupancyGrid) Reachable(start, goal Cell) bool {
	reached := false
	g.bfs(start, func(c Cell) bool {
		if c == goal {
			reached = true
			return true
		}
		return false
	})
	return reached
}

// BestEffort runs the same traversal but remembers the visited cell with the
// smallest straight-line distance to the goal. The first such cell wins ties.
func (g *OccupancyGrid) BestEffort(start, goal Cell) SearchResult {
	goalCenter := g.CellCenter(goal)
	best := start
	bestDist := g.CellCenter(start).Dist(goalCenter)
	res := SearchResult{}

	res.Visited = g.bfs(start, func(c Cell) bool {
		if c == goal {
			res.Complete = true
			best = c
			return true
		}
		if d := g.CellCenter(c).Dist(goalCenter); d < bestDist {
			best = c
			bestDist = d
		}
		return false
	})

	res.Cell = best
	res.Target = g.CellCenter(best)
	return res
}

// TracePath returns the cell sequence from start to the goal, or to the
// best-effort cell when the goal can't be reached.
func (g *OccupancyGrid) TracePath(start, goal Cell) ([]Cell, bool) {
	if !g.InBounds(start) {
		return nil, false
	}
	parent := make([]int, g.Cols*g.Rows)
	for i := range parent {
		parent[i] = -1
	}
	idx := func(c Cell) int { return c.Row*g.Cols + c.Col }

	goalCenter := g.CellCenter(goal)
	best := start
	bestDist := g.CellCenter(start).Dist(goalCenter)
	complete := false

	g.bfsWithParent(start, func(c, from Cell) bool {
		if c != start {
			parent[idx(c)] = idx(from)
		}
		if c == goal {
			complete = true
			best = c
			return true
		}
		if d := g.CellCenter(c).Dist(goalCenter); d < bestDist {
			best = c
			bestDist = d
		}
		return false
	})

	var path []Cell
	for i := idx(best); i != -1; i = parent[i] {
		path = append(path, Cell{Col: i % g.Cols, Row: i / g.Cols})
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path, complete
}

// bfs visits cells in FIFO order and returns how many were popped.
// visit returns true to stop early.
func (g *OccupancyGrid) bfs(start Cell, visit func(Cell) bool) int {
	return g.bfsWithParent(start, func(c, _ Cell) bool { return visit(c) })
}

func (g *OccupancyGrid) bfsWithParent(start Cell, visit func(c, from Cell) bool) int {
	if g.IsBlocked(start) {
		return 0
	}

	visited := make([]bool, g.Cols*g.Rows)
	visited[start.Row*g.Cols+start.Col] = true

	type entry struct{ cell, from Cell }
	queue := make([]entry, 0, g.Cols+g.Rows)
	queue = append(queue, entry{start, start})
	popped := 0

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		popped++
		if visit(cur.cell, cur.from) {
			return popped
		}

		for _, d := range searchDirections {
			next := Cell{Col: cur.cell.Col + d[0], Row: cur.cell.Row + d[1]}
			if g.IsBlocked(next) {
				continue
			}
			i := next.Row*g.Cols + next.Col
			if visited[i] {
				continue
			}
			visited[i] = true
			queue = append(queue, entry{next, cur.cell})
		}
	}
	return popped
}
