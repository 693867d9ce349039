package search

import (
	"container/heap"
	"log/slog"
	"math"
	"math/rand"

	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/grid"
)

// Mode selects the expansion order of the shared graph search core. All four
// variants walk the same grid with the same +1 edge cost; only the key used
// to order the open set differs.
type Mode int

const (
	ModeBFS Mode = iota
	ModeDijkstra
	ModeGreedy
	ModeAStar
)

func (m Mode) String() string {
	switch m {
	case ModeBFS:
		return "bfs"
	case ModeDijkstra:
		return "dijkstra"
	case ModeGreedy:
		return "greedy"
	case ModeAStar:
		return "astar"
	default:
		return "astar"
	}
}

// GraphSearch is a shortest-path strategy: each tick it searches from the
// snake's head to the goal and takes the first step of the route. When no
// route exists it moves away from its own body instead.
type GraphSearch struct {
	mode   Mode
	weight float64

	snap  *game.Snapshot
	route []game.Point

	rng *rand.Rand
	log *slog.Logger
}

func NewGraphSearch(mode Mode, snap *game.Snapshot, cfg Config) *GraphSearch {
	return &GraphSearch{
		mode:   mode,
		weight: cfg.HeuristicWeight,
		snap:   snap.Clone(),
		rng:    cfg.rng(),
		log:    cfg.logger(),
	}
}

func (g *GraphSearch) Update(snap *game.Snapshot) {
	g.snap = snap.Clone()
}

func (g *GraphSearch) NextDirection(snake []game.Point, heading game.Direction) game.Direction {
	if len(snake) == 0 {
		return heading
	}
	head := snake[0]

	route, _ := findRoute(g.snap.BoardSize, snake, g.snap.Obstacles, head, g.snap.Goal, g.mode, g.weight)
	if len(route) > 0 {
		g.route = route
		return grid.DirectionBetween(head, route[0])
	}

	g.route = nil
	return g.safeFallback(snake, heading)
}

// safeFallback picks the neighbor of the head that maximizes the minimum
// Manhattan distance to every other body segment: a simple move-away-from-
// my-own-body heuristic for when the goal is unreachable. Ties go to the
// first candidate in Neighbors4 order.
func (g *GraphSearch) safeFallback(snake []game.Point, heading game.Direction) game.Direction {
	head := snake[0]
	neighbors := grid.Neighbors4(head, g.snap.BoardSize, snake, g.snap.Obstacles)
	if len(neighbors) == 0 {
		g.log.Warn("no safe moves, returning best-effort direction",
			"strategy", g.mode.String(), "head", head)
		return grid.RandomValidDirection(head, snake, g.snap.BoardSize, g.snap.Obstacles, g.rng)
	}

	best := neighbors[0]
	bestDist := math.Inf(-1)
	for _, n := range neighbors {
		minDist := math.Inf(1)
		for _, s := range snake[1:] {
			if d := grid.Manhattan(n, s, 1); d < minDist {
				minDist = d
			}
		}
		if minDist > bestDist {
			bestDist = minDist
			best = n
		}
	}
	return grid.DirectionBetween(head, best)
}

func (g *GraphSearch) FindPath(start, goal game.Point) []game.Point {
	route, _ := findRoute(g.snap.BoardSize, g.snap.Snake, g.snap.Obstacles, start, goal, g.mode, g.weight)
	return route
}

func (g *GraphSearch) Path() []game.Point {
	return g.route
}

func (g *GraphSearch) Visualization() Visualization {
	return Visualization{}
}

// searchNode is one frontier entry: the cell, its cumulative cost, the key
// the open heap orders by, and a parent link for route reconstruction.
type searchNode struct {
	cell   game.Point
	g      float64
	key    float64
	seq    int
	parent *searchNode
	index  int
}

// openHeap orders by key, breaking ties by insertion sequence so the first
// inserted of equal-key nodes is extracted first. That makes BFS exactly
// FIFO and keeps every variant deterministic.
type openHeap []*searchNode

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key < h[j].key
	}
	return h[i].seq < h[j].seq
}
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *openHeap) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

func orderingKey(mode Mode, weight, g, h float64, seq int) float64 {
	switch mode {
	case ModeBFS:
		return float64(seq)
	case ModeDijkstra:
		return g
	case ModeGreedy:
		return h
	default:
		return g + weight*h
	}
}

// findRoute runs the shared search core and returns the route from just
// after start to goal, plus the number of nodes expanded. A nil route means
// no 4-connected sequence of valid cells reaches the goal.
func findRoute(boardSize int32, snake, obstacles []game.Point, start, goal game.Point, mode Mode, weight float64) ([]game.Point, int) {
	open := &openHeap{}
	heap.Init(open)
	byCell := make(map[game.Point]*searchNode)
	closed := make(map[game.Point]bool)
	seq := 0
	expanded := 0

	root := &searchNode{
		cell: start,
		g:    0,
		key:  orderingKey(mode, weight, 0, grid.Manhattan(start, goal, 1), 0),
		seq:  0,
	}
	heap.Push(open, root)
	byCell[start] = root

	for open.Len() > 0 {
		node := heap.Pop(open).(*searchNode)
		delete(byCell, node.cell)
		closed[node.cell] = true
		expanded++

		if node.cell == goal {
			return reconstruct(node), expanded
		}

		for _, n := range grid.Neighbors4(node.cell, boardSize, snake, obstacles) {
			if closed[n] {
				continue
			}

			tentativeG := node.g + 1

			if existing, ok := byCell[n]; ok {
				if tentativeG < existing.g {
					existing.g = tentativeG
					existing.key = orderingKey(mode, weight, tentativeG, grid.Manhattan(n, goal, 1), existing.seq)
					existing.parent = node
					heap.Fix(open, existing.index)
				}
				continue
			}

			seq++
			child := &searchNode{
				cell:   n,
				g:      tentativeG,
				key:    orderingKey(mode, weight, tentativeG, grid.Manhattan(n, goal, 1), seq),
				seq:    seq,
				parent: node,
			}
			heap.Push(open, child)
			byCell[n] = child
		}
	}

	return nil, expanded
}

// reconstruct walks parent links back to the root and reverses, excluding
// the start cell itself.
func reconstruct(node *searchNode) []game.Point {
	var rev []game.Point
	for n := node; n.parent != nil; n = n.parent {
		rev = append(rev, n.cell)
	}
	route := make([]game.Point, len(rev))
	for i, p := range rev {
		route[len(rev)-1-i] = p
	}
	return route
}
