package search

import (
	"log/slog"
	"math/rand"

	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/grid"
)

// cycleLookahead is how many cycle steps ahead the follower probes for a
// safe cell before giving up on the tour for this tick. The immediate next
// cell can be transiently occupied by a lagging tail segment.
const cycleLookahead = 5

// minFreeAfterEatPercent suppresses shortcuts when eating the goal would
// leave less than this share of the board unoccupied.
const minFreeAfterEatPercent = 20

// maxShortcutFillPercent suppresses shortcuts once the snake covers more
// than this share of the board. Deviating from the tour at high occupancy
// risks cutting the head off from the tail.
const maxShortcutFillPercent = 70

// CycleFollower commits to a precomputed board-spanning tour so the snake
// eventually covers every free cell, avoiding the trap-itself failure mode
// of purely local search. It still eats efficiently by taking bounded
// off-tour shortcuts when doing so provably keeps the tail reachable.
//
// The tour is a true closed cycle only for even board sizes with no
// obstacles. Odd sizes and obstacle layouts get a best-effort tour; the
// fallback ladder in NextDirection is the safety net when the tour breaks.
type CycleFollower struct {
	snap *game.Snapshot

	cycle  []game.Point
	index  map[game.Point]int
	closed bool

	shortcutThreshold int
	route             []game.Point

	// astar handles the fallback when the head is off the tour.
	astar *GraphSearch

	rng *rand.Rand
	log *slog.Logger
}

func NewCycleFollower(snap *game.Snapshot, cfg Config) *CycleFollower {
	c := &CycleFollower{
		snap:              snap.Clone(),
		shortcutThreshold: cfg.ShortcutThreshold,
		astar:             NewGraphSearch(ModeAStar, snap, cfg),
		rng:               cfg.rng(),
		log:               cfg.logger(),
	}
	c.buildCycle()
	return c
}

// buildCycle lays a boustrophedon tour over every free cell and indexes it
// for O(1) position lookups.
//
// Even board sizes reserve column 0 for the return leg: row 0 runs full
// width, rows 1..n-1 serpentine over columns 1..n-1, and column 0 walks back
// up to close the loop. Odd board sizes cannot close (no Hamiltonian cycle
// exists on an odd square grid), so the degraded variant serpentines over
// all but the last column and bottom row, sweeps the bottom row, and climbs
// the last column, leaving the wraparound open.
func (c *CycleFollower) buildCycle() {
	n := c.snap.BoardSize
	if n <= 0 {
		return
	}

	c.index = make(map[game.Point]int, c.snap.Cells())

	if n%2 == 0 {
		for x := int32(0); x < n; x++ {
			c.appendFree(game.Point{X: x, Y: 0})
		}
		for y := int32(1); y < n; y++ {
			if y%2 == 1 {
				for x := n - 1; x >= 1; x-- {
					c.appendFree(game.Point{X: x, Y: y})
				}
			} else {
				for x := int32(1); x < n; x++ {
					c.appendFree(game.Point{X: x, Y: y})
				}
			}
		}
		for y := n - 1; y >= 1; y-- {
			c.appendFree(game.Point{X: 0, Y: y})
		}
	} else {
		c.log.Warn("odd board size, cycle cannot close", "board_size", n)
		for y := int32(0); y < n-1; y++ {
			if y%2 == 0 {
				for x := int32(0); x < n-1; x++ {
					c.appendFree(game.Point{X: x, Y: y})
				}
			} else {
				for x := n - 2; x >= 0; x-- {
					c.appendFree(game.Point{X: x, Y: y})
				}
			}
		}
		for x := int32(0); x < n; x++ {
			c.appendFree(game.Point{X: x, Y: n - 1})
		}
		for y := n - 2; y >= 0; y-- {
			c.appendFree(game.Point{X: n - 1, Y: y})
		}
	}

	c.closed = c.verifyCycle()
	if !c.closed {
		c.log.Warn("tour is not a closed cycle, shortest-path fallback will cover gaps",
			"board_size", n, "obstacles", len(c.snap.Obstacles), "cells", len(c.cycle))
	}
}

func (c *CycleFollower) appendFree(p game.Point) {
	for _, o := range c.snap.Obstacles {
		if p == o {
			return
		}
	}
	if _, ok := c.index[p]; ok {
		return
	}
	c.index[p] = len(c.cycle)
	c.cycle = append(c.cycle, p)
}

// verifyCycle checks that consecutive tour cells, including the wraparound,
// are 4-adjacent. Obstacles and odd sizes generally break this; the result
// is advisory only.
func (c *CycleFollower) verifyCycle() bool {
	if len(c.cycle) < 4 {
		return false
	}
	for i := range c.cycle {
		a := c.cycle[i]
		b := c.cycle[(i+1)%len(c.cycle)]
		if grid.Manhattan(a, b, 1) != 1 {
			return false
		}
	}
	return true
}

func (c *CycleFollower) Update(snap *game.Snapshot) {
	c.snap = snap.Clone()
	c.astar.Update(snap)
}

func (c *CycleFollower) NextDirection(snake []game.Point, heading game.Direction) game.Direction {
	if len(snake) == 0 {
		return heading
	}
	head := snake[0]

	idx, onCycle := c.index[head]
	if !onCycle || len(c.cycle) == 0 {
		return c.fallback(snake, heading)
	}

	if next, ok := c.tryShortcut(snake); ok {
		return grid.DirectionBetween(head, next)
	}

	for k := 1; k <= cycleLookahead; k++ {
		cand := c.cycle[(idx+k)%len(c.cycle)]
		if grid.IsValidCell(cand, c.snap.BoardSize, snake, c.snap.Obstacles) {
			c.route = []game.Point{cand}
			return grid.DirectionBetween(head, cand)
		}
	}

	return c.fallback(snake, heading)
}

// fallback is the escalating degradation ladder for a broken or blocked
// tour: shortest-path to the goal, then a random safe neighbor, then a
// forced advance along the raw tour even if unsafe. The forced advance may
// collide; that is a documented failure mode, not corrected further.
func (c *CycleFollower) fallback(snake []game.Point, heading game.Direction) game.Direction {
	head := snake[0]

	if route := c.astar.FindPath(head, c.snap.Goal); len(route) > 0 &&
		grid.IsValidCell(route[0], c.snap.BoardSize, snake, c.snap.Obstacles) {
		c.log.Warn("head off tour, following shortest path", "head", head)
		c.route = route
		return grid.DirectionBetween(head, route[0])
	}

	c.route = nil

	if neighbors := grid.Neighbors4(head, c.snap.BoardSize, snake, c.snap.Obstacles); len(neighbors) > 0 {
		c.log.Warn("head off tour with no route to goal, taking random safe move", "head", head)
		return grid.DirectionBetween(head, neighbors[c.rng.Intn(len(neighbors))])
	}

	if idx, ok := c.index[head]; ok && len(c.cycle) > 0 {
		next := c.cycle[(idx+1)%len(c.cycle)]
		c.log.Warn("no safe moves, forcing raw tour advance", "head", head, "next", next)
		return grid.DirectionBetween(head, next)
	}

	c.log.Warn("no safe moves and no tour position, returning best-effort direction", "head", head)
	return grid.RandomValidDirection(head, snake, c.snap.BoardSize, c.snap.Obstacles, c.rng)
}

// tryShortcut evaluates an off-tour deviation straight at the goal and, when
// eligible, returns the first step of a direct breadth-first route to it.
func (c *CycleFollower) tryShortcut(snake []game.Point) (game.Point, bool) {
	if !c.isShortcutSafe(snake) {
		return game.Point{}, false
	}

	route, _ := findRoute(c.snap.BoardSize, snake, c.snap.Obstacles, snake[0], c.snap.Goal, ModeBFS, 1)
	if len(route) == 0 {
		return game.Point{}, false
	}

	if !c.canReachTailAfterShortcut(snake, route) {
		return game.Point{}, false
	}

	c.route = route
	return route[0], true
}

// isShortcutSafe applies the eligibility gates that do not require a trial
// route: fill-ratio bounds, the goal sitting on the tour within the bounded
// forward window, and no body segment between head and goal along the
// forward tour direction.
func (c *CycleFollower) isShortcutSafe(snake []game.Point) bool {
	cells := c.snap.Cells()
	if cells == 0 || len(c.cycle) == 0 {
		return false
	}

	fill := float64(len(snake)) / float64(cells)
	if fill > float64(maxShortcutFillPercent)/100 {
		return false
	}

	freeAfterEat := cells - (len(snake) + 1)
	if freeAfterEat < cells*minFreeAfterEatPercent/100 {
		return false
	}

	// A malformed threshold yields an empty window: never eligible.
	window := int(c.snap.BoardSize) * c.shortcutThreshold / 100
	if window <= 0 {
		return false
	}

	headIdx, ok := c.index[snake[0]]
	if !ok {
		return false
	}
	goalIdx, ok := c.index[c.snap.Goal]
	if !ok {
		return false
	}

	if grid.Manhattan(snake[0], c.snap.Goal, 1) > float64(window) {
		return false
	}

	occupied := make(map[game.Point]bool, len(snake))
	for _, s := range snake {
		occupied[s] = true
	}
	forward := (goalIdx - headIdx + len(c.cycle)) % len(c.cycle)
	for k := 1; k < forward; k++ {
		if occupied[c.cycle[(headIdx+k)%len(c.cycle)]] {
			return false
		}
	}

	return true
}

// canReachTailAfterShortcut simulates walking the shortcut route, eating at
// the goal, and checks by breadth-first search that the new head can still
// reach the new tail. A shortcut that severs head from tail would coil the
// snake into a dead pocket.
func (c *CycleFollower) canReachTailAfterShortcut(snake []game.Point, route []game.Point) bool {
	newLen := len(snake) + 1

	body := make([]game.Point, 0, len(route)+len(snake))
	for i := len(route) - 1; i >= 0; i-- {
		body = append(body, route[i])
	}
	body = append(body, snake...)
	if len(body) > newLen {
		body = body[:newLen]
	}

	head := body[0]
	tail := body[len(body)-1]

	reach, _ := findRoute(c.snap.BoardSize, body, c.snap.Obstacles, head, tail, ModeBFS, 1)
	return reach != nil
}

func (c *CycleFollower) FindPath(start, goal game.Point) []game.Point {
	route, _ := findRoute(c.snap.BoardSize, c.snap.Snake, c.snap.Obstacles, start, goal, ModeBFS, 1)
	return route
}

func (c *CycleFollower) Path() []game.Point {
	return c.route
}

// Visualization exposes the full tour for diagnostic rendering.
func (c *CycleFollower) Visualization() Visualization {
	return Visualization{Cycle: c.cycle}
}
