// Package grid provides pure geometry and validity queries over a square
// board. Nothing here holds state: every function is a function of the
// arguments passed in, which keeps the search strategies trivially testable.
package grid

import (
	"math/rand"

	"github.com/brensch/snekpilot/game"
)

// directions is the fixed expansion order used everywhere neighbors are
// enumerated. Downstream algorithms break ties by this encounter order, so
// it must not change.
var directions = [4]game.Direction{game.Up, game.Down, game.Left, game.Right}

// IsValidCell reports whether a snake head could occupy p on the next tick.
//
// The last body segment is not an occupancy: the tail vacates its cell on the
// same tick the head arrives. This is the standard one-tick-lookahead
// relaxation, not a full simulation of the move.
func IsValidCell(p game.Point, boardSize int32, snake []game.Point, obstacles []game.Point) bool {
	if p.X < 0 || p.X >= boardSize || p.Y < 0 || p.Y >= boardSize {
		return false
	}

	for _, o := range obstacles {
		if p == o {
			return false
		}
	}

	for i, s := range snake {
		if i == len(snake)-1 {
			// Tail moves away this tick.
			continue
		}
		if p == s {
			return false
		}
	}

	return true
}

// Neighbors4 returns the valid orthogonal neighbors of p in the fixed order
// Up, Down, Left, Right.
func Neighbors4(p game.Point, boardSize int32, snake []game.Point, obstacles []game.Point) []game.Point {
	out := make([]game.Point, 0, 4)
	for _, d := range directions {
		n := p.Add(d.Delta())
		if IsValidCell(n, boardSize, snake, obstacles) {
			out = append(out, n)
		}
	}
	return out
}

// Manhattan returns the weighted L1 distance between a and b.
func Manhattan(a, b game.Point, weight float64) float64 {
	return weight * float64(abs32(a.X-b.X)+abs32(a.Y-b.Y))
}

// DirectionBetween returns the direction of travel from one cell toward
// another, checking the horizontal difference before the vertical one.
// Equal cells yield Right; correct call sites never pass equal cells.
func DirectionBetween(from, to game.Point) game.Direction {
	switch {
	case to.X > from.X:
		return game.Right
	case to.X < from.X:
		return game.Left
	case to.Y > from.Y:
		return game.Down
	case to.Y < from.Y:
		return game.Up
	default:
		return game.Right
	}
}

// RandomValidDirection picks uniformly among the valid neighbors of head.
// With no valid neighbor it derives a best-effort direction from the
// head-to-neck vector, defaulting to Right.
func RandomValidDirection(head game.Point, snake []game.Point, boardSize int32, obstacles []game.Point, rng *rand.Rand) game.Direction {
	neighbors := Neighbors4(head, boardSize, snake, obstacles)
	if len(neighbors) > 0 {
		return DirectionBetween(head, neighbors[rng.Intn(len(neighbors))])
	}

	if len(snake) > 1 {
		neck := snake[1]
		// Keep travelling away from the neck.
		return DirectionBetween(neck, head)
	}

	return game.Right
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
