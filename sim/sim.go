// Package sim advances the single-snake world one tick at a time. The
// transition function is pure over snapshots so callers can replay or branch
// games freely; terminal detection lives here rather than in the search
// strategies, which only ever answer "which direction next".
package sim

import (
	"math/rand"

	"github.com/brensch/snekpilot/controller"
	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/search"
)

// Cause names how a game ended.
type Cause string

const (
	CauseNone     Cause = ""
	CauseWall     Cause = "wall"
	CauseSelf     Cause = "self"
	CauseObstacle Cause = "obstacle"
)

// Outcome describes what one tick did to the world.
type Outcome struct {
	Terminal bool
	Won      bool
	Ate      bool
	Cause    Cause
}

// Step applies one move and returns the resulting snapshot. The input is
// never mutated. Moving onto the current tail cell is legal when not eating
// because the tail vacates in the same tick. On a terminal tick the returned
// snapshot keeps the pre-collision body so callers can archive the final
// position.
//
// The rng places the respawned goal; it must not be nil when the snake can
// still eat.
func Step(snap *game.Snapshot, dir game.Direction, rng *rand.Rand) (*game.Snapshot, Outcome) {
	next := snap.Clone()
	next.Turn++

	if len(next.Snake) == 0 {
		return next, Outcome{Terminal: true, Cause: CauseSelf}
	}

	newHead := next.Snake[0].Add(dir.Delta())

	if newHead.X < 0 || newHead.X >= next.BoardSize || newHead.Y < 0 || newHead.Y >= next.BoardSize {
		return next, Outcome{Terminal: true, Cause: CauseWall}
	}
	for _, o := range next.Obstacles {
		if newHead == o {
			return next, Outcome{Terminal: true, Cause: CauseObstacle}
		}
	}

	ate := newHead == next.Goal

	body := make([]game.Point, 0, len(next.Snake)+1)
	body = append(body, newHead)
	body = append(body, next.Snake...)
	if !ate {
		body = body[:len(body)-1]
	}

	// Self collision is checked against the post-move body, so a non-eating
	// move into the old tail cell passes.
	for _, p := range body[1:] {
		if newHead == p {
			return next, Outcome{Terminal: true, Cause: CauseSelf}
		}
	}

	next.Snake = body

	if !ate {
		return next, Outcome{}
	}

	goal, ok := spawnGoal(next, rng)
	if !ok {
		// Board is full: the snake covered every free cell.
		return next, Outcome{Terminal: true, Won: true, Ate: true}
	}
	next.Goal = goal
	return next, Outcome{Ate: true}
}

// spawnGoal picks a uniform random free cell, excluding the body and
// obstacles. Returns false when no free cell remains.
func spawnGoal(snap *game.Snapshot, rng *rand.Rand) (game.Point, bool) {
	occupied := make(map[game.Point]bool, len(snap.Snake)+len(snap.Obstacles))
	for _, p := range snap.Snake {
		occupied[p] = true
	}
	for _, o := range snap.Obstacles {
		occupied[o] = true
	}

	available := make([]game.Point, 0, snap.Cells()-len(occupied))
	for y := int32(0); y < snap.BoardSize; y++ {
		for x := int32(0); x < snap.BoardSize; x++ {
			p := game.Point{X: x, Y: y}
			if !occupied[p] {
				available = append(available, p)
			}
		}
	}
	if len(available) == 0 {
		return game.Point{}, false
	}
	return available[rng.Intn(len(available))], true
}

// NewGame lays out a fresh board: a one-segment snake at the center and a
// goal on a random free cell.
func NewGame(boardSize int32, obstacles []game.Point, rng *rand.Rand) *game.Snapshot {
	snap := &game.Snapshot{
		BoardSize: boardSize,
		Snake:     []game.Point{{X: boardSize / 2, Y: boardSize / 2}},
		Obstacles: obstacles,
	}
	if goal, ok := spawnGoal(snap, rng); ok {
		snap.Goal = goal
	}
	return snap
}

// GameResult summarizes a finished game for archiving and reporting.
type GameResult struct {
	Strategy string
	Ticks    int32
	Score    int32
	Died     bool
	Won      bool
	Cause    Cause
}

// TurnFunc observes each tick before it is applied: the snapshot the
// decision was made on and the chosen direction.
type TurnFunc func(turn int32, snap *game.Snapshot, dir game.Direction)

// Play runs one full game with the named strategy and returns its result.
// maxTicks bounds runaway games (the hamiltonian follower can legitimately
// run for boardSize^2 ticks per goal); onTurn may be nil.
func Play(strategy string, boardSize int32, obstacles []game.Point, cfg search.Config, rng *rand.Rand, maxTicks int32, onTurn TurnFunc) GameResult {
	snap := NewGame(boardSize, obstacles, rng)
	ctrl := controller.New(strategy, snap, cfg)

	result := GameResult{Strategy: strategy}

	for tick := int32(0); tick < maxTicks; tick++ {
		ctrl.Update(snap)
		dir := ctrl.NextDirection()
		if onTurn != nil {
			onTurn(snap.Turn, snap, dir)
		}

		next, outcome := Step(snap, dir, rng)
		result.Ticks++
		if outcome.Ate {
			result.Score++
		}
		snap = next

		if outcome.Terminal {
			result.Won = outcome.Won
			result.Died = !outcome.Won
			result.Cause = outcome.Cause
			return result
		}
	}

	return result
}
