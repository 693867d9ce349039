package sim

import (
	"math/rand"
	"testing"

	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/search"
)

func TestStep_MovesWithoutEating(t *testing.T) {
	snap := &game.Snapshot{
		BoardSize: 6,
		Snake:     []game.Point{{X: 2, Y: 2}, {X: 1, Y: 2}},
		Goal:      game.Point{X: 5, Y: 5},
	}
	rng := rand.New(rand.NewSource(1))

	next, outcome := Step(snap, game.Right, rng)
	if outcome.Terminal || outcome.Ate {
		t.Fatalf("plain move should be non-terminal, got %+v", outcome)
	}
	want := []game.Point{{X: 3, Y: 2}, {X: 2, Y: 2}}
	if len(next.Snake) != 2 || next.Snake[0] != want[0] || next.Snake[1] != want[1] {
		t.Fatalf("snake=%v want=%v", next.Snake, want)
	}
	if next.Turn != snap.Turn+1 {
		t.Fatalf("turn=%d want=%d", next.Turn, snap.Turn+1)
	}

	// Input snapshot untouched.
	if snap.Snake[0] != (game.Point{X: 2, Y: 2}) || snap.Turn != 0 {
		t.Fatalf("input snapshot mutated: %+v", snap)
	}
}

func TestStep_EatingGrowsAndRespawnsGoal(t *testing.T) {
	snap := &game.Snapshot{
		BoardSize: 6,
		Snake:     []game.Point{{X: 2, Y: 2}, {X: 1, Y: 2}},
		Goal:      game.Point{X: 3, Y: 2},
	}
	rng := rand.New(rand.NewSource(1))

	next, outcome := Step(snap, game.Right, rng)
	if !outcome.Ate || outcome.Terminal {
		t.Fatalf("expected a non-terminal eat, got %+v", outcome)
	}
	if len(next.Snake) != 3 {
		t.Fatalf("snake len=%d want=3", len(next.Snake))
	}
	if next.Goal == snap.Goal {
		t.Fatalf("goal should respawn elsewhere")
	}
	for _, p := range next.Snake {
		if next.Goal == p {
			t.Fatalf("goal %v respawned on the body", next.Goal)
		}
	}
}

func TestStep_TailCellIsLegalWhenNotEating(t *testing.T) {
	// The snake loops around a 2x2 block; stepping onto its own tail is fine
	// because the tail vacates this tick.
	snap := &game.Snapshot{
		BoardSize: 6,
		Snake:     []game.Point{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 1}},
		Goal:      game.Point{X: 5, Y: 5},
	}
	rng := rand.New(rand.NewSource(1))

	next, outcome := Step(snap, game.Right, rng)
	if outcome.Terminal {
		t.Fatalf("tail-chase move should survive, got %+v", outcome)
	}
	if next.Snake[0] != (game.Point{X: 2, Y: 1}) {
		t.Fatalf("head=%v want=(2,1)", next.Snake[0])
	}
}

func TestStep_TerminalCauses(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	cases := []struct {
		name  string
		snap  *game.Snapshot
		dir   game.Direction
		cause Cause
	}{
		{
			name: "wall",
			snap: &game.Snapshot{BoardSize: 4,
				Snake: []game.Point{{X: 0, Y: 0}}, Goal: game.Point{X: 3, Y: 3}},
			dir:   game.Up,
			cause: CauseWall,
		},
		{
			name: "obstacle",
			snap: &game.Snapshot{BoardSize: 4,
				Snake:     []game.Point{{X: 1, Y: 1}},
				Goal:      game.Point{X: 3, Y: 3},
				Obstacles: []game.Point{{X: 2, Y: 1}}},
			dir:   game.Right,
			cause: CauseObstacle,
		},
		{
			name: "self",
			snap: &game.Snapshot{BoardSize: 6,
				Snake: []game.Point{
					{X: 2, Y: 2}, {X: 1, Y: 2}, {X: 1, Y: 1},
					{X: 2, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 2},
				},
				Goal: game.Point{X: 5, Y: 5}},
			dir:   game.Up,
			cause: CauseSelf,
		},
	}

	for _, c := range cases {
		_, outcome := Step(c.snap, c.dir, rng)
		if !outcome.Terminal || outcome.Cause != c.cause {
			t.Fatalf("%s: outcome=%+v want terminal cause=%q", c.name, outcome, c.cause)
		}
	}
}

func TestStep_WinsWhenBoardFills(t *testing.T) {
	snap := &game.Snapshot{
		BoardSize: 2,
		Snake:     []game.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}},
		Goal:      game.Point{X: 0, Y: 1},
	}
	rng := rand.New(rand.NewSource(1))

	_, outcome := Step(snap, game.Down, rng)
	if !outcome.Terminal || !outcome.Won || !outcome.Ate {
		t.Fatalf("filling the board should win, got %+v", outcome)
	}
}

func TestNewGame_Layout(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	obstacles := []game.Point{{X: 0, Y: 0}, {X: 5, Y: 5}}

	snap := NewGame(6, obstacles, rng)
	if len(snap.Snake) != 1 || snap.Snake[0] != (game.Point{X: 3, Y: 3}) {
		t.Fatalf("snake=%v want single segment at center", snap.Snake)
	}
	if snap.Goal == snap.Snake[0] {
		t.Fatalf("goal spawned on the snake")
	}
	for _, o := range obstacles {
		if snap.Goal == o {
			t.Fatalf("goal spawned on obstacle %v", o)
		}
	}
}

func TestPlay_RunsToCompletion(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	cfg := search.DefaultConfig()
	cfg.Seed = 11

	var turns int32
	result := Play(search.AStar, 6, nil, cfg, rng, 500, func(turn int32, snap *game.Snapshot, dir game.Direction) {
		turns++
	})

	if result.Strategy != search.AStar {
		t.Fatalf("strategy=%q want=%q", result.Strategy, search.AStar)
	}
	if result.Ticks == 0 || result.Ticks > 500 {
		t.Fatalf("ticks=%d out of range", result.Ticks)
	}
	if turns != result.Ticks {
		t.Fatalf("callback ran %d times for %d ticks", turns, result.Ticks)
	}
	if result.Score < 1 {
		t.Fatalf("score=%d, expected at least one goal on an open 6x6 board", result.Score)
	}
	if result.Died && result.Cause == CauseNone {
		t.Fatalf("death without a cause: %+v", result)
	}
}
