package search

import (
	"testing"

	"github.com/brensch/snekpilot/game"
)

func TestNew_KnownNames(t *testing.T) {
	snap := snapshot(6, []game.Point{{X: 2, Y: 2}}, game.Point{X: 4, Y: 4}, nil)

	cases := []struct {
		name string
		mode Mode
	}{
		{BFS, ModeBFS},
		{Dijkstra, ModeDijkstra},
		{Greedy, ModeGreedy},
		{AStar, ModeAStar},
	}
	for _, c := range cases {
		s := New(c.name, snap, DefaultConfig())
		gs, ok := s.(*GraphSearch)
		if !ok {
			t.Fatalf("%s: got %T, want *GraphSearch", c.name, s)
		}
		if gs.mode != c.mode {
			t.Fatalf("%s: mode=%v want=%v", c.name, gs.mode, c.mode)
		}
	}

	if _, ok := New(Hamiltonian, snap, DefaultConfig()).(*CycleFollower); !ok {
		t.Fatalf("hamiltonian should construct a *CycleFollower")
	}
}

func TestNew_UnknownNameDefaultsToAStar(t *testing.T) {
	snap := snapshot(6, []game.Point{{X: 2, Y: 2}}, game.Point{X: 4, Y: 4}, nil)

	s := New("minimax", snap, DefaultConfig())
	gs, ok := s.(*GraphSearch)
	if !ok || gs.mode != ModeAStar {
		t.Fatalf("unknown name should default to astar, got %T", s)
	}
}

func TestNew_CopiesSnapshot(t *testing.T) {
	snake := []game.Point{{X: 2, Y: 2}}
	snap := snapshot(6, snake, game.Point{X: 4, Y: 4}, nil)

	s := New(AStar, snap, DefaultConfig())

	// Mutating the driver's state after handoff must not affect the strategy.
	snap.Snake[0] = game.Point{X: 0, Y: 0}
	snap.Goal = game.Point{X: 5, Y: 5}

	gs := s.(*GraphSearch)
	if gs.snap.Snake[0] != (game.Point{X: 2, Y: 2}) || gs.snap.Goal != (game.Point{X: 4, Y: 4}) {
		t.Fatalf("strategy aliases the driver snapshot: %+v", gs.snap)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HeuristicWeight != 1.0 {
		t.Fatalf("heuristic weight=%v want=1.0", cfg.HeuristicWeight)
	}
	if cfg.ShortcutThreshold != 33 {
		t.Fatalf("shortcut threshold=%d want=33", cfg.ShortcutThreshold)
	}
}
