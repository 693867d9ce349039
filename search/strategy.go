// Package search implements the interchangeable pathfinding strategies that
// drive the snake: uninformed and weighted shortest-path search (BFS,
// Dijkstra, Greedy, A*) and a cycle follower that commits to a board-spanning
// tour with opportunistic shortcuts.
//
// A strategy owns a private copy of the latest world snapshot. It never
// mutates its inputs and never fails: every "no solution" outcome degrades to
// a best-effort direction so the driver always has a move to apply.
package search

import (
	"log/slog"
	"math/rand"

	"github.com/brensch/snekpilot/game"
)

// Strategy names accepted by New. Unrecognized names fall back to AStar.
const (
	AStar       = "astar"
	BFS         = "bfs"
	Greedy      = "greedy"
	Dijkstra    = "dijkstra"
	Hamiltonian = "hamiltonian"
)

const (
	DefaultHeuristicWeight   = 1.0
	DefaultShortcutThreshold = 33
)

// Strategy is the capability contract shared by all pathfinding variants.
type Strategy interface {
	// Update refreshes the strategy's private copy of the world before a
	// decision. It is idempotent and copies its input.
	Update(snap *game.Snapshot)

	// NextDirection returns the move for this tick. It always returns a
	// direction; a fully boxed-in snake gets a best-effort move and the
	// driver detects the resulting collision.
	NextDirection(snake []game.Point, heading game.Direction) game.Direction

	// FindPath returns an ordered route from just after start to goal, or
	// nil when no 4-connected route of valid cells exists.
	FindPath(start, goal game.Point) []game.Point

	// Path returns the most recently computed route, for visualization only.
	Path() []game.Point

	// Visualization exposes strategy-specific diagnostic data.
	Visualization() Visualization
}

// Visualization is the optional diagnostic bag a strategy exposes to
// renderers. It has no effect on control flow.
type Visualization struct {
	Cycle []game.Point `json:"cycle,omitempty"`
}

// Config carries the tunables shared across strategies. The zero value is
// usable; DefaultConfig fills in the documented defaults.
type Config struct {
	// HeuristicWeight scales the Manhattan heuristic. A* only.
	HeuristicWeight float64

	// ShortcutThreshold is the percentage of the board size used to bound
	// how far the cycle follower may deviate from its tour. Values outside
	// [0,100] make shortcuts never eligible rather than erroring.
	ShortcutThreshold int

	// Seed makes tie-breaking and fallback moves reproducible.
	Seed int64

	// Logger receives warning-level diagnostics for degraded conditions
	// (odd board sizes, fragmented cycles, forced unsafe moves). Nil uses
	// slog.Default(). Diagnostics never alter control flow.
	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		HeuristicWeight:   DefaultHeuristicWeight,
		ShortcutThreshold: DefaultShortcutThreshold,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) rng() *rand.Rand {
	return rand.New(rand.NewSource(c.Seed))
}

// New constructs an initialized strategy from a name and tunables. The
// snapshot seeds the strategy's private world copy; the cycle follower also
// precomputes its tour from it. Unrecognized names construct A*.
func New(name string, snap *game.Snapshot, cfg Config) Strategy {
	switch name {
	case BFS:
		return NewGraphSearch(ModeBFS, snap, cfg)
	case Dijkstra:
		return NewGraphSearch(ModeDijkstra, snap, cfg)
	case Greedy:
		return NewGraphSearch(ModeGreedy, snap, cfg)
	case Hamiltonian:
		return NewCycleFollower(snap, cfg)
	case AStar:
		return NewGraphSearch(ModeAStar, snap, cfg)
	default:
		cfg.logger().Warn("unknown strategy, defaulting to astar", "strategy", name)
		return NewGraphSearch(ModeAStar, snap, cfg)
	}
}
