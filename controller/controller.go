// Package controller orchestrates a single autonomous snake: it holds the
// active search strategy, feeds it fresh world snapshots each tick, and
// turns the strategy's decisions into directions the game loop can apply.
package controller

import (
	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/grid"
	"github.com/brensch/snekpilot/search"
)

// Controller owns one strategy instance at a time. Switching strategies
// discards the instance and rebuilds it from the latest snapshot; there is
// no migration of internal search state between algorithms.
type Controller struct {
	name     string
	cfg      search.Config
	strategy search.Strategy
	snap     *game.Snapshot
}

// New constructs a controller with the named strategy. Unrecognized names
// fall back to A*, mirroring the factory.
func New(name string, snap *game.Snapshot, cfg search.Config) *Controller {
	return &Controller{
		name:     name,
		cfg:      cfg,
		strategy: search.New(name, snap, cfg),
		snap:     snap.Clone(),
	}
}

// Update refreshes the world before a decision. Idempotent; the snapshot is
// copied so the driver may keep mutating its own structures.
func (c *Controller) Update(snap *game.Snapshot) {
	c.snap = snap.Clone()
	c.strategy.Update(snap)
}

// NextDirection derives the snake's current heading from its first two
// segments and asks the strategy for this tick's move. Snakes shorter than
// two segments default to heading right.
func (c *Controller) NextDirection() game.Direction {
	heading := game.Right
	if len(c.snap.Snake) >= 2 {
		heading = grid.DirectionBetween(c.snap.Snake[1], c.snap.Snake[0])
	}
	return c.strategy.NextDirection(c.snap.Snake, heading)
}

// SetStrategy swaps the active algorithm, rebuilding it from the latest
// snapshot. A no-op when the name is unchanged.
func (c *Controller) SetStrategy(name string) {
	if name == c.name {
		return
	}
	c.name = name
	c.strategy = search.New(name, c.snap, c.cfg)
}

// Strategy returns the name the controller was asked for.
func (c *Controller) Strategy() string {
	return c.name
}

// FindPath exposes the active strategy's route search.
func (c *Controller) FindPath(start, goal game.Point) []game.Point {
	return c.strategy.FindPath(start, goal)
}

// Path returns the strategy's most recent route, for visualization only.
func (c *Controller) Path() []game.Point {
	return c.strategy.Path()
}

// Visualization passes through strategy-specific diagnostic data, such as
// the cycle follower's full tour.
func (c *Controller) Visualization() search.Visualization {
	return c.strategy.Visualization()
}
