package grid

import (
	"math/rand"
	"testing"

	"github.com/brensch/snekpilot/game"
)

func TestIsValidCell_Bounds(t *testing.T) {
	cases := []struct {
		p    game.Point
		want bool
	}{
		{game.Point{X: 0, Y: 0}, true},
		{game.Point{X: 9, Y: 9}, true},
		{game.Point{X: -1, Y: 0}, false},
		{game.Point{X: 0, Y: -1}, false},
		{game.Point{X: 10, Y: 0}, false},
		{game.Point{X: 0, Y: 10}, false},
	}
	for _, c := range cases {
		if got := IsValidCell(c.p, 10, nil, nil); got != c.want {
			t.Fatalf("IsValidCell(%v)=%v want=%v", c.p, got, c.want)
		}
	}
}

func TestIsValidCell_TailIsExcluded(t *testing.T) {
	snake := []game.Point{{X: 3, Y: 3}, {X: 3, Y: 4}, {X: 3, Y: 5}}

	if IsValidCell(game.Point{X: 3, Y: 4}, 10, snake, nil) {
		t.Fatalf("mid-body cell should be blocked")
	}
	if IsValidCell(game.Point{X: 3, Y: 3}, 10, snake, nil) {
		t.Fatalf("head cell should be blocked")
	}
	if !IsValidCell(game.Point{X: 3, Y: 5}, 10, snake, nil) {
		t.Fatalf("tail cell should be free, it vacates this tick")
	}
}

func TestIsValidCell_Obstacles(t *testing.T) {
	obstacles := []game.Point{{X: 2, Y: 2}}
	if IsValidCell(game.Point{X: 2, Y: 2}, 10, nil, obstacles) {
		t.Fatalf("obstacle cell should be blocked")
	}
}

func TestNeighbors4_FixedOrder(t *testing.T) {
	got := Neighbors4(game.Point{X: 5, Y: 5}, 10, nil, nil)
	want := []game.Point{
		{X: 5, Y: 4}, // up
		{X: 5, Y: 6}, // down
		{X: 4, Y: 5}, // left
		{X: 6, Y: 5}, // right
	}
	if len(got) != len(want) {
		t.Fatalf("neighbors len=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("neighbors[%d]=%v want=%v", i, got[i], want[i])
		}
	}
}

func TestNeighbors4_CornerAndBlocked(t *testing.T) {
	got := Neighbors4(game.Point{X: 0, Y: 0}, 10, nil, []game.Point{{X: 1, Y: 0}})
	want := []game.Point{{X: 0, Y: 1}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("corner neighbors=%v want=%v", got, want)
	}
}

func TestManhattan(t *testing.T) {
	a := game.Point{X: 1, Y: 2}
	b := game.Point{X: 4, Y: 0}
	if d := Manhattan(a, b, 1); d != 5 {
		t.Fatalf("manhattan=%v want=5", d)
	}
	if d := Manhattan(a, b, 2.5); d != 12.5 {
		t.Fatalf("weighted manhattan=%v want=12.5", d)
	}
}

func TestDirectionBetween_HorizontalBeforeVertical(t *testing.T) {
	from := game.Point{X: 5, Y: 5}
	cases := []struct {
		to   game.Point
		want game.Direction
	}{
		{game.Point{X: 6, Y: 5}, game.Right},
		{game.Point{X: 4, Y: 5}, game.Left},
		{game.Point{X: 5, Y: 6}, game.Down},
		{game.Point{X: 5, Y: 4}, game.Up},
		// Diagonal target resolves horizontally first.
		{game.Point{X: 6, Y: 9}, game.Right},
		{game.Point{X: 4, Y: 0}, game.Left},
		// Defensive default.
		{game.Point{X: 5, Y: 5}, game.Right},
	}
	for _, c := range cases {
		if got := DirectionBetween(from, c.to); got != c.want {
			t.Fatalf("DirectionBetween(%v,%v)=%v want=%v", from, c.to, got, c.want)
		}
	}
}

func TestRandomValidDirection_OnlyPicksValid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	head := game.Point{X: 0, Y: 0}
	snake := []game.Point{head, {X: 0, Y: 1}, {X: 1, Y: 1}}

	// Only (1,0) is open: (0,1) is the neck, off-board otherwise.
	for i := 0; i < 20; i++ {
		if got := RandomValidDirection(head, snake, 10, nil, rng); got != game.Right {
			t.Fatalf("direction=%v want=right", got)
		}
	}
}

func TestRandomValidDirection_BoxedInFollowsHeading(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	head := game.Point{X: 0, Y: 0}
	snake := []game.Point{head, {X: 1, Y: 0}, {X: 2, Y: 0}}
	obstacles := []game.Point{{X: 0, Y: 1}}

	// No valid neighbor: neck blocks right, obstacle below, walls elsewhere.
	// The fallback keeps travelling away from the neck.
	if got := RandomValidDirection(head, snake, 10, obstacles, rng); got != game.Left {
		t.Fatalf("boxed-in direction=%v want=left", got)
	}
}

func TestRandomValidDirection_SingleSegmentBoxedDefaultsRight(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	head := game.Point{X: 0, Y: 0}
	obstacles := []game.Point{{X: 1, Y: 0}, {X: 0, Y: 1}}

	if got := RandomValidDirection(head, []game.Point{head}, 10, obstacles, rng); got != game.Right {
		t.Fatalf("default direction=%v want=right", got)
	}
}
