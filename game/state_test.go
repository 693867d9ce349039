package game

import "testing"

func TestClone_DeepCopiesSlices(t *testing.T) {
	orig := &Snapshot{
		BoardSize: 10,
		Snake:     []Point{{X: 5, Y: 5}, {X: 5, Y: 4}},
		Goal:      Point{X: 1, Y: 1},
		Obstacles: []Point{{X: 0, Y: 9}},
		Turn:      7,
	}

	clone := orig.Clone()

	clone.Snake[0] = Point{X: 9, Y: 9}
	clone.Obstacles[0] = Point{X: 3, Y: 3}

	if orig.Snake[0] != (Point{X: 5, Y: 5}) {
		t.Fatalf("clone aliased snake body: %v", orig.Snake[0])
	}
	if orig.Obstacles[0] != (Point{X: 0, Y: 9}) {
		t.Fatalf("clone aliased obstacles: %v", orig.Obstacles[0])
	}
	if clone.BoardSize != 10 || clone.Goal != orig.Goal || clone.Turn != 7 {
		t.Fatalf("clone lost scalar fields: %+v", clone)
	}
}

func TestClone_Nil(t *testing.T) {
	var s *Snapshot
	if s.Clone() != nil {
		t.Fatalf("nil snapshot should clone to nil")
	}
}

func TestDirection_Delta(t *testing.T) {
	head := Point{X: 4, Y: 4}
	cases := []struct {
		dir  Direction
		want Point
	}{
		{Up, Point{X: 4, Y: 3}},
		{Down, Point{X: 4, Y: 5}},
		{Left, Point{X: 3, Y: 4}},
		{Right, Point{X: 5, Y: 4}},
	}
	for _, c := range cases {
		if got := head.Add(c.dir.Delta()); got != c.want {
			t.Fatalf("%s from %v = %v, want %v", c.dir, head, got, c.want)
		}
	}
}
