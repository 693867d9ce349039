// Package game defines the core board types for the snake autopilot.
//
// These types represent the minimal state needed for pathfinding decisions.
// Coordinates are 0-indexed with (0,0) at the top-left, so Down increases Y.
// The snapshot is designed to be efficiently clonable so strategies can own
// their inputs without aliasing the driver's mutable state.
package game

// Point is a board coordinate.
type Point struct {
	X int32
	Y int32
}

// Direction is one of the four moves a snake can make on a tick.
type Direction int32

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "up"
	}
}

// Delta returns the coordinate offset of a single step in this direction.
func (d Direction) Delta() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	case Right:
		return Point{X: 1, Y: 0}
	default:
		return Point{X: 1, Y: 0}
	}
}

// Add returns p shifted by the offset q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Snapshot is the complete world state a strategy needs for one decision:
// a square board, the snake body head-first, the goal cell, and any static
// obstacles. The driver hands a fresh snapshot to the controller each tick.
type Snapshot struct {
	BoardSize int32
	Snake     []Point
	Goal      Point
	Obstacles []Point
	Turn      int32
}

// Head returns the snake's head cell. Only valid for non-empty snakes.
func (s *Snapshot) Head() Point {
	return s.Snake[0]
}

// Cells returns the total number of cells on the board.
func (s *Snapshot) Cells() int {
	return int(s.BoardSize) * int(s.BoardSize)
}

// Clone performs a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}

	out := &Snapshot{
		BoardSize: s.BoardSize,
		Goal:      s.Goal,
		Turn:      s.Turn,
	}

	if len(s.Snake) > 0 {
		out.Snake = make([]Point, len(s.Snake))
		copy(out.Snake, s.Snake)
	}

	if len(s.Obstacles) > 0 {
		out.Obstacles = make([]Point, len(s.Obstacles))
		copy(out.Obstacles, s.Obstacles)
	}

	return out
}
