package snake

// Point is an (x, y) grid cell.
type Point struct {
	X int
	Y int
}

// Add returns p shifted by o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Grid is the fixed-size lattice the simulation runs on. Dimensions are
// process constants per the wire spec, not per-session configurable.
type Grid struct {
	Width  int
	Height int
}

// DefaultGrid is the 40x30 board, the same size as the config defaults.
var DefaultGrid = Grid{Width: 40, Height: 30}

// Contains reports whether p lies within the grid bounds.
func (g Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}
