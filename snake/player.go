package snake

// Player is one connection's presence inside a session. Owned by the
// Session it belongs to; never holds a back-reference to its connection
// beyond the stable Key, per the one-direction-of-ownership design.
type Player struct {
	Key    string
	Name   string
	Chunks []Point
	Dir    Direction
	Alive  bool

	// lastTailPiece holds the cell popped off the tail this tick so it can
	// be regrown after self-cut scanning, instead of staying in Chunks
	// where it would confuse that scan. Cleared once regrown.
	lastTailPiece *Point
	hasTailPiece  bool
}

// NewPlayer creates a player with no chunks yet; chunks are assigned at
// session start per the initial layout formula.
func NewPlayer(key, name string) *Player {
	return &Player{Key: key, Name: name, Alive: true, Dir: Up}
}

// Head returns the player's current head cell. Panics if Chunks is empty,
// which never happens for a player once the session has started.
func (p *Player) Head() Point {
	return p.Chunks[0]
}

// Length returns the player's current chunk count.
func (p *Player) Length() int {
	return len(p.Chunks)
}

// occupies reports whether cell appears anywhere in the player's chunks.
func (p *Player) occupies(cell Point) bool {
	for _, c := range p.Chunks {
		if c == cell {
			return true
		}
	}
	return false
}

// indexOf returns the chunk index of cell, or -1 if absent.
func (p *Player) indexOf(cell Point) int {
	for i, c := range p.Chunks {
		if c == cell {
			return i
		}
	}
	return -1
}
