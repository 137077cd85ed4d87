package snake

import (
	"errors"
	"time"
)

// Place is a leaderboard group: players who died at the same tick with
// the same chunk length, as required by the leaderboard invariant.
type Place struct {
	Keys []string
}

// death is one entry accumulated in currentDeaths before being flushed
// into the leaderboard.
type death struct {
	Key    string
	Length int
}

// Session is the authoritative world for one game. All mutation happens
// on the owning SessionActor's goroutine; see session_actor.go.
type Session struct {
	Code  string
	Grid  Grid
	Owner string // player key

	players    map[string]*Player
	order      []string // insertion order of players, mirrors `players`
	aliveOrder []string // insertion order of alive_players

	Apples map[Point]struct{}

	leaderboard   []Place
	currentDeaths []death

	Running bool
	Tick    int

	TickInterval       time.Duration
	GameSpeed          int
	InitialChunkAmount int

	LastTickTime time.Time
}

// ErrSessionRunning is returned by Connect once the session has started.
var ErrSessionRunning = errors.New("snake: session already running")

// ErrNameTaken is returned by Connect when name collides within the
// session.
var ErrNameTaken = errors.New("snake: player name already taken")

// ErrNotSessionOwner is returned by StartSession when the requester does
// not own the session.
var ErrNotSessionOwner = errors.New("snake: requester is not the session owner")

// NewSession builds an empty, not-yet-started session. It has no owner
// until the first Connect.
func NewSession(code string, grid Grid, tickInterval time.Duration, gameSpeed, initialChunkAmount int) *Session {
	return &Session{
		Code:               code,
		Grid:               grid,
		players:            make(map[string]*Player),
		Apples:             make(map[Point]struct{}),
		TickInterval:       tickInterval,
		GameSpeed:          gameSpeed,
		InitialChunkAmount: initialChunkAmount,
	}
}

// Players returns players in insertion order.
func (s *Session) Players() []*Player {
	out := make([]*Player, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.players[key])
	}
	return out
}

// AlivePlayers returns the alive subset in insertion order.
func (s *Session) AlivePlayers() []*Player {
	out := make([]*Player, 0, len(s.aliveOrder))
	for _, key := range s.aliveOrder {
		out = append(out, s.players[key])
	}
	return out
}

func (s *Session) hasName(name string) bool {
	for _, p := range s.players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Connect admits a new player. The first player ever connected to a
// session becomes (and stays) its owner until promotion on disconnect.
func (s *Session) Connect(key, name string) (*Player, error) {
	if s.Running {
		return nil, ErrSessionRunning
	}
	if s.hasName(name) {
		return nil, ErrNameTaken
	}

	p := NewPlayer(key, name)
	s.players[key] = p
	s.order = append(s.order, key)
	s.aliveOrder = append(s.aliveOrder, key)

	if s.Owner == "" {
		s.Owner = key
	}
	return p, nil
}

// removeFromOrder drops key from an insertion-order slice, preserving the
// order of everything else.
func removeFromOrder(order []string, key string) []string {
	out := order[:0:0]
	for _, k := range order {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

// promoteOwnerIfNeeded hands ownership to the oldest remaining player
// when the current owner is no longer present.
func (s *Session) promoteOwnerIfNeeded() {
	if _, ok := s.players[s.Owner]; ok {
		return
	}
	if len(s.order) > 0 {
		s.Owner = s.order[0]
	} else {
		s.Owner = ""
	}
}

// DisconnectResult tells the caller what happened so it can decide what
// to broadcast and whether the session should be torn down.
type DisconnectResult struct {
	SessionEmptied bool
	NewOwner       string
}

// Disconnect removes key from the session. Before the session starts it
// is a full removal; once running it is treated as a death recorded for
// the leaderboard.
func (s *Session) Disconnect(key string) DisconnectResult {
	p, ok := s.players[key]
	if !ok {
		return DisconnectResult{}
	}

	if !s.Running {
		delete(s.players, key)
		s.order = removeFromOrder(s.order, key)
		s.aliveOrder = removeFromOrder(s.aliveOrder, key)
		if len(s.players) == 0 {
			return DisconnectResult{SessionEmptied: true}
		}
		s.promoteOwnerIfNeeded()
		return DisconnectResult{NewOwner: s.Owner}
	}

	if p.Alive {
		p.Alive = false
		s.aliveOrder = removeFromOrder(s.aliveOrder, key)
		s.currentDeaths = append(s.currentDeaths, death{Key: key, Length: p.Length()})
	}
	s.promoteOwnerIfNeeded()
	return DisconnectResult{NewOwner: s.Owner}
}

// Start lays out the initial chunks for every currently-alive player and
// marks the session running. Player i (1-indexed) sits at
// x = floor(W/(N+1) * i), occupying a vertical strip of InitialChunkAmount
// cells centered on H/2 (for an even amount the extra cell is below the
// center row; an odd amount is symmetric around it).
func (s *Session) Start() {
	s.Running = true
	s.Tick = 0
	s.LastTickTime = time.Now()

	alive := s.AlivePlayers()
	n := len(alive)
	centerY := s.Grid.Height / 2
	amount := s.InitialChunkAmount

	for i, p := range alive {
		x := s.Grid.Width * (i + 1) / (n + 1)
		startY := centerY - (amount-1)/2

		chunks := make([]Point, amount)
		for row := 0; row < amount; row++ {
			// Chunks[0] is the head; head sits at the top of the strip so
			// direction UP moves it further up and away from the tail.
			chunks[row] = Point{X: x, Y: startY + row}
		}
		p.Chunks = chunks
		p.Dir = Up
	}
}
