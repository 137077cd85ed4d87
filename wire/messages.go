package wire

// Client -> server message type names.
const (
	TypeCreateSession = "create_session"
	TypeJoin          = "join"
	TypeStartSession  = "start_session"
	TypeInput         = "input"
)

// Server -> client message type names.
const (
	TypeSessionJoin        = "session_join"
	TypeSessionLeave       = "session_leave"
	TypeSessionStart       = "session_start"
	TypeSessionStateUpdate = "session_state_update"
	TypeSessionEnd         = "session_end"
	TypeInvalidSession     = "invalid_session"
	TypeNotInSession       = "not_in_session"
	TypeNotSessionOwner    = "not_session_owner"
	TypePlayerNameTaken    = "player_name_already_taken"
)

// Cell is a grid position, wire-encoded as the two-element array [x, y] -
// a plain fixed-size array already marshals that way with no custom
// MarshalJSON needed.
type Cell [2]int

// NewCell is a small constructor so call sites read like NewCell(x, y)
// instead of a bare composite literal.
func NewCell(x, y int) Cell { return Cell{x, y} }

func (c Cell) X() int { return c[0] }
func (c Cell) Y() int { return c[1] }

// --- client -> server payloads ---

// CreateSessionPayload requests a brand-new session; the caller becomes
// its owner.
type CreateSessionPayload struct {
	PlayerName string `json:"player_name"`
}

// JoinPayload requests to join an existing session by invite code.
type JoinPayload struct {
	Code       string `json:"code"`
	PlayerName string `json:"player_name"`
}

// StartSessionPayload requests the owner's session begin ticking. Extra
// fields in data are ignored.
type StartSessionPayload struct{}

// InputPayload changes the sender's requested direction for the next
// movement tick. Direction is the wire 1..4 encoding, not a string.
type InputPayload struct {
	NewDirection int `json:"new_direction"`
}

// --- server -> client payloads ---

// PlayerView is the wire shape of one player.
type PlayerView struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Chunks    []Cell `json:"chunks"`
	Direction int    `json:"direction"`
}

// StateView is the wire shape of a full world snapshot.
type StateView struct {
	Tick         int          `json:"tick"`
	Apples       []Cell       `json:"apples"`
	AlivePlayers []PlayerView `json:"alive_players"`
}

// SessionJoinPayload confirms a successful create_session or join.
// Players is only populated in the copy sent to the player who just
// joined; everyone else only hears about the one new player.
type SessionJoinPayload struct {
	Code     string       `json:"code"`
	Player   PlayerView   `json:"player"`
	OwnerKey string       `json:"owner_key"`
	Players  []PlayerView `json:"players,omitempty"`
}

// SessionLeavePayload announces a player left the session.
type SessionLeavePayload struct {
	Code     string `json:"code"`
	Key      string `json:"key"`
	OwnerKey string `json:"owner_key"`
}

// SessionStartPayload announces the session has begun ticking, with the
// pre-movement initial layout as its state snapshot.
type SessionStartPayload struct {
	Code  string    `json:"code"`
	State StateView `json:"state"`
}

// SessionEndPayload announces the session has terminated. Leaderboard is
// ordered rank 1 (winner) first; each place is a list of players.
type SessionEndPayload struct {
	Code        string         `json:"code"`
	Leaderboard [][]PlayerView `json:"leaderboard"`
}

// InvalidSessionPayload distinguishes an unknown code (Exists=false)
// from a known-but-running one (Exists=true).
type InvalidSessionPayload struct {
	Exists bool `json:"exists"`
}

// EmptyPayload is the {} data object for not_in_session,
// not_session_owner, and player_name_already_taken.
type EmptyPayload struct{}
