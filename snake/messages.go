package snake

import "github.com/huskgames/snakearena/actor"

// Deliver asks a connection actor to write one wire frame to its socket.
// Defined here (not in server) so Session/App never import server,
// keeping the dependency edge one-directional: server -> snake.
type Deliver struct {
	Type string
	Data interface{}
}

// --- messages accepted by a SessionActor ---

// ConnectPlayer admits connKey/name to the session. ConnPID is the
// requesting connection's PID, recorded as the link that session frames
// are delivered to; the ConnectResult itself goes back via ctx.Reply.
type ConnectPlayer struct {
	ConnKey    string
	ConnPID    *actor.PID
	PlayerName string
}

// ConnectResult answers ConnectPlayer.
type ConnectResult struct {
	Player *Player
	Err    error
}

// DisconnectPlayer removes connKey from the session.
type DisconnectPlayer struct {
	ConnKey string
}

// StartSession begins the tick loop; only the owner may send this.
type StartSession struct {
	ConnKey string
}

// StartResult answers StartSession.
type StartResult struct {
	Err error
}

// SetDirection changes a player's requested heading for the next
// movement tick.
type SetDirection struct {
	ConnKey string
	Dir     Direction
}

// RegisterLink tells the session which connection PID to Deliver frames
// to for a given player key - set once on connect, before any broadcast.
type RegisterLink struct {
	ConnKey string
	ConnPID *actor.PID
}

// sessionTick is a private message the SessionActor sends to itself to
// drive its tick loop; never sent from outside the package.
type sessionTick struct{}

// --- messages accepted by the App registry actor ---

// CreateSession creates a brand-new session owned by the requester.
type CreateSession struct {
	ConnKey    string
	ConnPID    *actor.PID
	PlayerName string
}

// CreateSessionResult answers CreateSession.
type CreateSessionResult struct {
	Code       string
	SessionPID *actor.PID
	Player     *Player
	Err        error
}

// FindSession looks up a session by invite code for a join attempt.
type FindSession struct {
	Code string
}

// FindSessionResult answers FindSession. Exists distinguishes an unknown
// code from a known-but-running one, per the invalid_session contract.
type FindSessionResult struct {
	Exists     bool
	Running    bool
	SessionPID *actor.PID
	Code       string
}

// SessionStatusUpdate is sent by a SessionActor to the registry whenever
// its running state or player count changes, so the registry can answer
// FindSession/ListSessions from its own copy instead of reaching into the
// *Session that the SessionActor's goroutine owns.
type SessionStatusUpdate struct {
	Code        string
	Running     bool
	PlayerCount int
}

// SessionFaulted is sent by a SessionActor to the registry when its own
// Receive recovers from a panic, so the registry can evict it; the normal
// (non-faulted) termination path uses RemoveSession instead.
type SessionFaulted struct {
	Code string
}

// RemoveSession evicts a session from the registry.
type RemoveSession struct {
	Code string
}

// ListSessions requests a snapshot of live sessions (admin surface).
type ListSessions struct{}

// SessionSummary is one row of a ListSessions reply.
type SessionSummary struct {
	Code        string
	PlayerCount int
	Running     bool
}

// ListSessionsResult answers ListSessions.
type ListSessionsResult struct {
	Sessions []SessionSummary
}
