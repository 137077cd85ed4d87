package snake

import (
	"fmt"
	"time"

	"github.com/huskgames/snakearena/actor"
	"github.com/huskgames/snakearena/wire"
	"github.com/sirupsen/logrus"
)

// SessionActor is the single-goroutine owner of one Session's state and
// tick loop. Every field below is only ever touched from this actor's
// own Receive calls - the actor mailbox is the serialization boundary
// for a genuinely parallel runtime.
type SessionActor struct {
	session *Session
	links   map[string]*actor.PID // player key -> connection PID
	appPID  *actor.PID
	self    *actor.PID
	log     *logrus.Entry
	live    bool // false once the actor is stopping or has faulted; later ticks are ignored
}

// NewSessionProducer builds a Producer for a fresh SessionActor.
func NewSessionProducer(session *Session, appPID *actor.PID, log *logrus.Entry) actor.Producer {
	return func() actor.Actor {
		return &SessionActor{
			session: session,
			links:   make(map[string]*actor.PID),
			appPID:  appPID,
			log:     log.WithField("session", session.Code),
			live:    true,
		}
	}
}

func (a *SessionActor) Receive(ctx actor.Context) {
	if a.self == nil {
		a.self = ctx.Self()
	}

	// A panic here must tear this one session down without taking the
	// rest of the server with it: notify the registry so it can reap the
	// session and let every connection know.
	defer func() {
		if r := recover(); r != nil {
			a.log.WithField("panic", r).WithField("message", fmt.Sprintf("%T", ctx.Message())).
				Error("session actor panicked, tearing down session")
			a.live = false
			for _, pid := range a.links {
				ctx.Engine().Stop(pid)
			}
			if a.appPID != nil {
				ctx.Engine().Send(a.appPID, SessionFaulted{Code: a.session.Code}, a.self)
			}
			ctx.Engine().Stop(a.self)
		}
	}()

	switch msg := ctx.Message().(type) {
	case actor.Started:
		a.log.Info("session created")

	case RegisterLink:
		a.links[msg.ConnKey] = msg.ConnPID

	case ConnectPlayer:
		a.handleConnect(ctx, msg)

	case DisconnectPlayer:
		a.handleDisconnect(ctx, msg)

	case StartSession:
		a.handleStart(ctx, msg)

	case SetDirection:
		a.handleSetDirection(msg)

	case sessionTick:
		a.handleTick(ctx)

	case actor.Stopping:
		a.live = false

	case actor.Stopped:
		// nothing to release; the engine already drops our mailbox.
	}
}

func (a *SessionActor) handleConnect(ctx actor.Context, msg ConnectPlayer) {
	player, err := a.session.Connect(msg.ConnKey, msg.PlayerName)
	ctx.Reply(ConnectResult{Player: player, Err: err})
	if err != nil {
		return
	}

	a.links[msg.ConnKey] = msg.ConnPID

	// session_join: the new player's own payload includes the full
	// players list; everyone else gets just the joiner.
	for _, p := range a.session.Players() {
		includeAll := p.Key == msg.ConnKey
		a.deliver(ctx, p.Key, wire.TypeSessionJoin, sessionJoinView(a.session, player, includeAll))
	}

	a.reportStatus(ctx)
}

func (a *SessionActor) handleDisconnect(ctx actor.Context, msg DisconnectPlayer) {
	leaverPID, hadLink := a.links[msg.ConnKey]

	res := a.session.Disconnect(msg.ConnKey)
	delete(a.links, msg.ConnKey)

	// The leaving connection hears session_leave about itself too, not
	// just the remaining players - it may stay open to join elsewhere.
	leaveView := sessionLeaveView(a.session, msg.ConnKey)
	if hadLink {
		ctx.Engine().Send(leaverPID, Deliver{Type: wire.TypeSessionLeave, Data: leaveView}, a.self)
	}

	if res.SessionEmptied {
		if a.appPID != nil {
			ctx.Engine().Send(a.appPID, RemoveSession{Code: a.session.Code}, a.self)
		}
		return
	}

	for _, p := range a.session.Players() {
		a.deliver(ctx, p.Key, wire.TypeSessionLeave, leaveView)
	}

	a.reportStatus(ctx)

	if a.session.Running && len(a.session.aliveOrder) <= 1 {
		// The running tick loop will observe this on its own next tick
		// and call finishGame; nothing further to do here.
		return
	}
}

func (a *SessionActor) handleStart(ctx actor.Context, msg StartSession) {
	if msg.ConnKey != a.session.Owner {
		ctx.Reply(StartResult{Err: ErrNotSessionOwner})
		return
	}
	if a.session.Running {
		ctx.Reply(StartResult{Err: ErrSessionRunning})
		return
	}

	a.session.Start()
	ctx.Reply(StartResult{})

	for _, p := range a.session.Players() {
		a.deliver(ctx, p.Key, wire.TypeSessionStart, sessionStartView(a.session))
	}

	a.reportStatus(ctx)
	a.scheduleNextTick(ctx.Engine(), a.session.TickInterval)
}

func (a *SessionActor) handleSetDirection(msg SetDirection) {
	player, ok := a.session.players[msg.ConnKey]
	if !ok || !player.Alive {
		return
	}
	if msg.Dir == player.Dir || msg.Dir == player.Dir.Opposite() {
		return // reject no-op or reversal silently, connection stays open
	}
	player.Dir = msg.Dir
}

func (a *SessionActor) handleTick(ctx actor.Context) {
	if !a.live {
		return
	}

	done := a.session.RunTick()

	for _, p := range a.session.Players() {
		a.deliver(ctx, p.Key, wire.TypeSessionStateUpdate, stateView(a.session))
	}

	if done {
		a.session.finishGame()
		for _, p := range a.session.Players() {
			a.deliver(ctx, p.Key, wire.TypeSessionEnd, sessionEndView(a.session))
		}
		// a session_end broadcast is always followed by a deliberate
		// close of every remaining connection in that session.
		for _, pid := range a.links {
			ctx.Engine().Stop(pid)
		}
		if a.appPID != nil {
			ctx.Engine().Send(a.appPID, RemoveSession{Code: a.session.Code}, a.self)
		}
		return
	}

	a.scheduleNextTick(ctx.Engine(), 0)
}

// scheduleNextTick advances the deadline and arranges for a sessionTick
// message to arrive at (or after) that wall-clock instant. LastTickTime
// is primed by Session.Start, so this is always a real deadline advance,
// never a fixed-period sleep.
func (a *SessionActor) scheduleNextTick(engine *actor.Engine, _ time.Duration) {
	wait := a.session.AdvanceDeadline()
	if wait == 0 {
		a.log.WithField("tick", a.session.Tick).Warn("session is behind schedule")
	}

	self := a.self
	time.AfterFunc(wait, func() {
		engine.Send(self, sessionTick{}, nil)
	})
}

func (a *SessionActor) deliver(ctx actor.Context, key, msgType string, data interface{}) {
	pid, ok := a.links[key]
	if !ok {
		return
	}
	ctx.Engine().Send(pid, Deliver{Type: msgType, Data: data}, a.self)
}

// reportStatus tells the registry this session's running state or player
// count changed, so it never has to read *Session fields off this
// actor's own goroutine.
func (a *SessionActor) reportStatus(ctx actor.Context) {
	if a.appPID == nil {
		return
	}
	ctx.Engine().Send(a.appPID, SessionStatusUpdate{
		Code:        a.session.Code,
		Running:     a.session.Running,
		PlayerCount: len(a.session.players),
	}, a.self)
}
