package snake

import (
	"fmt"
	"time"

	"github.com/huskgames/snakearena/actor"
	"github.com/huskgames/snakearena/config"
	"github.com/sirupsen/logrus"
)

// askTimeout bounds every registry <-> session Ask round trip.
const askTimeout = 2 * time.Second

// AppActor is the process-wide registry: live sessions by invite code.
// Connections are tracked by the server package itself (it owns the
// net.Listener), so AppActor only ever needs the session map - but it is
// still the single serialization point for session creation/removal, the
// realization of a registry lock on a parallel runtime.
type AppActor struct {
	engine   *actor.Engine
	cfg      config.Config
	log      *logrus.Entry
	sessions map[string]entry
	self     *actor.PID
}

// entry is the registry's own copy of a session's status. It is only
// ever read or written from AppActor's own Receive goroutine; the
// SessionActor reports changes via SessionStatusUpdate rather than the
// registry reaching into the *Session it owns.
type entry struct {
	pid         *actor.PID
	running     bool
	playerCount int
}

// NewAppProducer builds a Producer for the registry actor.
func NewAppProducer(engine *actor.Engine, cfg config.Config, log *logrus.Entry) actor.Producer {
	return func() actor.Actor {
		return &AppActor{
			engine:   engine,
			cfg:      cfg,
			log:      log,
			sessions: make(map[string]entry),
		}
	}
}

func (a *AppActor) Receive(ctx actor.Context) {
	if a.self == nil {
		a.self = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case actor.Started:
		a.log.Info("registry started")

	case CreateSession:
		a.handleCreate(ctx, msg)

	case FindSession:
		ctx.Reply(a.handleFind(msg))

	case RemoveSession:
		a.handleRemove(msg)

	case SessionStatusUpdate:
		a.handleStatusUpdate(msg)

	case SessionFaulted:
		a.log.WithField("session", msg.Code).Warn("session faulted, evicting from registry")
		delete(a.sessions, msg.Code)

	case ListSessions:
		ctx.Reply(a.handleList())

	case actor.Stopping:
		for _, e := range a.sessions {
			ctx.Engine().Stop(e.pid)
		}
	}
}

func (a *AppActor) handleCreate(ctx actor.Context, msg CreateSession) {
	code, err := a.uniqueCode()
	if err != nil {
		ctx.Reply(CreateSessionResult{Err: err})
		return
	}

	grid := Grid{Width: a.cfg.GridWidth, Height: a.cfg.GridHeight}
	session := NewSession(code, grid, a.cfg.TickInterval, a.cfg.GameSpeed, a.cfg.InitialChunkAmount)
	pid := a.engine.Spawn(actor.NewProps(NewSessionProducer(session, a.self, a.log)))

	a.engine.Send(pid, RegisterLink{ConnKey: msg.ConnKey, ConnPID: msg.ConnPID}, a.self)
	reply, err := a.engine.Ask(pid, ConnectPlayer{ConnKey: msg.ConnKey, ConnPID: msg.ConnPID, PlayerName: msg.PlayerName}, askTimeout)
	if err != nil {
		ctx.Reply(CreateSessionResult{Err: err})
		return
	}
	connectResult := reply.(ConnectResult)
	if connectResult.Err != nil {
		ctx.Reply(CreateSessionResult{Err: connectResult.Err})
		return
	}

	a.sessions[code] = entry{pid: pid, playerCount: 1}
	ctx.Reply(CreateSessionResult{Code: code, SessionPID: pid, Player: connectResult.Player})
}

func (a *AppActor) handleFind(msg FindSession) FindSessionResult {
	e, ok := a.sessions[msg.Code]
	if !ok {
		return FindSessionResult{Exists: false}
	}
	return FindSessionResult{Exists: true, Running: e.running, SessionPID: e.pid, Code: msg.Code}
}

func (a *AppActor) handleStatusUpdate(msg SessionStatusUpdate) {
	e, ok := a.sessions[msg.Code]
	if !ok {
		return
	}
	e.running = msg.Running
	e.playerCount = msg.PlayerCount
	a.sessions[msg.Code] = e
}

func (a *AppActor) handleRemove(msg RemoveSession) {
	e, ok := a.sessions[msg.Code]
	if !ok {
		return
	}
	delete(a.sessions, msg.Code)
	a.engine.Stop(e.pid)
	a.log.WithField("session", msg.Code).Info("session removed")
}

func (a *AppActor) handleList() ListSessionsResult {
	out := make([]SessionSummary, 0, len(a.sessions))
	for code, e := range a.sessions {
		out = append(out, SessionSummary{
			Code:        code,
			PlayerCount: e.playerCount,
			Running:     e.running,
		})
	}
	return ListSessionsResult{Sessions: out}
}

const maxCodeAttempts = 5

func (a *AppActor) uniqueCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := generateInviteCode()
		if err != nil {
			return "", err
		}
		if _, taken := a.sessions[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("snake: could not generate a unique invite code after %d attempts", maxCodeAttempts)
}
