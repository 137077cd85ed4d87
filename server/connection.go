package server

import (
	"errors"
	"io"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/huskgames/snakearena/actor"
	"github.com/huskgames/snakearena/snake"
	"github.com/huskgames/snakearena/wire"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	askTimeout   = 2 * time.Second
	writeTimeout = 5 * time.Second
	readLoopWait = 2 * time.Second
	inboundRate  = 20 // messages per second, per connection
	inboundBurst = 10
)

// connFrame is a decoded wire envelope handed from the read-loop goroutine
// back to the connection actor's own mailbox.
type connFrame struct {
	env wire.Envelope
}

// connReadErr reports the read loop's terminal error (io.EOF on a clean
// close, something else on a transport failure or protocol violation).
type connReadErr struct {
	err error
}

// ConnectionActor owns one accepted socket end to end: framing, dispatch
// to the registry/session actors, and writing outbound Deliver messages
// back out. It performs no game logic of its own.
type ConnectionActor struct {
	conn   net.Conn
	key    string
	engine *actor.Engine
	appPID *actor.PID
	self   *actor.PID
	log    *logrus.Entry

	writer  *wire.Writer
	limiter *rate.Limiter

	sessionPID  *actor.PID
	sessionCode string

	stopReadLoop   chan struct{}
	readLoopExited chan struct{}
	closeOnce      sync.Once
}

// NewConnectionProducer builds a Producer for one accepted connection.
func NewConnectionProducer(conn net.Conn, engine *actor.Engine, appPID *actor.PID, log *logrus.Entry) actor.Producer {
	return func() actor.Actor {
		key := conn.RemoteAddr().String()
		return &ConnectionActor{
			conn:           conn,
			key:            key,
			engine:         engine,
			appPID:         appPID,
			log:            log.WithField("conn", key),
			writer:         wire.NewWriter(conn),
			limiter:        rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
			stopReadLoop:   make(chan struct{}),
			readLoopExited: make(chan struct{}),
		}
	}
}

func (a *ConnectionActor) Receive(ctx actor.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.log.WithField("panic", r).WithField("stack", string(debug.Stack())).Error("panic in connection actor")
			ctx.Engine().Stop(ctx.Self())
		}
	}()

	if a.self == nil {
		a.self = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case actor.Started:
		go a.readLoop()

	case connFrame:
		a.dispatch(ctx, msg.env)

	case connReadErr:
		if errors.Is(msg.err, io.EOF) {
			a.log.Debug("connection closed by peer")
		} else {
			a.log.WithField("err", msg.err).Warn("connection read error")
		}
		ctx.Engine().Stop(a.self)

	case snake.Deliver:
		a.write(msg.Type, msg.Data)

	case actor.Stopping:
		a.signalAndWaitForReadLoop()
		if a.sessionPID != nil {
			ctx.Engine().Send(a.sessionPID, snake.DisconnectPlayer{ConnKey: a.key}, a.self)
		}
		_ = a.conn.Close()

	case actor.Stopped:
	}
}

func (a *ConnectionActor) dispatch(ctx actor.Context, env wire.Envelope) {
	switch env.Type {
	case wire.TypeCreateSession:
		a.handleCreateSession(ctx, env)
	case wire.TypeJoin:
		a.handleJoin(ctx, env)
	case wire.TypeStartSession:
		a.handleStartSession(ctx)
	case wire.TypeInput:
		a.handleInput(env)
	default:
		a.protocolViolation(ctx, "unknown message type %q", env.Type)
	}
}

func (a *ConnectionActor) handleCreateSession(ctx actor.Context, env wire.Envelope) {
	var payload wire.CreateSessionPayload
	if err := wire.Decode(env, &payload); err != nil || payload.PlayerName == "" {
		a.protocolViolation(ctx, "create_session missing player_name")
		return
	}

	if a.sessionPID != nil {
		a.detachFromSession(ctx)
	}

	reply, err := a.engine.Ask(a.appPID, snake.CreateSession{ConnKey: a.key, ConnPID: a.self, PlayerName: payload.PlayerName}, askTimeout)
	if err != nil {
		a.log.WithField("err", err).Error("create_session ask failed")
		return
	}
	result := reply.(snake.CreateSessionResult)
	if result.Err != nil {
		a.log.WithField("err", result.Err).Warn("create_session failed")
		return
	}

	a.sessionPID = result.SessionPID
	a.sessionCode = result.Code
}

func (a *ConnectionActor) handleJoin(ctx actor.Context, env wire.Envelope) {
	var payload wire.JoinPayload
	if err := wire.Decode(env, &payload); err != nil || payload.Code == "" || payload.PlayerName == "" {
		a.protocolViolation(ctx, "join missing code/player_name")
		return
	}

	reply, err := a.engine.Ask(a.appPID, snake.FindSession{Code: payload.Code}, askTimeout)
	if err != nil {
		a.log.WithField("err", err).Error("find_session ask failed")
		return
	}
	found := reply.(snake.FindSessionResult)
	if !found.Exists {
		a.write(wire.TypeInvalidSession, wire.InvalidSessionPayload{Exists: false})
		return
	}
	if found.Running {
		a.write(wire.TypeInvalidSession, wire.InvalidSessionPayload{Exists: true})
		return
	}

	if a.sessionPID != nil {
		a.detachFromSession(ctx)
	}

	connReply, err := a.engine.Ask(found.SessionPID, snake.ConnectPlayer{ConnKey: a.key, ConnPID: a.self, PlayerName: payload.PlayerName}, askTimeout)
	if err != nil {
		a.log.WithField("err", err).Error("connect_player ask failed")
		return
	}
	connectResult := connReply.(snake.ConnectResult)
	if connectResult.Err != nil {
		if errors.Is(connectResult.Err, snake.ErrNameTaken) {
			a.write(wire.TypePlayerNameTaken, wire.EmptyPayload{})
			return
		}
		// ErrSessionRunning: the session started between FindSession and
		// ConnectPlayer. Report it the same way a pre-existing running
		// session would be reported.
		a.write(wire.TypeInvalidSession, wire.InvalidSessionPayload{Exists: true})
		return
	}

	a.sessionPID = found.SessionPID
	a.sessionCode = found.Code
}

func (a *ConnectionActor) handleStartSession(ctx actor.Context) {
	if a.sessionPID == nil {
		a.write(wire.TypeNotInSession, wire.EmptyPayload{})
		return
	}

	reply, err := a.engine.Ask(a.sessionPID, snake.StartSession{ConnKey: a.key}, askTimeout)
	if err != nil {
		a.log.WithField("err", err).Error("start_session ask failed")
		return
	}
	result := reply.(snake.StartResult)
	if result.Err == nil || errors.Is(result.Err, snake.ErrSessionRunning) {
		return
	}
	if errors.Is(result.Err, snake.ErrNotSessionOwner) {
		a.write(wire.TypeNotSessionOwner, wire.EmptyPayload{})
	}
}

func (a *ConnectionActor) handleInput(env wire.Envelope) {
	if a.sessionPID == nil {
		a.write(wire.TypeNotInSession, wire.EmptyPayload{})
		return
	}
	if !a.limiter.Allow() {
		a.log.Debug("input rate limit exceeded, dropping message")
		return
	}

	var payload wire.InputPayload
	if err := wire.Decode(env, &payload); err != nil {
		return
	}
	dir, err := snake.ParseDirection(payload.NewDirection)
	if err != nil {
		return
	}
	a.engine.Send(a.sessionPID, snake.SetDirection{ConnKey: a.key, Dir: dir}, a.self)
}

func (a *ConnectionActor) detachFromSession(ctx actor.Context) {
	ctx.Engine().Send(a.sessionPID, snake.DisconnectPlayer{ConnKey: a.key}, a.self)
	a.sessionPID = nil
	a.sessionCode = ""
}

// protocolViolation logs at warning and closes the connection:
// malformed frames never get a reply, the socket just closes.
func (a *ConnectionActor) protocolViolation(ctx actor.Context, format string, args ...interface{}) {
	a.log.WithField("reason", format).Warn("protocol violation")
	ctx.Engine().Stop(a.self)
}

func (a *ConnectionActor) write(msgType string, data interface{}) {
	_ = a.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := a.writer.WriteMessage(msgType, data); err != nil {
		a.log.WithField("err", err).Warn("write failed, closing")
		a.engine.Stop(a.self)
	}
	_ = a.conn.SetWriteDeadline(time.Time{})
}

func (a *ConnectionActor) readLoop() {
	defer close(a.readLoopExited)

	reader := wire.NewReader(a.conn)
	for {
		select {
		case <-a.stopReadLoop:
			return
		default:
		}

		env, err := reader.ReadEnvelope()
		if err != nil {
			a.engine.Send(a.self, connReadErr{err: err}, nil)
			return
		}
		a.engine.Send(a.self, connFrame{env: env}, nil)
	}
}

func (a *ConnectionActor) signalAndWaitForReadLoop() {
	a.closeOnce.Do(func() {
		close(a.stopReadLoop)
	})
	_ = a.conn.Close()

	select {
	case <-a.readLoopExited:
	case <-time.After(readLoopWait):
		a.log.Warn("timed out waiting for read loop to exit")
	}
}
