package actor

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrAskTimeout is returned by Ask when no reply arrives within the given
// timeout.
var ErrAskTimeout = errors.New("actor: ask timed out waiting for reply")

// ErrActorNotFound is returned by Ask when the target PID is not (or no
// longer) registered with the engine.
var ErrActorNotFound = errors.New("actor: target not found")

// Engine owns the registry of running actors and routes messages between
// them.
type Engine struct {
	log        *logrus.Entry
	pidCounter uint64
	mu         sync.RWMutex
	actors     map[string]*process
	stopping   atomic.Bool
}

// NewEngine creates an Engine. log may be nil, in which case
// logrus.StandardLogger() is used.
func NewEngine(log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		log:    log,
		actors: make(map[string]*process),
	}
}

func (e *Engine) nextPID() *PID {
	id := atomic.AddUint64(&e.pidCounter, 1)
	return &PID{ID: fmt.Sprintf("actor-%d", id)}
}

// Spawn creates and starts a new actor, returning its PID. Returns nil if
// the engine is shutting down.
func (e *Engine) Spawn(props *Props) *PID {
	if e.stopping.Load() {
		e.log.Warn("spawn requested while engine is stopping, ignoring")
		return nil
	}

	pid := e.nextPID()
	proc := newProcess(e, pid, props)

	e.mu.Lock()
	e.actors[pid.ID] = proc
	e.mu.Unlock()

	go proc.run()
	return pid
}

// Send delivers a fire-and-forget message to pid. Silently dropped if pid
// is unknown or the engine is stopping (system messages still flow during
// shutdown so actors can clean up).
func (e *Engine) Send(pid *PID, message interface{}, sender *PID) {
	if pid == nil {
		return
	}
	e.deliver(pid, message, sender, nil)
}

// Ask sends message to pid and blocks until either ctx.Reply is called by
// the recipient or timeout elapses.
func (e *Engine) Ask(pid *PID, message interface{}, timeout time.Duration) (interface{}, error) {
	if pid == nil {
		return nil, ErrActorNotFound
	}
	reply := make(chan interface{}, 1)
	if !e.deliver(pid, message, nil, reply) {
		return nil, ErrActorNotFound
	}
	select {
	case v := <-reply:
		return v, nil
	case <-time.After(timeout):
		return nil, ErrAskTimeout
	}
}

func (e *Engine) deliver(pid *PID, message interface{}, sender *PID, replyTo chan interface{}) bool {
	_, isStopping := message.(Stopping)
	_, isStopped := message.(Stopped)
	isSystem := isStopping || isStopped

	if e.stopping.Load() && !isSystem {
		return false
	}

	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()
	if !ok {
		return false
	}
	proc.sendMessage(message, sender, replyTo)
	return true
}

// Stop asks the actor at pid to shut down; it finishes processing the
// current message, runs Stopping, then Stopped.
func (e *Engine) Stop(pid *PID) {
	e.mu.RLock()
	_, ok := e.actors[pid.ID]
	e.mu.RUnlock()
	if ok {
		e.Send(pid, Stopping{}, nil)
	}
}

func (e *Engine) remove(pid *PID) {
	e.mu.Lock()
	delete(e.actors, pid.ID)
	e.mu.Unlock()
}

// Shutdown stops every live actor and waits up to timeout for them to
// drain. Actors still alive past the deadline are forcibly forgotten.
func (e *Engine) Shutdown(timeout time.Duration) {
	if !e.stopping.CompareAndSwap(false, true) {
		return
	}

	e.mu.RLock()
	pids := make([]*PID, 0, len(e.actors))
	for _, proc := range e.actors {
		pids = append(pids, proc.pid)
	}
	e.mu.RUnlock()

	for _, pid := range pids {
		e.Stop(pid)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		e.mu.RLock()
		remaining := len(e.actors)
		e.mu.RUnlock()
		if remaining == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}

	e.mu.Lock()
	remaining := len(e.actors)
	e.actors = make(map[string]*process)
	e.mu.Unlock()
	if remaining > 0 {
		e.log.WithField("remaining", remaining).Warn("engine shutdown timed out, actors force-dropped")
	}
}
