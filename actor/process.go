package actor

import (
	"fmt"
	"sync/atomic"
)

const defaultMailboxSize = 256

// process is the running instance of an actor: its mailbox, goroutine and
// bookkeeping. Never touched from outside its own goroutine except via
// sendMessage, which only ever enqueues.
type process struct {
	engine  *Engine
	pid     *PID
	props   *Props
	actor   Actor
	mailbox chan *messageEnvelope
	stopCh  chan struct{}
	stopped atomic.Bool
}

func newProcess(engine *Engine, pid *PID, props *Props) *process {
	return &process{
		engine:  engine,
		pid:     pid,
		props:   props,
		mailbox: make(chan *messageEnvelope, defaultMailboxSize),
		stopCh:  make(chan struct{}),
	}
}

func (p *process) sendMessage(message interface{}, sender *PID, replyTo chan interface{}) {
	_, isStopping := message.(Stopping)
	_, isStopped := message.(Stopped)
	if p.stopped.Load() && !isStopping && !isStopped {
		return
	}

	env := &messageEnvelope{sender: sender, message: message, replyTo: replyTo}
	select {
	case p.mailbox <- env:
	default:
		p.engine.log.WithField("actor", p.pid.ID).WithField("type", typeName(message)).
			Warn("actor mailbox full, dropping message")
	}
}

func (p *process) run() {
	var stoppingInvoked bool

	defer func() {
		p.stopped.Store(true)
		defer p.engine.remove(p.pid)
		if r := recover(); r != nil {
			p.engine.log.WithField("actor", p.pid.ID).WithField("panic", r).
				Error("actor panicked during shutdown cleanup")
		}
		if p.actor != nil {
			p.invokeReceive(Stopped{}, nil, nil)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			p.engine.log.WithField("actor", p.pid.ID).WithField("panic", r).
				Error("actor panicked, stopping")
			if p.stopped.CompareAndSwap(false, true) {
				closeStopCh(p.stopCh)
				if p.actor != nil && !stoppingInvoked {
					p.invokeReceive(Stopping{}, nil, nil)
					stoppingInvoked = true
				}
			}
		}
	}()

	p.actor = p.props.produce()
	if p.actor == nil {
		panic("actor: producer returned nil actor")
	}
	p.invokeReceive(Started{}, nil, nil)

	for {
		select {
		case <-p.stopCh:
			if p.stopped.CompareAndSwap(false, true) && !stoppingInvoked {
				p.invokeReceive(Stopping{}, nil, nil)
				stoppingInvoked = true
			}
			return

		case env := <-p.mailbox:
			switch msg := env.message.(type) {
			case Stopping:
				if p.stopped.CompareAndSwap(false, true) {
					if !stoppingInvoked {
						p.invokeReceive(msg, env.sender, env.replyTo)
						stoppingInvoked = true
					}
					closeStopCh(p.stopCh)
				}
			default:
				if p.stopped.Load() {
					continue
				}
				p.invokeReceive(env.message, env.sender, env.replyTo)
			}
		}
	}
}

func (p *process) invokeReceive(msg interface{}, sender *PID, replyTo chan interface{}) {
	ctx := &context{engine: p.engine, self: p.pid, sender: sender, message: msg, replyTo: replyTo}
	defer func() {
		if r := recover(); r != nil {
			p.engine.log.WithField("actor", p.pid.ID).WithField("message", typeName(msg)).
				WithField("panic", r).Error("actor panicked handling message")
			if p.stopped.CompareAndSwap(false, true) {
				closeStopCh(p.stopCh)
			}
		}
	}()
	p.actor.Receive(ctx)
}

func closeStopCh(ch chan struct{}) {
	select {
	case <-ch:
	default:
		close(ch)
	}
}

func typeName(v interface{}) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
