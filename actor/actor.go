// Package actor implements a small in-process actor runtime: one mailbox
// goroutine per actor, messages dispatched through Receive(ctx Context).
//
// This is the concurrency substrate for the whole server: the session
// registry, every session, and every connection are actors. State owned by
// an actor is only ever touched from that actor's own goroutine.
package actor

// Actor is the interface implemented by anything that wants its own
// mailbox and goroutine. Receive is called once per message, strictly
// sequentially - no two calls to Receive on the same actor ever overlap.
type Actor interface {
	Receive(ctx Context)
}

// Producer creates a new Actor instance. Engine.Spawn calls it once, on
// the actor's own goroutine, right before delivering Started.
type Producer func() Actor

// Props configures how an actor is created.
type Props struct {
	producer Producer
}

// NewProps builds a Props from a Producer.
func NewProps(producer Producer) *Props {
	if producer == nil {
		panic("actor: producer cannot be nil")
	}
	return &Props{producer: producer}
}

func (p *Props) produce() Actor { return p.producer() }

// PID is an opaque reference to a running actor.
type PID struct {
	ID string
}

func (pid *PID) String() string {
	if pid == nil {
		return "<nil>"
	}
	return pid.ID
}

// Started is delivered once, immediately after the actor is spawned.
type Started struct{}

// Stopping is delivered once, when the actor has been asked to stop. No
// further user messages are delivered after it.
type Stopping struct{}

// Stopped is the final message an actor receives, right before its
// goroutine exits.
type Stopped struct{}

// messageEnvelope wraps a message with delivery metadata.
type messageEnvelope struct {
	sender    *PID
	message   interface{}
	replyTo   chan interface{}
}
