package actor

// Context is handed to Receive for each message. It exposes the engine so
// an actor can spawn children or send to siblings, and Reply so an actor
// can answer an Ask without knowing it was an Ask.
type Context interface {
	Engine() *Engine
	Self() *PID
	Sender() *PID
	Message() interface{}
	// Reply answers the current message if it was sent via Ask. A no-op
	// (silently dropped) if the message was sent via Send.
	Reply(msg interface{})
}

type context struct {
	engine  *Engine
	self    *PID
	sender  *PID
	message interface{}
	replyTo chan interface{}
}

func (c *context) Engine() *Engine      { return c.engine }
func (c *context) Self() *PID           { return c.self }
func (c *context) Sender() *PID         { return c.sender }
func (c *context) Message() interface{} { return c.message }

func (c *context) Reply(msg interface{}) {
	if c.replyTo == nil {
		return
	}
	select {
	case c.replyTo <- msg:
	default:
	}
}
