// Package e2e drives the server through real net.Conn pairs rather than
// mocking net.Conn's concrete type, so these tests exercise the actual
// framing and actor wiring end to end.
package e2e

import (
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huskgames/snakearena/actor"
	"github.com/huskgames/snakearena/config"
	"github.com/huskgames/snakearena/server"
	"github.com/huskgames/snakearena/snake"
	"github.com/huskgames/snakearena/wire"
	"github.com/sirupsen/logrus"
)

// testClient is the test's own hand on one net.Pipe end: it speaks the
// wire protocol directly, the way a real client would. A background
// goroutine drains incoming frames into a channel so recvType can filter
// by type without racing ReadEnvelope calls against each other.
type testClient struct {
	conn   net.Conn
	writer *wire.Writer
	frames chan wire.Envelope
}

// pipeAddr gives each server-side pipe end its own remote address:
// net.Pipe reports "pipe" for every connection, and the server keys
// connections by remote address.
type pipeAddr int64

func (a pipeAddr) Network() string { return "pipe" }
func (a pipeAddr) String() string  { return fmt.Sprintf("pipe:%d", int64(a)) }

type addressedConn struct {
	net.Conn
	remote net.Addr
}

func (c addressedConn) RemoteAddr() net.Addr { return c.remote }

var pipeCounter atomic.Int64

func newTestClient(t *testing.T, engine *actor.Engine, appPID *actor.PID, log *logrus.Entry) *testClient {
	t.Helper()
	clientConn, pipeEnd := net.Pipe()
	serverConn := addressedConn{Conn: pipeEnd, remote: pipeAddr(pipeCounter.Add(1))}
	props := actor.NewProps(server.NewConnectionProducer(serverConn, engine, appPID, log))
	pid := engine.Spawn(props)
	if pid == nil {
		t.Fatal("failed to spawn connection actor")
	}

	c := &testClient{
		conn:   clientConn,
		writer: wire.NewWriter(clientConn),
		frames: make(chan wire.Envelope, 64),
	}
	reader := wire.NewReader(clientConn)
	go func() {
		for {
			env, err := reader.ReadEnvelope()
			if err != nil {
				close(c.frames)
				return
			}
			c.frames <- env
		}
	}()
	return c
}

func (c *testClient) send(t *testing.T, msgType string, payload interface{}) {
	t.Helper()
	if err := c.writer.WriteMessage(msgType, payload); err != nil {
		t.Fatalf("send %s: %v", msgType, err)
	}
}

// recvType reads frames, skipping any whose type doesn't match, until it
// finds one of the given type or times out.
func (c *testClient) recvType(t *testing.T, want string) wire.Envelope {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case env, ok := <-c.frames:
			if !ok {
				t.Fatalf("connection closed waiting for %s", want)
			}
			if env.Type == want {
				return env
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func newTestHarness(t *testing.T) (*actor.Engine, *actor.PID) {
	t.Helper()
	log := logrus.NewEntry(logrus.New())
	log.Logger.SetLevel(logrus.ErrorLevel)
	engine := actor.NewEngine(log)
	cfg := config.FastTestConfig()
	appPID := engine.Spawn(actor.NewProps(snake.NewAppProducer(engine, cfg, log)))
	t.Cleanup(func() { engine.Shutdown(2 * time.Second) })
	return engine, appPID
}
