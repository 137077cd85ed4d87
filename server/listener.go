package server

import (
	"net"
	"strconv"

	"github.com/huskgames/snakearena/actor"
	"github.com/huskgames/snakearena/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"
)

// Listen binds the configured address and wraps it in netutil.LimitListener
// so a burst of connection attempts can never run the connection-actor
// count past MaxConnections.
func Listen(cfg config.Config) (net.Listener, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, err
	}
	return netutil.LimitListener(ln, cfg.MaxConnections), nil
}

// Serve accepts connections off ln until it is closed, spawning one
// ConnectionActor per accepted socket. It returns once Accept starts
// failing (normally because ln was closed during shutdown).
func Serve(ln net.Listener, engine *actor.Engine, appPID *actor.PID, log *logrus.Entry) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		props := actor.NewProps(NewConnectionProducer(conn, engine, appPID, log))
		engine.Spawn(props)
	}
}
