package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huskgames/snakearena/actor"
	"github.com/huskgames/snakearena/config"
	"github.com/huskgames/snakearena/server"
	"github.com/huskgames/snakearena/snake"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	entry := logrus.NewEntry(log)

	configPath := flag.String("config", "", "path to an INI config file (snake_server section); defaults are used if omitted")
	adminAddr := flag.String("admin-addr", "", "address for the admin HTTP endpoint (empty disables it)")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			entry.WithField("err", err).Error("failed to load configuration")
			os.Exit(2)
		}
		cfg = loaded
	}

	engine := actor.NewEngine(entry)
	appPID := engine.Spawn(actor.NewProps(snake.NewAppProducer(engine, cfg, entry)))

	ln, err := server.Listen(cfg)
	if err != nil {
		entry.WithField("err", err).Error("failed to bind listener")
		os.Exit(1)
	}
	entry.WithField("addr", ln.Addr().String()).Info("snake arena server listening")

	var adminServer *http.Server
	if *adminAddr != "" {
		mux := http.NewServeMux()
		admin := server.NewAdmin(engine, appPID)
		mux.Handle("/sessions", admin.HandleListSessions())
		mux.Handle("/health", server.HandleHealth())
		adminServer = &http.Server{Addr: *adminAddr, Handler: mux}
	}

	// The accept loop and the admin HTTP server are the small fixed set of
	// top-level goroutines this process owns; group.Wait surfaces either
	// one's exit instead of letting it fail silently.
	var group errgroup.Group
	group.Go(func() error {
		if err := server.Serve(ln, engine, appPID, entry); err != nil {
			return err
		}
		return nil
	})
	if adminServer != nil {
		group.Go(func() error {
			if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		entry.WithField("addr", *adminAddr).Info("admin endpoint listening")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	entry.Info("shutting down")
	_ = ln.Close()
	if adminServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = adminServer.Shutdown(ctx)
		cancel()
	}
	if err := group.Wait(); err != nil {
		entry.WithField("err", err).Warn("a supervised goroutine exited with an error during shutdown")
	}
	engine.Shutdown(shutdownTimeout)
}
