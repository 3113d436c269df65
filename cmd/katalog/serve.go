package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/katalog/internal/api"
	"github.com/erazemk/katalog/internal/catalog"
	"github.com/erazemk/katalog/internal/config"
	"github.com/erazemk/katalog/internal/db"
	"github.com/erazemk/katalog/internal/events"
)

// ServeCmd runs the HTTP API.
type ServeCmd struct{}

func (c *ServeCmd) Run(cfg *config.Config) error {
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	database, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("database ready", "path", cfg.DB)

	images, imagesHandler, err := openImages(context.Background(), cfg)
	if err != nil {
		return err
	}
	slog.Info("object store ready", "backend", cfg.ImagesBackend)

	publisher, closeBus, err := openBus(cfg, images)
	if err != nil {
		return err
	}
	defer closeBus()

	svc := catalog.New(database, images, publisher, cfg.AdminGroup)
	handler := api.LoggingMiddleware(api.NewRouter(svc, cfg.JWTSecret, imagesHandler))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr, err)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	slog.Info("server started", "addr", ln.Addr().String())
	if err := serveUntilSignal(server, ln, quit); err != nil {
		return err
	}

	slog.Info("server stopped, draining cleanup events")
	return nil
}

// serveUntilSignal serves on ln until a signal arrives on quit. It returns
// only after Shutdown has finished, so in-flight requests complete before
// the caller closes the bus and the database.
func serveUntilSignal(server *http.Server, ln net.Listener, quit <-chan os.Signal) error {
	done := make(chan struct{})
	go func() {
		defer close(done)

		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	<-done
	return nil
}

// openBus returns the cleanup event publisher. The local bus runs the cleaner
// in-process; with RabbitMQ a separate worker consumes the events.
func openBus(cfg *config.Config, images events.Deleter) (events.Publisher, func(), error) {
	if cfg.Bus == config.BusRabbitMQ {
		conn, err := events.DialRabbit(cfg.Rabbit())
		if err != nil {
			return nil, nil, err
		}
		pub, err := events.NewRabbitPublisher(conn, cfg.Rabbit())
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		slog.Info("publishing cleanup events to rabbitmq", "exchange", cfg.AMQPExchange)
		return pub, func() {
			pub.Close()
			conn.Close()
		}, nil
	}

	cleaner := &events.Cleaner{Objects: images}
	bus := events.NewLocalBus(cleaner.Handle, config.BusBuffer)
	slog.Info("running cleanup worker in-process")
	return bus, bus.Close, nil
}
