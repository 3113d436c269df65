package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/erazemk/katalog/internal/config"
	"github.com/erazemk/katalog/internal/events"
)

// WorkerCmd consumes cleanup events and deletes the referenced images.
type WorkerCmd struct{}

func (c *WorkerCmd) Run(cfg *config.Config) error {
	if err := cfg.ValidateWorker(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	images, _, err := openImages(ctx, cfg)
	if err != nil {
		return err
	}

	conn, err := events.DialRabbit(cfg.Rabbit())
	if err != nil {
		return err
	}
	defer conn.Close()

	cleaner := &events.Cleaner{Objects: images}
	consumer, err := events.NewRabbitConsumer(conn, cfg.Rabbit(), config.Prefetch, cleaner.Handle)
	if err != nil {
		return err
	}
	defer consumer.Close()

	slog.Info("cleanup worker started", "queue", cfg.AMQPQueue, "backend", cfg.ImagesBackend)
	if err := consumer.Run(ctx); err != nil {
		return err
	}
	slog.Info("cleanup worker stopped")
	return nil
}
