package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kong"

	"github.com/erazemk/katalog/internal/config"
	"github.com/erazemk/katalog/internal/objectstore"
)

// CLI is the katalog command line.
type CLI struct {
	config.Config `embed:""`

	Serve  ServeCmd  `cmd:"" default:"1" help:"Run the HTTP API (default)."`
	Worker WorkerCmd `cmd:"" help:"Consume image cleanup events from RabbitMQ."`
}

func main() {
	if err := config.LoadEnvFile(config.DefaultEnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("katalog"),
		kong.Description("Catalog API for tags, categories and items."),
		kong.UsageOnError(),
	)

	closeLog, err := setupLogger(cli.Log, cli.LogFormat, cli.Level())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// FatalIfErrorf exits the process, so the log is closed before it.
	err = ctx.Run(&cli.Config)
	closeLog()
	ctx.FatalIfErrorf(err)
}

// openImages builds the configured object store. The returned handler serves
// objects for public read and is nil for backends that host their own URLs.
func openImages(ctx context.Context, cfg *config.Config) (objectstore.Store, http.Handler, error) {
	switch cfg.ImagesBackend {
	case config.BackendS3:
		s3, err := objectstore.NewS3(ctx, cfg.S3())
		if err != nil {
			return nil, nil, fmt.Errorf("setting up s3: %w", err)
		}
		return s3, nil, nil
	default:
		disk, err := objectstore.NewDisk(cfg.ImagesDir, cfg.DiskBaseURL())
		if err != nil {
			return nil, nil, err
		}
		return disk, disk.Handler(), nil
	}
}
