// Package config holds the runtime configuration shared by the katalog
// commands. Values come from flags, KATALOG_* environment variables and an
// optional .env file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"

	"github.com/erazemk/katalog/internal/events"
	"github.com/erazemk/katalog/internal/objectstore"
)

// Defaults, mirrored in the struct tags below.
const (
	DefaultDB         = "katalog.sqlite3"
	DefaultAddr       = ":8080"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultAdminGroup = "admin"
	DefaultImagesDir  = "images"
	DefaultExchange   = "katalog.items"
	DefaultQueue      = "katalog.delete-images"
	DefaultRoutingKey = "DeleteImages"
	DefaultEnvFile    = ".env"
)

const (
	BackendDisk = "disk"
	BackendS3   = "s3"

	BusLocal    = "local"
	BusRabbitMQ = "rabbitmq"
)

// Tuning knobs that are not exposed as flags.
const (
	BusBuffer    = 64
	Prefetch     = 8
	ImagesPrefix = "/images"
)

// Config is decoded by kong. Every field can also be set from the
// environment.
type Config struct {
	DB   string `name:"db" short:"d" env:"KATALOG_DB" default:"katalog.sqlite3" help:"SQLite database path."`
	Addr string `name:"addr" short:"a" env:"KATALOG_ADDR" default:":8080" help:"HTTP listen address."`

	Log       string `name:"log" short:"l" env:"KATALOG_LOG" help:"Also write logs to this file."`
	LogLevel  string `name:"log-level" env:"KATALOG_LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Minimum log level."`
	LogFormat string `name:"log-format" env:"KATALOG_LOG_FORMAT" default:"text" enum:"text,json" help:"Log output format."`

	JWTSecret  string `name:"jwt-secret" env:"KATALOG_JWT_SECRET" help:"HS256 key used to verify bearer tokens."`
	AdminGroup string `name:"admin-group" env:"KATALOG_ADMIN_GROUP" default:"admin" help:"Group whose members may run admin-only operations."`

	ImagesBackend string `name:"images-backend" env:"KATALOG_IMAGES_BACKEND" default:"disk" enum:"disk,s3" help:"Object store for images."`
	ImagesDir     string `name:"images-dir" env:"KATALOG_IMAGES_DIR" default:"images" help:"Image directory for the disk backend."`
	ImagesBaseURL string `name:"images-base-url" env:"KATALOG_IMAGES_BASE_URL" help:"Public URL prefix of stored images."`

	S3Bucket   string `name:"s3-bucket" env:"KATALOG_S3_BUCKET" help:"S3 bucket for the s3 backend."`
	S3Region   string `name:"s3-region" env:"KATALOG_S3_REGION" help:"S3 region."`
	S3Endpoint string `name:"s3-endpoint" env:"KATALOG_S3_ENDPOINT" help:"Custom S3 endpoint (MinIO, LocalStack)."`

	Bus            string `name:"bus" env:"KATALOG_BUS" default:"local" enum:"local,rabbitmq" help:"Event bus for image cleanup."`
	AMQPURL        string `name:"amqp-url" env:"KATALOG_AMQP_URL" help:"RabbitMQ connection URL."`
	AMQPExchange   string `name:"amqp-exchange" env:"KATALOG_AMQP_EXCHANGE" default:"katalog.items" help:"Exchange cleanup events are published to."`
	AMQPQueue      string `name:"amqp-queue" env:"KATALOG_AMQP_QUEUE" default:"katalog.delete-images" help:"Queue the cleanup worker consumes."`
	AMQPRoutingKey string `name:"amqp-routing-key" env:"KATALOG_AMQP_ROUTING_KEY" default:"DeleteImages" help:"Routing key of cleanup events."`
}

// LoadEnvFile loads variables from path into the process environment without
// overriding ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ValidateServe checks the settings needed by the HTTP server. It is not named
// Validate so kong does not run it for every command.
func (c *Config) ValidateServe() error {
	if c.JWTSecret == "" {
		return errors.New("jwt secret is required (KATALOG_JWT_SECRET)")
	}
	if err := c.validateImages(); err != nil {
		return err
	}
	if c.Bus == BusRabbitMQ && c.AMQPURL == "" {
		return errors.New("amqp url is required for the rabbitmq bus (KATALOG_AMQP_URL)")
	}
	return nil
}

// ValidateWorker checks the settings needed by the standalone cleanup worker.
func (c *Config) ValidateWorker() error {
	if err := c.validateImages(); err != nil {
		return err
	}
	if c.AMQPURL == "" {
		return errors.New("amqp url is required (KATALOG_AMQP_URL)")
	}
	return nil
}

func (c *Config) validateImages() error {
	switch c.ImagesBackend {
	case BackendDisk:
		if c.ImagesDir == "" {
			return errors.New("images dir is required for the disk backend")
		}
	case BackendS3:
		if c.S3Bucket == "" {
			return errors.New("s3 bucket is required for the s3 backend (KATALOG_S3_BUCKET)")
		}
	default:
		return fmt.Errorf("unknown images backend %q", c.ImagesBackend)
	}
	return nil
}

// Level returns the configured slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Rabbit returns the broker settings.
func (c *Config) Rabbit() events.RabbitConfig {
	return events.RabbitConfig{
		URL:        c.AMQPURL,
		Exchange:   c.AMQPExchange,
		Queue:      c.AMQPQueue,
		RoutingKey: c.AMQPRoutingKey,
	}
}

// S3 returns the S3 backend settings.
func (c *Config) S3() objectstore.S3Config {
	return objectstore.S3Config{
		Bucket:   c.S3Bucket,
		Region:   c.S3Region,
		Endpoint: c.S3Endpoint,
	}
}

// DiskBaseURL is the public prefix for disk-backed images. Without an explicit
// base URL images are served relative to the API.
func (c *Config) DiskBaseURL() string {
	if c.ImagesBaseURL != "" {
		return strings.TrimSuffix(c.ImagesBaseURL, "/")
	}
	return ImagesPrefix
}
