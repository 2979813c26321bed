package claimflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/claimflow/claimflow-go/internal/config"
	"github.com/claimflow/claimflow-go/internal/infrastructure/audit"
	"github.com/claimflow/claimflow-go/internal/infrastructure/awsutil"
	"github.com/claimflow/claimflow-go/internal/infrastructure/documents"
)

// Config is the application configuration.
type Config = config.Config

// LoadConfig reads configuration from file and environment.
func LoadConfig() (Config, error) {
	return config.Load()
}

// NewLogger builds a slog logger writing to stderr.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
}

// OpenSink builds the audit sink selected by cfg. SQL sinks are migrated
// before use.
func OpenSink(ctx context.Context, cfg Config, logger *slog.Logger) (Sink, error) {
	switch cfg.Audit.Sink {
	case "none":
		return audit.NopSink{}, nil
	case "log":
		return audit.NewLogSink(logger), nil
	case audit.DriverSQLite, audit.DriverPostgres:
		sink, err := audit.OpenSQLSink(cfg.Audit.Sink, cfg.Audit.DSN)
		if err != nil {
			return nil, err
		}
		if err := sink.Migrate(); err != nil {
			sink.Close()
			return nil, err
		}
		return sink, nil
	case "dynamodb":
		awsCfg, err := awsutil.Load(ctx, cfg.AWS.Region, cfg.AWS.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		return audit.NewDynamoSink(awsCfg.DynamoDB(), cfg.Audit.Table), nil
	default:
		return nil, fmt.Errorf("unknown audit sink %q", cfg.Audit.Sink)
	}
}

// OpenDocumentStore builds the document store selected by cfg.
func OpenDocumentStore(ctx context.Context, cfg Config) (DocumentStore, error) {
	switch cfg.Documents.Backend {
	case "local":
		return documents.NewLocalStore(cfg.Documents.Dir), nil
	case "s3":
		awsCfg, err := awsutil.Load(ctx, cfg.AWS.Region, cfg.AWS.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		return documents.NewS3Store(awsCfg.S3(), cfg.Documents.Bucket, cfg.Documents.Prefix, cfg.Documents.PresignTTL), nil
	default:
		return nil, fmt.Errorf("unknown document backend %q", cfg.Documents.Backend)
	}
}

// NewFromConfig wires a System from configuration.
func NewFromConfig(ctx context.Context, cfg Config, users []User, policies []Policy) (*System, error) {
	logger := NewLogger(cfg.Log)

	sink, err := OpenSink(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	store, err := OpenDocumentStore(ctx, cfg)
	if err != nil {
		closeSink(sink)
		return nil, err
	}

	sys, err := New(Options{
		Users:            users,
		Policies:         policies,
		Sink:             sink,
		Documents:        store,
		Logger:           logger,
		ForwarderWorkers: cfg.Audit.Workers,
		ForwarderBuffer:  cfg.Audit.Buffer,
	})
	if err != nil {
		closeSink(sink)
		return nil, err
	}
	return sys, nil
}

func closeSink(sink Sink) {
	if c, ok := sink.(io.Closer); ok {
		c.Close()
	}
}
