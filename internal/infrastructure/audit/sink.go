package audit

import (
	"context"
	"log/slog"

	"github.com/claimflow/claimflow-go/internal/domain/claims"
)

// Sink receives committed audit entries outside the core.
type Sink interface {
	Name() string
	Write(ctx context.Context, entry claims.AuditEntry) error
}

// LogSink writes entries to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs every entry at info level.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Name returns the sink name.
func (s *LogSink) Name() string { return "log" }

// Write logs the entry.
func (s *LogSink) Write(ctx context.Context, entry claims.AuditEntry) error {
	s.logger.InfoContext(ctx, "audit entry",
		"id", entry.ID,
		"sequence", entry.Sequence,
		"claim", entry.ClaimID,
		"kind", string(entry.Kind),
		"actor", entry.ActorID,
		"role", string(entry.ActorRole),
		"override", entry.Override,
		"detail", entry.Detail,
	)
	return nil
}

// NopSink discards entries.
type NopSink struct{}

// Name returns the sink name.
func (NopSink) Name() string { return "none" }

// Write discards the entry.
func (NopSink) Write(context.Context, claims.AuditEntry) error { return nil }
