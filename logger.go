package gallerybench

import (
	"context"
	"log/slog"

	"github.com/hupe1980/gallerybench/internal/finalize"
	"github.com/hupe1980/gallerybench/internal/input"
	"github.com/hupe1980/gallerybench/internal/logging"
	"github.com/hupe1980/gallerybench/model"
)

// Logger wraps slog.Logger with harness-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, logs are discarded.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.DiscardHandler
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewLoggerWithOptions builds a Logger from level and format names.
// See logging.Options.
func NewLoggerWithOptions(opts logging.Options) (*Logger, error) {
	l, err := logging.New(opts)
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: l}, nil
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: logging.Discard()}
}

// WithRunID adds the run id to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{Logger: l.Logger.With("run_id", id)}
}

// WithShard adds a shard field to the logger.
func (l *Logger) WithShard(shard int) *Logger {
	return &Logger{Logger: l.Logger.With("shard", shard)}
}

// WithAction adds the action and modality to the logger.
func (l *Logger) WithAction(m model.Modality, a model.Action) *Logger {
	return &Logger{Logger: l.Logger.With("modality", m.String(), "action", a.String())}
}

// LogSplit logs the sharding of the input file.
func (l *Logger) LogSplit(ctx context.Context, inputFile string, shards []input.Shard, err error) {
	if err != nil {
		l.ErrorContext(ctx, "input split failed",
			"input", inputFile,
			"error", err,
		)
		return
	}
	records := 0
	for _, sh := range shards {
		records += sh.Records
	}
	l.InfoContext(ctx, "input split",
		"input", inputFile,
		"shards", len(shards),
		"records", records,
	)
}

// LogShard logs the outcome of one worker.
func (l *Logger) LogShard(ctx context.Context, res model.ShardResult) {
	switch res.Status {
	case model.StatusSuccess:
		l.DebugContext(ctx, "worker completed",
			"shard", res.Shard,
		)
	case model.StatusNotImplemented:
		l.WarnContext(ctx, "worker stopped: engine does not implement the operation",
			"shard", res.Shard,
		)
	default:
		l.ErrorContext(ctx, "worker failed",
			"shard", res.Shard,
			"error", res.Err,
		)
	}
}

// LogRun logs the reduced status of a run.
func (l *Logger) LogRun(ctx context.Context, status model.ShardStatus, workers int) {
	if status == model.StatusFailure {
		l.ErrorContext(ctx, "run failed",
			"workers", workers,
			"status", status.String(),
		)
		return
	}
	l.InfoContext(ctx, "run completed",
		"workers", workers,
		"status", status.String(),
	)
}

// LogFinalize logs a finalization.
func (l *Logger) LogFinalize(ctx context.Context, res finalize.Result, err error) {
	if err != nil {
		l.ErrorContext(ctx, "finalization failed",
			"error", err,
		)
		return
	}
	if res.Reused {
		l.InfoContext(ctx, "gallery already finalized",
			"digest", res.Digest,
		)
		return
	}
	l.InfoContext(ctx, "gallery finalized",
		"entries", len(res.Pair.Entries),
		"edb_size", res.Pair.EDBSize,
		"consolidated_shards", len(res.Consolidated),
		"digest", res.Digest,
	)
}
