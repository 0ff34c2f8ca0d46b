// Package orchestrator runs one worker per input shard and reduces their
// outcomes worst-wins.
//
// Workers are independent: they share no files and are never cancelled by
// the parent. The parent only waits for every worker to exit.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/gallerybench/internal/input"
	"github.com/hupe1980/gallerybench/internal/resource"
	"github.com/hupe1980/gallerybench/model"
)

// Worker processes one shard to completion.
type Worker interface {
	Run(ctx context.Context, shard input.Shard) model.ShardResult
}

// WorkerFunc adapts a function to Worker.
type WorkerFunc func(ctx context.Context, shard input.Shard) model.ShardResult

func (f WorkerFunc) Run(ctx context.Context, shard input.Shard) model.ShardResult {
	return f(ctx, shard)
}

type options struct {
	rc     *resource.Controller
	logger *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*options)

// WithResourceController caps the number of concurrently running workers.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Orchestrator fans shards out to workers.
type Orchestrator struct {
	worker Worker
	opts   options
}

// New returns an Orchestrator running w for every shard.
func New(w Worker, optFns ...Option) *Orchestrator {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{worker: w, opts: o}
}

// Run starts one worker per shard and waits for all of them. Results are
// returned in completion order together with the worst status. No shards
// yields StatusSuccess.
func (o *Orchestrator) Run(ctx context.Context, shards []input.Shard) (model.ShardStatus, []model.ShardResult) {
	// Workers must not be cancelled by each other or by the parent.
	ctx = context.WithoutCancel(ctx)

	results := make(chan model.ShardResult, len(shards))
	var g errgroup.Group
	for _, shard := range shards {
		g.Go(func() error {
			if err := o.opts.rc.AcquireWorker(ctx); err != nil {
				results <- model.ShardResult{Shard: shard.Index, Status: model.StatusFailure, Err: err}
				return nil
			}
			defer o.opts.rc.ReleaseWorker()

			start := time.Now()
			res := o.runWorker(ctx, shard)
			o.opts.logger.Info("worker exited",
				"shard", shard.Index,
				"records", shard.Records,
				"status", res.Status.String(),
				"duration", time.Since(start),
				"error", res.Err,
			)
			results <- res
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	worst := model.StatusSuccess
	collected := make([]model.ShardResult, 0, len(shards))
	for res := range results {
		worst = model.Worst(worst, res.Status)
		collected = append(collected, res)
	}
	return worst, collected
}

func (o *Orchestrator) runWorker(ctx context.Context, shard input.Shard) (res model.ShardResult) {
	defer func() {
		if r := recover(); r != nil {
			res = model.ShardResult{Shard: shard.Index, Status: model.StatusFailure, Err: fmt.Errorf("worker panic: %v", r)}
		}
	}()
	res = o.worker.Run(ctx, shard)
	res.Shard = shard.Index
	return res
}
