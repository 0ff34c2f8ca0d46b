package orchestrator

import (
	"context"

	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/input"
	"github.com/hupe1980/gallerybench/model"
)

// InProcess runs shards as goroutine tasks in the current process.
// The returned error is classified with failure.Status.
type InProcess func(ctx context.Context, shard input.Shard) error

func (f InProcess) Run(ctx context.Context, shard input.Shard) model.ShardResult {
	err := f(ctx, shard)
	return model.ShardResult{Shard: shard.Index, Status: failure.Status(err), Err: err}
}
