// Package resource bounds the resources a harness run consumes.
//
//   - Workers: caps how many shard workers run at once (weighted semaphore)
//   - IO: token-bucket rate limit on EDB writes
//
// # Worker Slots
//
//	rc := resource.NewController(resource.Config{MaxWorkers: 4})
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// # IO Rate Limiting
//
//	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 64 << 20})
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//
// All methods handle a nil Controller; they become no-ops.
package resource
