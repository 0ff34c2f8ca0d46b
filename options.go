package gallerybench

import (
	"fmt"
	"io"

	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/model"
)

// WorkerMode selects how shards are executed.
type WorkerMode string

const (
	// WorkerProcess re-executes the binary once per shard.
	WorkerProcess WorkerMode = "process"
	// WorkerInProcess runs shards as goroutines in the calling process.
	WorkerInProcess WorkerMode = "inprocess"
)

// ParseWorkerMode parses a worker mode name. The empty string selects
// WorkerProcess.
func ParseWorkerMode(s string) (WorkerMode, error) {
	switch WorkerMode(s) {
	case "", WorkerProcess:
		return WorkerProcess, nil
	case WorkerInProcess:
		return WorkerInProcess, nil
	default:
		return "", fmt.Errorf("%w: unknown worker mode %q", ErrConfiguration, s)
	}
}

type options struct {
	fsys             fs.FileSystem
	logger           *Logger
	metricsCollector MetricsCollector
	workerMode       WorkerMode
	maxParallel      int
	ioLimit          int64
	candidates       int
	galleryType      model.GalleryType
	cleanup          bool
	runID            string
	worker           WorkerCommand
	stdout           io.Writer
}

// WorkerCommand describes how a process worker is started.
type WorkerCommand struct {
	// Path is the executable. Empty means the current executable.
	Path string
	// Args are placed before the generated worker arguments, usually the
	// hidden subcommand name.
	Args []string
	// Env is appended to the parent's environment.
	Env []string
}

// Option configures a Harness.
type Option func(*options)

// WithFileSystem sets the file system used by every stage.
// If nil is passed, the local file system is used.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithWorkerMode selects process or in-process workers.
func WithWorkerMode(mode WorkerMode) Option {
	return func(o *options) {
		o.workerMode = mode
	}
}

// WithMaxParallel caps the number of workers running at once.
// n <= 0 runs every shard at once.
func WithMaxParallel(n int) Option {
	return func(o *options) {
		o.maxParallel = n
	}
}

// WithIOLimit throttles EDB writes of each enrollment worker to
// bytesPerSec. 0 disables throttling.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithCandidateListLength sets K, the candidates requested per search.
func WithCandidateListLength(k int) Option {
	return func(o *options) {
		o.candidates = k
	}
}

// WithGalleryType sets the gallery type passed to the engine on finalization.
func WithGalleryType(t model.GalleryType) Option {
	return func(o *options) {
		o.galleryType = t
	}
}

// WithCleanup removes consolidated shard pairs after a successful
// finalization.
func WithCleanup(cleanup bool) Option {
	return func(o *options) {
		o.cleanup = cleanup
	}
}

// WithRunID sets the run id recorded in reports and markers.
// By default a random UUID is generated per Run.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

// WithWorkerCommand configures how process workers are started.
func WithWorkerCommand(cmd WorkerCommand) Option {
	return func(o *options) {
		o.worker = cmd
	}
}

// WithSummaryWriter sets where the run summary table is printed.
// Pass nil to suppress it.
func WithSummaryWriter(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		workerMode:       WorkerProcess,
		galleryType:      model.GalleryUnconsolidated,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	o.fsys = fs.Or(o.fsys)
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	return o
}
