package gallerybench

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/gallerybench/engine"
	"github.com/hupe1980/gallerybench/gallery"
	"github.com/hupe1980/gallerybench/internal/enroll"
	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/finalize"
	"github.com/hupe1980/gallerybench/internal/input"
	"github.com/hupe1980/gallerybench/internal/orchestrator"
	"github.com/hupe1980/gallerybench/internal/report"
	"github.com/hupe1980/gallerybench/internal/resource"
	"github.com/hupe1980/gallerybench/internal/search"
	"github.com/hupe1980/gallerybench/model"
)

// Invocation is one harness run: a modality, an action and the directories
// it works on.
type Invocation struct {
	Modality  model.Modality
	Action    model.Action
	ConfigDir string
	EnrollDir string
	OutputDir string
	Stem      string
	InputFile string
	// Shards is the number of workers the input is split over.
	Shards int
}

// Validate checks that the invocation names everything its action needs.
func (inv Invocation) Validate() error {
	if inv.Modality < model.ModalityFace || inv.Modality > model.ModalityFive {
		return fmt.Errorf("%w: invalid modality %s", ErrConfiguration, inv.Modality)
	}
	if inv.Action < model.ActionEnroll1N || inv.Action > model.ActionSearchMulti1N {
		return fmt.Errorf("%w: invalid action %s", ErrConfiguration, inv.Action)
	}
	if inv.Action == model.ActionSearchMulti1N && !inv.Modality.SupportsMultiSearch() {
		return fmt.Errorf("%w: %s is not supported for modality %s", ErrConfiguration, inv.Action, inv.Modality)
	}

	required := []struct{ name, value string }{
		{"config directory", inv.ConfigDir},
		{"enrollment directory", inv.EnrollDir},
		{"output directory", inv.OutputDir},
	}
	if inv.Action.Sharded() {
		required = append(required,
			struct{ name, value string }{"output stem", inv.Stem},
			struct{ name, value string }{"input file", inv.InputFile},
		)
		if inv.Shards < 1 {
			return fmt.Errorf("%w: number of shards must be positive, got %d", ErrConfiguration, inv.Shards)
		}
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s is required for %s", ErrConfiguration, r.name, inv.Action)
		}
	}
	return nil
}

// Outcome describes a finished run.
type Outcome struct {
	RunID  string
	Status model.ShardStatus
	// Results holds one entry per worker in completion order.
	Results []model.ShardResult
	// Reports holds one entry per worker in shard order.
	Reports []report.ShardReport
	// Finalize is set for finalize_1N.
	Finalize *finalize.Result
}

// Harness runs invocations against a template engine.
type Harness struct {
	engine engine.TemplateEngine
	opts   options
}

// New returns a Harness driving e.
func New(e engine.TemplateEngine, optFns ...Option) *Harness {
	return &Harness{engine: e, opts: applyOptions(optFns)}
}

// Run executes inv and returns its outcome. The error is nil on success,
// matches ErrNotImplemented when the engine declined the phase and is
// non-nil otherwise; ExitCode maps it to the process exit status.
func (h *Harness) Run(ctx context.Context, inv Invocation) (Outcome, error) {
	out := Outcome{RunID: h.opts.runID, Status: model.StatusFailure}
	if out.RunID == "" {
		out.RunID = uuid.NewString()
	}
	logger := h.opts.logger.WithRunID(out.RunID).WithAction(inv.Modality, inv.Action)

	if err := inv.Validate(); err != nil {
		return out, err
	}

	if inv.Action == model.ActionFinalize1N {
		res, err := finalize.New(h.engine,
			finalize.WithFileSystem(h.opts.fsys),
			finalize.WithLogger(logger.Logger),
			finalize.WithMetrics(h.opts.metricsCollector),
		).Run(ctx, finalize.Job{
			ConfigDir:   inv.ConfigDir,
			EnrollDir:   inv.EnrollDir,
			OutputDir:   inv.OutputDir,
			GalleryType: h.opts.galleryType,
			Cleanup:     h.opts.cleanup,
			RunID:       out.RunID,
		})
		logger.LogFinalize(ctx, res, err)
		out.Status = failure.Status(err)
		if err == nil {
			out.Finalize = &res
		}
		return out, err
	}

	if err := h.initialize(ctx, inv); err != nil {
		logger.ErrorContext(ctx, "engine initialization failed", "error", err)
		out.Status = failure.Status(err)
		return out, err
	}

	if inv.Action == model.ActionEnroll1N {
		// finalize_1N must only see the galleries of this enrollment.
		if err := gallery.Reset(h.opts.fsys, inv.OutputDir); err != nil {
			logger.ErrorContext(ctx, "stale gallery not removed", "error", err)
			return out, err
		}
	}

	shards, err := input.Sharder{FS: h.opts.fsys, Modality: inv.Modality}.Split(ctx, inv.InputFile, inv.OutputDir, inv.Shards)
	logger.LogSplit(ctx, inv.InputFile, shards, err)
	if err != nil {
		return out, err
	}

	worker := h.shardWorker(inv, out.RunID, logger)
	orch := orchestrator.New(worker,
		orchestrator.WithResourceController(resource.NewController(resource.Config{MaxWorkers: int64(max(h.opts.maxParallel, 0))})),
		orchestrator.WithLogger(logger.Logger),
	)
	out.Status, out.Results = orch.Run(ctx, shards)
	out.Reports = h.collectReports(inv, out.RunID, out.Results)

	if h.opts.stdout != nil && len(out.Reports) > 0 {
		fmt.Fprintln(h.opts.stdout, report.Summary(out.Reports))
	}
	logger.LogRun(ctx, out.Status, len(shards))
	return out, statusError(inv.Action, out.Status, out.Results)
}

// RunWorker processes one shard of a sharded invocation in the calling
// process. It initializes the engine first and is the entry point of the
// hidden worker subcommand; the shard file must have been written by Run.
func (h *Harness) RunWorker(ctx context.Context, inv Invocation, shard int) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	if !inv.Action.Sharded() {
		return fmt.Errorf("%w: %s does not run workers", ErrConfiguration, inv.Action)
	}
	runID := h.opts.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := h.opts.logger.WithRunID(runID).WithAction(inv.Modality, inv.Action).WithShard(shard)

	if err := h.initialize(ctx, inv); err != nil {
		logger.ErrorContext(ctx, "engine initialization failed", "error", err)
		return err
	}
	sh := input.Shard{Index: shard, Path: input.ShardPath(inv.OutputDir, shard)}
	return h.runShard(ctx, inv, runID, sh, logger)
}

func (h *Harness) initialize(ctx context.Context, inv Invocation) error {
	role := model.RoleEnrollment1N
	if inv.Action.IsSearch() {
		role = model.RoleSearch1N
	}
	if st := h.engine.InitializeTemplateCreation(ctx, inv.ConfigDir, role); !st.IsSuccess() {
		return initError("initialize template creation", st)
	}
	if inv.Action.IsSearch() {
		if st := h.engine.InitializeSearch(ctx, inv.ConfigDir, inv.EnrollDir); !st.IsSuccess() {
			return initError("initialize search", st)
		}
	}
	return nil
}

func initError(op string, st model.ReturnStatus) error {
	return failure.Wrap(failure.ErrConfiguration, "engine", op, "returned "+st.String(), nil)
}

func (h *Harness) shardWorker(inv Invocation, runID string, logger *Logger) orchestrator.Worker {
	var w orchestrator.Worker
	switch h.opts.workerMode {
	case WorkerInProcess:
		w = orchestrator.InProcess(func(ctx context.Context, shard input.Shard) error {
			return h.runShard(ctx, inv, runID, shard, logger.WithShard(shard.Index))
		})
	default:
		cmd := h.opts.worker
		w = &orchestrator.Process{
			Path: cmd.Path,
			Args: func(shard input.Shard) []string {
				args := append([]string(nil), cmd.Args...)
				return append(args, h.workerArgs(inv, runID, shard.Index)...)
			},
			Env: cmd.Env,
		}
	}

	return orchestrator.WorkerFunc(func(ctx context.Context, shard input.Shard) model.ShardResult {
		start := time.Now()
		res := w.Run(ctx, shard)
		h.opts.metricsCollector.RecordShard(inv.Action, res.Status, time.Since(start))
		logger.LogShard(ctx, res)
		return res
	})
}

// workerArgs renders the arguments of the hidden worker subcommand.
func (h *Harness) workerArgs(inv Invocation, runID string, shard int) []string {
	return []string{
		inv.Modality.String(), inv.Action.String(),
		"-c", inv.ConfigDir,
		"-e", inv.EnrollDir,
		"-o", inv.OutputDir,
		"-h", inv.Stem,
		"--shard", strconv.Itoa(shard),
		"--run-id", runID,
		"--candidates", strconv.Itoa(h.opts.candidates),
		"--io-limit", strconv.FormatInt(h.opts.ioLimit, 10),
	}
}

// runShard runs the enrollment or search stage of one shard and writes its
// report.
func (h *Harness) runShard(ctx context.Context, inv Invocation, runID string, shard input.Shard, logger *Logger) error {
	started := time.Now()

	var (
		tally *report.Tally
		err   error
	)
	switch inv.Action {
	case model.ActionEnroll1N:
		var rc *resource.Controller
		if h.opts.ioLimit > 0 {
			rc = resource.NewController(resource.Config{IOLimitBytesPerSec: h.opts.ioLimit})
		}
		tally, err = enroll.New(h.engine,
			enroll.WithFileSystem(h.opts.fsys),
			enroll.WithResourceController(rc),
			enroll.WithLogger(logger.Logger),
			enroll.WithMetrics(h.opts.metricsCollector),
		).Run(ctx, enroll.Job{
			Shard:     shard.Index,
			InputPath: shard.Path,
			OutputDir: inv.OutputDir,
			Stem:      inv.Stem,
			Modality:  inv.Modality,
		})
	default:
		tally, err = search.New(h.engine,
			search.WithFileSystem(h.opts.fsys),
			search.WithLogger(logger.Logger),
			search.WithMetrics(h.opts.metricsCollector),
		).Run(ctx, search.Job{
			Shard:     shard.Index,
			InputPath: shard.Path,
			OutputDir: inv.OutputDir,
			Stem:      inv.Stem,
			Modality:  inv.Modality,
			Action:    inv.Action,
			K:         h.opts.candidates,
		})
	}
	if err != nil && failure.Status(err) == model.StatusFailure {
		logger.ErrorContext(ctx, "shard failed", "error", err)
	}

	r, rerr := report.New(runID, inv.Action, shard.Index, failure.Status(err), tally, err)
	if rerr == nil {
		r.Started, r.Finished = started.UTC(), time.Now().UTC()
		rerr = report.Write(h.opts.fsys, report.Path(inv.OutputDir, inv.Stem, inv.Action, shard.Index), r)
	}
	if rerr != nil {
		logger.WarnContext(ctx, "shard report not written", "error", rerr)
		if err == nil {
			err = failure.Wrap(failure.ErrIO, "report", "write", "", rerr)
		}
	}
	return err
}

// collectReports reads the report of every worker. Workers that died
// before writing one, or left one from another run, get a report built
// from their exit status.
func (h *Harness) collectReports(inv Invocation, runID string, results []model.ShardResult) []report.ShardReport {
	reports := make([]report.ShardReport, 0, len(results))
	for _, res := range results {
		r, err := report.Read(h.opts.fsys, report.Path(inv.OutputDir, inv.Stem, inv.Action, res.Shard))
		if err != nil || r.RunID != runID {
			r, _ = report.New(runID, inv.Action, res.Shard, res.Status, nil, res.Err)
		}
		if r.ShardStatus() != res.Status {
			r.Status = res.Status.String()
			if res.Err != nil && r.Error == "" {
				r.Error = res.Err.Error()
			}
		}
		reports = append(reports, r)
	}
	report.Sort(reports)
	return reports
}

func statusError(action model.Action, status model.ShardStatus, results []model.ShardResult) error {
	switch status {
	case model.StatusSuccess:
		return nil
	case model.StatusNotImplemented:
		return failure.Wrap(failure.ErrNotImplemented, "harness", action.String(), "engine declined the operation", nil)
	}

	failed := 0
	var first *model.ShardResult
	for i := range results {
		if results[i].Status != model.StatusFailure {
			continue
		}
		failed++
		if first == nil || results[i].Shard < first.Shard {
			first = &results[i]
		}
	}
	if first != nil && first.Err != nil {
		return fmt.Errorf("%w: %d of %d workers failed, shard %d: %w", ErrWorkerFailed, failed, len(results), first.Shard, first.Err)
	}
	return fmt.Errorf("%w: %d of %d workers failed", ErrWorkerFailed, failed, len(results))
}
