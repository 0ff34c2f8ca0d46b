// Package search runs the identification stage of one shard: it creates
// search templates for every search record, searches the finalized gallery and
// writes validated candidate lists.
package search

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hupe1980/gallerybench/engine"
	"github.com/hupe1980/gallerybench/internal/candidate"
	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/internal/input"
	"github.com/hupe1980/gallerybench/internal/report"
	"github.com/hupe1980/gallerybench/model"
)

// DefaultCandidateListLength is the number of candidates requested per search.
const DefaultCandidateListLength = 20

// Metrics receives template creation and search timings.
type Metrics interface {
	RecordTemplate(role model.TemplateRole, d time.Duration, code model.ReturnCode)
	RecordSearch(k int, d time.Duration, code model.ReturnCode)
}

type options struct {
	fsys    fs.FileSystem
	logger  *slog.Logger
	metrics Metrics
}

// Option configures a Runner.
type Option func(*options)

// WithFileSystem sets the filesystem for inputs and outputs.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) { o.fsys = fsys }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Job describes one search shard.
type Job struct {
	Shard     int
	InputPath string
	OutputDir string
	Stem      string
	Modality  model.Modality
	Action    model.Action
	// K is the candidate list length; values < 1 use DefaultCandidateListLength.
	K int
}

// Multi reports whether search records expand into several search templates.
func (j Job) Multi() bool {
	return j.Action == model.ActionSearchMulti1N || j.Modality == model.ModalityFive
}

func (j Job) k() int {
	if j.K < 1 {
		return DefaultCandidateListLength
	}
	return j.K
}

// ListPath returns the candidate list file of shard i.
func ListPath(outputDir, stem string, action model.Action, shard int) string {
	return filepath.Join(outputDir, stem+"."+action.String()+"."+strconv.Itoa(shard))
}

// Runner searches shards through a template engine.
type Runner struct {
	engine engine.TemplateEngine
	opts   options
}

// New returns a Runner driving e.
func New(e engine.TemplateEngine, optFns ...Option) *Runner {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}
	o.fsys = fs.Or(o.fsys)
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{engine: e, opts: o}
}

// shardRun is the state of one Run call.
type shardRun struct {
	*Runner
	job    Job
	out    *fs.Output
	logger *slog.Logger
}

// Run searches every record of job.InputPath.
//
// On success the candidate list file is complete and the input shard file is
// removed. A NotImplemented search template creation removes the candidate
// list, consumes the input and returns an error matching
// failure.ErrNotImplemented. Every other error is fatal: the candidate list
// is removed and the input shard file is kept.
func (r *Runner) Run(ctx context.Context, job Job) (*report.Tally, error) {
	tally := report.NewTally()
	if job.Action == model.ActionSearchMulti1N && !job.Modality.SupportsMultiSearch() {
		return tally, failure.Wrap(failure.ErrConfiguration, "search", "", job.Action.String()+" is not supported for modality "+job.Modality.String(), nil)
	}
	if !job.Action.IsSearch() {
		return tally, failure.Wrap(failure.ErrConfiguration, "search", "", "action "+job.Action.String()+" is not a search", nil)
	}

	records, err := input.ReadShard(r.opts.fsys, job.InputPath, job.Modality)
	if err != nil {
		return tally, err
	}

	listPath := ListPath(job.OutputDir, job.Stem, job.Action, job.Shard)
	out, err := fs.CreateOutput(r.opts.fsys, listPath)
	if err != nil {
		return tally, failure.Wrap(failure.ErrIO, "search", "create candidate list", listPath, err)
	}
	run := &shardRun{
		Runner: r,
		job:    job,
		out:    out,
		logger: r.opts.logger.With("shard", job.Shard, "action", job.Action.String()),
	}
	if err := out.WriteLine(candidate.Header); err != nil {
		_ = out.Discard()
		return tally, failure.Wrap(failure.ErrIO, "search", "write candidate list", listPath, err)
	}

	var multi engine.MultiTemplateCreator
	if job.Multi() {
		var ok bool
		if multi, ok = engine.AsMultiTemplateCreator(r.engine); !ok {
			_ = out.Discard()
			r.consumeInput(job.InputPath, run.logger)
			return tally, failure.Wrap(failure.ErrNotImplemented, "search", "create search templates", "engine has no multi-template capability", nil)
		}
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			_ = out.Discard()
			return tally, err
		}
		var code model.ReturnCode
		if multi != nil {
			code, err = run.searchMulti(ctx, multi, rec)
		} else {
			code, err = run.searchSingle(ctx, rec)
		}
		if err != nil {
			_ = out.Discard()
			if failure.Status(err) == model.StatusNotImplemented {
				r.consumeInput(job.InputPath, run.logger)
				run.logger.Info("engine does not implement search template creation", "search_id", rec.ID, "ordinal", i)
			}
			return tally, err
		}
		tally.Observe(i, code)
	}

	if err := out.Commit(); err != nil {
		_ = out.Discard()
		return tally, failure.Wrap(failure.ErrIO, "search", "close candidate list", listPath, err)
	}
	r.consumeInput(job.InputPath, run.logger)
	run.logger.Info("shard searched", "records", len(records), "failed", tally.FailedCount(), "k", job.k())
	return tally, nil
}

func (s *shardRun) searchSingle(ctx context.Context, rec model.Record) (model.ReturnCode, error) {
	media, err := input.LoadMedia(s.opts.fsys, s.job.Modality, rec)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	tmpl, _, status := s.engine.CreateTemplate(ctx, media, model.RoleSearch1N)
	s.recordTemplate(time.Since(start), status.Code)
	if status.IsNotImplemented() {
		return status.Code, failure.Wrap(failure.ErrNotImplemented, "search", "create template", rec.ID, nil)
	}
	return s.searchAndWrite(ctx, rec.ID, tmpl, status)
}

func (s *shardRun) searchMulti(ctx context.Context, creator engine.MultiTemplateCreator, rec model.Record) (model.ReturnCode, error) {
	if len(rec.Media) != 1 {
		return 0, failure.Wrap(failure.ErrConfiguration, "search", "", "search record "+rec.ID+" has "+strconv.Itoa(len(rec.Media))+" media entries, want 1", nil)
	}
	media, err := input.LoadMedia(s.opts.fsys, s.job.Modality, rec)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	tmpls, _, status := creator.CreateSearchTemplates(ctx, media[0], model.RoleSearch1N)
	s.recordTemplate(time.Since(start), status.Code)
	if status.IsNotImplemented() {
		return status.Code, failure.Wrap(failure.ErrNotImplemented, "search", "create search templates", rec.ID, nil)
	}
	if !status.IsSuccess() {
		return s.searchAndWrite(ctx, rec.ID+"_0", nil, status)
	}

	code := model.Success
	for j, tmpl := range tmpls {
		c, err := s.searchAndWrite(ctx, rec.ID+"_"+strconv.Itoa(j), tmpl, status)
		if err != nil {
			return c, err
		}
		if code == model.Success {
			code = c
		}
	}
	return code, nil
}

// searchAndWrite writes the candidate list of one search template. A failed
// creation or search produces a null-filled list carrying that code.
func (s *shardRun) searchAndWrite(ctx context.Context, searchID string, tmpl model.Template, created model.ReturnStatus) (model.ReturnCode, error) {
	k := s.job.k()
	if !created.IsSuccess() {
		return created.Code, s.write(searchID, created.Code, model.NullCandidateList(k))
	}

	start := time.Now()
	list, status := s.engine.Search(ctx, tmpl, k)
	if s.opts.metrics != nil {
		s.opts.metrics.RecordSearch(k, time.Since(start), status.Code)
	}
	if !status.IsSuccess() {
		return status.Code, s.write(searchID, status.Code, model.NullCandidateList(k))
	}
	if err := candidate.Validate(searchID, list, k); err != nil {
		s.logger.Error("invalid candidate list", "search_id", searchID, "error", err, "list", candidate.Dump(searchID, list))
		return status.Code, err
	}
	return status.Code, s.write(searchID, status.Code, list)
}

func (s *shardRun) write(searchID string, code model.ReturnCode, list model.CandidateList) error {
	if err := candidate.Write(s.out, searchID, code, list); err != nil {
		return failure.Wrap(failure.ErrIO, "search", "write candidate list", s.out.Path(), err)
	}
	return nil
}

func (s *shardRun) recordTemplate(d time.Duration, code model.ReturnCode) {
	if s.opts.metrics != nil {
		s.opts.metrics.RecordTemplate(model.RoleSearch1N, d, code)
	}
}

func (r *Runner) consumeInput(path string, logger *slog.Logger) {
	if err := fs.RemoveIfExists(r.opts.fsys, path); err != nil {
		logger.Warn("cannot remove input shard", "path", path, "error", err)
	}
}
