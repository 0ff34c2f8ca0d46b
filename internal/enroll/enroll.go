// Package enroll runs the enrollment stage of one shard: it creates one
// template per record, appends it to the shard's EDB and manifest and logs
// per-image geometry.
package enroll

import (
	"context"
	"log/slog"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/gallerybench/engine"
	"github.com/hupe1980/gallerybench/gallery"
	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/internal/input"
	"github.com/hupe1980/gallerybench/internal/report"
	"github.com/hupe1980/gallerybench/internal/resource"
	"github.com/hupe1980/gallerybench/model"
)

// Metrics receives the timing of every template creation.
type Metrics interface {
	RecordTemplate(role model.TemplateRole, d time.Duration, code model.ReturnCode)
}

type options struct {
	fsys    fs.FileSystem
	rc      *resource.Controller
	logger  *slog.Logger
	metrics Metrics
}

// Option configures a Writer.
type Option func(*options)

// WithFileSystem sets the filesystem for inputs and outputs.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) { o.fsys = fsys }
}

// WithResourceController throttles EDB writes.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Job describes one enrollment shard.
type Job struct {
	Shard     int
	InputPath string
	OutputDir string
	Stem      string
	Modality  model.Modality
}

// LogPath returns the enrollment log of shard i.
func LogPath(outputDir, stem string, shard int) string {
	return filepath.Join(outputDir, stem+"."+model.ActionEnroll1N.String()+"."+strconv.Itoa(shard))
}

// Writer enrolls shards through a template engine.
type Writer struct {
	engine engine.TemplateEngine
	opts   options
}

// New returns a Writer driving e.
func New(e engine.TemplateEngine, optFns ...Option) *Writer {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}
	o.fsys = fs.Or(o.fsys)
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{engine: e, opts: o}
}

// Run enrolls every record of job.InputPath.
//
// On success the shard's log, EDB and manifest are complete and the input
// shard file is removed. When the engine returns NotImplemented the outputs
// are removed, the input shard file is consumed and the returned error
// matches failure.ErrNotImplemented. Any other error is fatal; partial
// outputs are removed and the input shard file is kept.
func (w *Writer) Run(ctx context.Context, job Job) (*report.Tally, error) {
	fsys := w.opts.fsys
	logger := w.opts.logger.With("shard", job.Shard, "action", model.ActionEnroll1N.String())
	tally := report.NewTally()

	records, err := input.ReadShard(fsys, job.InputPath, job.Modality)
	if err != nil {
		return tally, err
	}

	logPath := LogPath(job.OutputDir, job.Stem, job.Shard)
	out, err := fs.CreateOutput(fsys, logPath)
	if err != nil {
		return tally, failure.Wrap(failure.ErrIO, "enroll", "create log", logPath, err)
	}
	gw, err := gallery.Create(ctx,
		gallery.ShardEDBPath(job.OutputDir, job.Shard),
		gallery.ShardManifestPath(job.OutputDir, job.Shard),
		gallery.WithFileSystem(fsys),
		gallery.WithResourceController(w.opts.rc),
	)
	if err != nil {
		_ = out.Discard()
		return tally, err
	}
	discard := func() {
		_ = gw.Abort()
		_ = out.Discard()
	}

	if err := out.WriteLine(job.Modality.EnrollLogHeader()); err != nil {
		discard()
		return tally, failure.Wrap(failure.ErrIO, "enroll", "write log", logPath, err)
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			discard()
			return tally, err
		}
		status, err := w.enrollRecord(ctx, job, rec, gw, out)
		if err != nil {
			discard()
			return tally, err
		}
		if status.IsNotImplemented() {
			discard()
			w.consumeInput(job.InputPath, logger)
			logger.Info("engine does not implement enrollment", "record", rec.ID, "ordinal", i)
			return tally, failure.Wrap(failure.ErrNotImplemented, "enroll", "create template", rec.ID, nil)
		}
		tally.Observe(i, status.Code)
		if !status.IsSuccess() {
			logger.Debug("template creation failed", "record", rec.ID, "code", int(status.Code), "info", status.Info)
		}
	}

	if err := out.Commit(); err != nil {
		discard()
		return tally, failure.Wrap(failure.ErrIO, "enroll", "close log", logPath, err)
	}
	if err := gw.Close(); err != nil {
		discard()
		return tally, err
	}
	w.consumeInput(job.InputPath, logger)

	logger.Info("shard enrolled",
		"records", len(records),
		"failed", tally.FailedCount(),
		"edb_bytes", gw.Offset(),
	)
	return tally, nil
}

func (w *Writer) enrollRecord(ctx context.Context, job Job, rec model.Record, gw *gallery.Writer, out *fs.Output) (model.ReturnStatus, error) {
	media, err := input.LoadMedia(w.opts.fsys, job.Modality, rec)
	if err != nil {
		return model.ReturnStatus{}, err
	}

	start := time.Now()
	tmpl, geometry, status := w.engine.CreateTemplate(ctx, media, model.RoleEnrollment1N)
	if w.opts.metrics != nil {
		w.opts.metrics.RecordTemplate(model.RoleEnrollment1N, time.Since(start), status.Code)
	}
	if status.IsNotImplemented() {
		return status, nil
	}

	if _, err := gw.Append(rec.ID, tmpl.Clone()); err != nil {
		return status, err
	}

	geometry = normalizeGeometry(job.Modality, geometry, rec.ImageCount(), status)
	for i, ref := range rec.Refs() {
		if err := out.WriteLine(logLine(rec.ID, ref.Path, len(tmpl), status.Code, geometry[i])); err != nil {
			return status, failure.Wrap(failure.ErrIO, "enroll", "write log", out.Path(), err)
		}
	}
	return status, nil
}

func (w *Writer) consumeInput(path string, logger *slog.Logger) {
	if err := fs.RemoveIfExists(w.opts.fsys, path); err != nil {
		logger.Warn("cannot remove input shard", "path", path, "error", err)
	}
}

// normalizeGeometry returns exactly n geometries. When the call failed, the
// count differs from n or any entry has the wrong kind for the modality,
// every entry is the unassigned placeholder.
func normalizeGeometry(m model.Modality, geometry []model.Geometry, n int, status model.ReturnStatus) []model.Geometry {
	placeholder := m.Placeholder()
	ok := status.IsSuccess() && len(geometry) == n
	for i := 0; ok && i < n; i++ {
		ok = geometry[i] != nil && reflect.TypeOf(geometry[i]) == reflect.TypeOf(placeholder)
	}
	if ok {
		return geometry
	}
	out := make([]model.Geometry, n)
	for i := range out {
		out[i] = placeholder
	}
	return out
}

func logLine(id, path string, size int, code model.ReturnCode, g model.Geometry) string {
	fields := append([]string{id, path, strconv.Itoa(size), strconv.Itoa(int(code))}, g.Fields()...)
	return strings.Join(fields, " ")
}
