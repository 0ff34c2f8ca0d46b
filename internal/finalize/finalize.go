// Package finalize freezes the enrollment gallery: it consolidates shard
// pairs, verifies the manifest against the EDB and hands both to the engine
// exactly once per gallery content.
package finalize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"github.com/hupe1980/gallerybench/engine"
	"github.com/hupe1980/gallerybench/gallery"
	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/model"
)

const (
	// MarkerName is the finalize marker written into the enrollment directory.
	MarkerName = "finalize.toml"
	// LockName is the lock file guarding an output directory.
	LockName = ".finalize.lock"

	markerVersion = 1
)

// ErrLocked is returned when another finalizer owns the output directory.
var ErrLocked = errors.New("output directory is being finalized by another process")

// Metrics receives the duration of the finalize call.
type Metrics interface {
	RecordFinalize(d time.Duration, err error)
}

type options struct {
	fsys    fs.FileSystem
	logger  *slog.Logger
	metrics Metrics
}

// Option configures a Finalizer.
type Option func(*options)

// WithFileSystem sets the filesystem for the gallery files.
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

// Job describes one finalization.
type Job struct {
	ConfigDir   string
	EnrollDir   string
	OutputDir   string
	GalleryType model.GalleryType
	// Cleanup removes consolidated shard pairs after success.
	Cleanup bool
	RunID   string
}

// Marker records a completed finalization.
type Marker struct {
	Version     int       `toml:"version"`
	RunID       string    `toml:"run_id"`
	Digest      string    `toml:"digest"`
	Entries     int       `toml:"entries"`
	EDBSize     int64     `toml:"edb_size"`
	GalleryType string    `toml:"gallery_type"`
	FinalizedAt time.Time `toml:"finalized_at"`
}

// Result describes a finalization.
type Result struct {
	Pair   gallery.Pair
	Digest string
	// Consolidated lists the shard pairs merged into the gallery.
	Consolidated []int
	// Reused is true when the gallery was already finalized with the same
	// content and the engine was not called.
	Reused bool
}

// Finalizer runs gallery finalization through a template engine.
type Finalizer struct {
	engine engine.TemplateEngine
	opts   options
}

// New returns a Finalizer driving e.
func New(e engine.TemplateEngine, optFns ...Option) *Finalizer {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}
	o.fsys = fs.Or(o.fsys)
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Finalizer{engine: e, opts: o}
}

// Run finalizes job.OutputDir into job.EnrollDir.
func (f *Finalizer) Run(ctx context.Context, job Job) (Result, error) {
	start := time.Now()
	res, err := f.run(ctx, job)
	if f.opts.metrics != nil && !res.Reused {
		f.opts.metrics.RecordFinalize(time.Since(start), err)
	}
	return res, err
}

func (f *Finalizer) run(ctx context.Context, job Job) (Result, error) {
	fsys := f.opts.fsys
	logger := f.opts.logger.With("action", model.ActionFinalize1N.String())

	if err := fsys.MkdirAll(job.OutputDir, 0o755); err != nil {
		return Result{}, failure.Wrap(failure.ErrIO, "finalize", "open output dir", job.OutputDir, err)
	}
	lock := flock.New(filepath.Join(job.OutputDir, LockName))
	ok, err := lock.TryLock()
	if err != nil {
		return Result{}, failure.Wrap(failure.ErrIO, "finalize", "lock", job.OutputDir, err)
	}
	if !ok {
		return Result{}, failure.Wrap(failure.ErrIO, "finalize", "lock", job.OutputDir, ErrLocked)
	}
	defer func() {
		_ = lock.Unlock()
		_ = fs.RemoveIfExists(fs.Default, lock.Path())
	}()

	var res Result
	res.Consolidated, err = f.ensureGallery(ctx, job.OutputDir)
	if err != nil {
		return Result{}, err
	}
	if len(res.Consolidated) > 0 {
		logger.Info("consolidated shard galleries", "shards", len(res.Consolidated))
	}

	res.Pair, err = gallery.VerifyFiles(fsys, gallery.EDBPath(job.OutputDir), gallery.ManifestPath(job.OutputDir))
	if err != nil {
		return Result{}, err
	}
	res.Digest, err = Digest(fsys, res.Pair.EDBPath, res.Pair.ManifestPath)
	if err != nil {
		return Result{}, err
	}

	markerPath := filepath.Join(job.EnrollDir, MarkerName)
	prev, found, err := ReadMarker(fsys, markerPath)
	if err != nil {
		return Result{}, err
	}
	if found {
		if prev.Digest != res.Digest {
			return Result{}, failure.Wrap(failure.ErrGalleryMismatch, "finalize", "check marker",
				job.EnrollDir+" was finalized from a different gallery (run "+prev.RunID+")", nil)
		}
		logger.Info("gallery already finalized", "run_id", prev.RunID, "digest", res.Digest)
		res.Reused = true
		return res, f.cleanup(job, res.Consolidated)
	}

	status := f.engine.FinalizeEnrollment(ctx, job.ConfigDir, job.EnrollDir, res.Pair.EDBPath, res.Pair.ManifestPath, job.GalleryType)
	switch {
	case status.IsNotImplemented():
		return Result{}, failure.Wrap(failure.ErrNotImplemented, "finalize", "finalize enrollment", status.String(), nil)
	case !status.IsSuccess():
		return Result{}, failure.Wrap(failure.ErrConfiguration, "finalize", "finalize enrollment", "engine returned "+status.String(), nil)
	}

	marker := Marker{
		Version:     markerVersion,
		RunID:       job.RunID,
		Digest:      res.Digest,
		Entries:     len(res.Pair.Entries),
		EDBSize:     res.Pair.EDBSize,
		GalleryType: job.GalleryType.String(),
		FinalizedAt: time.Now().UTC(),
	}
	if err := WriteMarker(fsys, markerPath, marker); err != nil {
		return Result{}, err
	}
	logger.Info("gallery finalized",
		"entries", marker.Entries,
		"edb_bytes", marker.EDBSize,
		"digest", marker.Digest,
	)
	return res, f.cleanup(job, res.Consolidated)
}

// ensureGallery consolidates the shard pairs in dir into edb and manifest,
// replacing an earlier consolidation. Without shard pairs the existing
// consolidated gallery is used as is and checked by VerifyFiles.
func (f *Finalizer) ensureGallery(ctx context.Context, dir string) ([]int, error) {
	shards, err := gallery.ShardPairs(f.opts.fsys, dir)
	if err != nil || len(shards) == 0 {
		return nil, err
	}
	if _, err := gallery.Consolidate(ctx, f.opts.fsys, dir, shards); err != nil {
		return nil, err
	}
	return shards, nil
}

func (f *Finalizer) cleanup(job Job, shards []int) error {
	if !job.Cleanup || len(shards) == 0 {
		return nil
	}
	return gallery.RemoveShards(f.opts.fsys, job.OutputDir, shards)
}

// Digest returns the hex SHA-256 of the EDB followed by the manifest.
func Digest(fsys fs.FileSystem, edbPath, manifestPath string) (string, error) {
	h := sha256.New()
	for _, p := range []string{edbPath, manifestPath} {
		file, err := fs.Open(fs.Or(fsys), p)
		if err != nil {
			return "", failure.Wrap(failure.ErrIO, "finalize", "digest", p, err)
		}
		_, err = io.Copy(h, file)
		_ = file.Close()
		if err != nil {
			return "", failure.Wrap(failure.ErrIO, "finalize", "digest", p, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ReadMarker loads the marker at path. found is false when none exists.
func ReadMarker(fsys fs.FileSystem, path string) (m Marker, found bool, err error) {
	fsys = fs.Or(fsys)
	exists, err := fs.Exists(fsys, path)
	if err != nil || !exists {
		return Marker{}, false, err
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Marker{}, false, failure.Wrap(failure.ErrIO, "finalize", "read marker", path, err)
	}
	if err := toml.Unmarshal(data, &m); err != nil {
		return Marker{}, false, failure.Wrap(failure.ErrGalleryMismatch, "finalize", "parse marker", path, err)
	}
	return m, true, nil
}

// WriteMarker stores m at path, creating the parent directory.
func WriteMarker(fsys fs.FileSystem, path string, m Marker) error {
	fsys = fs.Or(fsys)
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return failure.Wrap(failure.ErrIO, "finalize", "write marker", path, err)
	}
	data, err := toml.Marshal(m)
	if err != nil {
		return failure.Wrap(failure.ErrIO, "finalize", "encode marker", path, err)
	}
	if err := fs.WriteFile(fsys, path, data); err != nil {
		return failure.Wrap(failure.ErrIO, "finalize", "write marker", path, err)
	}
	return nil
}
