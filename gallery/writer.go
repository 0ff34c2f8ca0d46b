package gallery

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/gofrs/flock"

	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/internal/resource"
	"github.com/hupe1980/gallerybench/model"
)

// ErrLocked is returned when another writer owns the EDB.
var ErrLocked = errors.New("edb is locked by another writer")

type writerOptions struct {
	fsys fs.FileSystem
	rc   *resource.Controller
}

// WriterOption configures Create.
type WriterOption func(*writerOptions)

// WithFileSystem sets the filesystem used for the EDB and manifest.
func WithFileSystem(fsys fs.FileSystem) WriterOption {
	return func(o *writerOptions) { o.fsys = fsys }
}

// WithResourceController throttles EDB writes through rc.
func WithResourceController(rc *resource.Controller) WriterOption {
	return func(o *writerOptions) { o.rc = rc }
}

// Writer appends templates to an EDB and records their index entries.
// The EDB is exclusively owned through an advisory lock until Close or Abort.
type Writer struct {
	fsys         fs.FileSystem
	edbPath      string
	manifestPath string
	lock         *flock.Flock

	edb          fs.File
	edbW         io.Writer
	manifestFile fs.File
	manifest     *bufio.Writer

	offset int64
	count  int
	done   bool
}

// Create truncates or creates the EDB and manifest at the given paths.
func Create(ctx context.Context, edbPath, manifestPath string, optFns ...WriterOption) (*Writer, error) {
	var o writerOptions
	for _, fn := range optFns {
		fn(&o)
	}
	fsys := fs.Or(o.fsys)

	lock := flock.New(edbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, failure.Wrap(failure.ErrIO, "gallery", "lock", edbPath, err)
	}
	if !ok {
		return nil, failure.Wrap(failure.ErrIO, "gallery", "lock", edbPath, ErrLocked)
	}

	w := &Writer{
		fsys:         fsys,
		edbPath:      edbPath,
		manifestPath: manifestPath,
		lock:         lock,
	}

	w.edb, err = fs.Create(fsys, edbPath)
	if err != nil {
		w.release()
		return nil, failure.Wrap(failure.ErrIO, "gallery", "create", edbPath, err)
	}
	w.manifestFile, err = fs.Create(fsys, manifestPath)
	if err != nil {
		_ = w.edb.Close()
		_ = fs.RemoveIfExists(fsys, edbPath)
		w.release()
		return nil, failure.Wrap(failure.ErrIO, "gallery", "create", manifestPath, err)
	}

	w.edbW = resource.NewRateLimitedWriter(ctx, w.edb, o.rc)
	w.manifest = bufio.NewWriter(w.manifestFile)
	return w, nil
}

// Append writes tmpl to the EDB and its entry to the manifest.
// Empty templates are recorded with length 0 at the current offset.
func (w *Writer) Append(id string, tmpl model.Template) (model.IndexEntry, error) {
	if w.done {
		return model.IndexEntry{}, failure.Wrap(failure.ErrIO, "gallery", "append", w.edbPath, os.ErrClosed)
	}
	if id == "" || strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return model.IndexEntry{}, failure.Wrap(failure.ErrConfiguration, "gallery", "append", "template id "+strconv.Quote(id)+" is empty or contains whitespace", nil)
	}

	entry := model.IndexEntry{ID: id, Length: int64(len(tmpl)), Offset: w.offset}
	if len(tmpl) > 0 {
		n, err := w.edbW.Write(tmpl)
		w.offset += int64(n)
		if err != nil {
			return model.IndexEntry{}, failure.Wrap(failure.ErrIO, "gallery", "append", w.edbPath, err)
		}
	}
	if err := WriteEntry(w.manifest, entry); err != nil {
		return model.IndexEntry{}, failure.Wrap(failure.ErrIO, "gallery", "append", w.manifestPath, err)
	}
	w.count++
	return entry, nil
}

// Offset returns the number of bytes written to the EDB.
func (w *Writer) Offset() int64 { return w.offset }

// Len returns the number of manifest entries written.
func (w *Writer) Len() int { return w.count }

// Close flushes and syncs both files and releases the lock.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	defer w.release()

	err := w.manifest.Flush()
	err = errors.Join(err, syncClose(w.manifestFile), syncClose(w.edb))
	if err != nil {
		return failure.Wrap(failure.ErrIO, "gallery", "close", w.edbPath, err)
	}
	return nil
}

// Abort closes and removes both files and releases the lock.
func (w *Writer) Abort() error {
	if !w.done {
		w.done = true
		_ = w.manifestFile.Close()
		_ = w.edb.Close()
		w.release()
	}
	err := errors.Join(
		fs.RemoveIfExists(w.fsys, w.edbPath),
		fs.RemoveIfExists(w.fsys, w.manifestPath),
	)
	if err != nil {
		return failure.Wrap(failure.ErrIO, "gallery", "abort", w.edbPath, err)
	}
	return nil
}

func (w *Writer) release() {
	_ = w.lock.Unlock()
	_ = fs.RemoveIfExists(fs.Default, w.lock.Path())
}

func syncClose(f fs.File) error {
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
