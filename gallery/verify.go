package gallery

import (
	"slices"

	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/model"
)

// Verify checks that every entry lies inside an EDB of edbSize bytes and that
// no two non-empty entries overlap.
func Verify(entries []model.IndexEntry, edbSize int64) error {
	type ranged struct {
		model.IndexEntry
		line int
	}
	nonEmpty := make([]ranged, 0, len(entries))
	for i, e := range entries {
		if e.Offset < 0 || e.Length < 0 || e.End() > edbSize {
			return &failure.RangeError{Entry: e, Line: i + 1, EDBSize: edbSize}
		}
		if e.Length > 0 {
			nonEmpty = append(nonEmpty, ranged{IndexEntry: e, line: i + 1})
		}
	}

	slices.SortFunc(nonEmpty, func(a, b ranged) int {
		if a.Offset != b.Offset {
			if a.Offset < b.Offset {
				return -1
			}
			return 1
		}
		return a.line - b.line
	})
	for i := 1; i < len(nonEmpty); i++ {
		prev, cur := nonEmpty[i-1], nonEmpty[i]
		if cur.Offset < prev.End() {
			return &failure.OverlapError{First: prev.IndexEntry, Second: cur.IndexEntry}
		}
	}
	return nil
}

// Pair is a verified EDB/manifest pair.
type Pair struct {
	EDBPath      string
	ManifestPath string
	EDBSize      int64
	Entries      []model.IndexEntry
}

// VerifyFiles loads the manifest, stats the EDB and runs Verify.
// Missing files are reported with ErrGalleryMismatch.
func VerifyFiles(fsys fs.FileSystem, edbPath, manifestPath string) (Pair, error) {
	fsys = fs.Or(fsys)
	for _, p := range []string{edbPath, manifestPath} {
		ok, err := fs.Exists(fsys, p)
		if err != nil {
			return Pair{}, failure.Wrap(failure.ErrIO, "gallery", "stat", p, err)
		}
		if !ok {
			return Pair{}, failure.Wrap(failure.ErrGalleryMismatch, "gallery", "stat", p+" does not exist", nil)
		}
	}

	info, err := fsys.Stat(edbPath)
	if err != nil {
		return Pair{}, failure.Wrap(failure.ErrIO, "gallery", "stat", edbPath, err)
	}
	entries, err := ReadManifest(fsys, manifestPath)
	if err != nil {
		return Pair{}, err
	}
	if err := Verify(entries, info.Size()); err != nil {
		return Pair{}, err
	}
	return Pair{
		EDBPath:      edbPath,
		ManifestPath: manifestPath,
		EDBSize:      info.Size(),
		Entries:      entries,
	}, nil
}
