package gallery

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/model"
)

// WriteEntry writes one manifest line.
func WriteEntry(w io.Writer, e model.IndexEntry) error {
	_, err := io.WriteString(w, e.String()+"\n")
	return err
}

// ParseManifest reads manifest lines. Blank lines are skipped.
func ParseManifest(r io.Reader) ([]model.IndexEntry, error) {
	var entries []model.IndexEntry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		e, err := parseEntry(text)
		if err != nil {
			return nil, failure.Wrap(failure.ErrGalleryMismatch, "manifest", "parse", fmt.Sprintf("line %d", line), err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, failure.Wrap(failure.ErrIO, "manifest", "read", "", err)
	}
	return entries, nil
}

func parseEntry(text string) (model.IndexEntry, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return model.IndexEntry{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	length, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || length < 0 {
		return model.IndexEntry{}, fmt.Errorf("invalid length %q", fields[1])
	}
	offset, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || offset < 0 {
		return model.IndexEntry{}, fmt.Errorf("invalid offset %q", fields[2])
	}
	return model.IndexEntry{ID: fields[0], Length: length, Offset: offset}, nil
}

// ReadManifest parses the manifest file at path.
func ReadManifest(fsys fs.FileSystem, path string) ([]model.IndexEntry, error) {
	f, err := fs.Open(fs.Or(fsys), path)
	if err != nil {
		return nil, failure.Wrap(failure.ErrIO, "manifest", "open", path, err)
	}
	defer f.Close()
	return ParseManifest(f)
}
