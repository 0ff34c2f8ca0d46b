package input

import (
	"bufio"
	"context"
	"path/filepath"
	"strconv"

	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/model"
)

// ShardFileStem prefixes shard input files in the output directory.
const ShardFileStem = "input.txt"

// ShardPath returns the input file of shard i.
func ShardPath(outputDir string, shard int) string {
	return filepath.Join(outputDir, ShardFileStem+"."+strconv.Itoa(shard))
}

// Shard is one materialized slice of the input.
type Shard struct {
	Index int
	Path  string
	// First is the 0-based position of the shard's first record in the input.
	First   int
	Records int
}

// Partition returns the shard sizes for total records over workers.
// It yields min(workers, total) sizes that differ by at most one, larger
// shards first. workers < 1 is treated as 1.
func Partition(total, workers int) []int {
	if total <= 0 {
		return nil
	}
	n := max(workers, 1)
	n = min(n, total)
	sizes := make([]int, n)
	base, extra := total/n, total%n
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return sizes
}

// Sharder splits an input file into shard files.
type Sharder struct {
	FS       fs.FileSystem
	Modality model.Modality
}

// Split parses every line of inputPath and then writes the shards into
// outputDir. Parse failures and an unreadable input are configuration errors;
// no shard file is written in that case.
func (s Sharder) Split(ctx context.Context, inputPath, outputDir string, workers int) ([]Shard, error) {
	fsys := fs.Or(s.FS)

	f, err := fs.Open(fsys, inputPath)
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "shard", "open input", inputPath, err)
	}
	lines, err := NewReader(f, s.Modality).ReadAll()
	_ = f.Close()
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "shard", "parse input", inputPath, err)
	}

	if err := fsys.MkdirAll(outputDir, 0o755); err != nil {
		return nil, failure.Wrap(failure.ErrIO, "shard", "create output dir", outputDir, err)
	}

	var shards []Shard
	first := 0
	for i, size := range Partition(len(lines), workers) {
		if err := ctx.Err(); err != nil {
			removeShards(fsys, shards)
			return nil, err
		}
		sh := Shard{Index: i, Path: ShardPath(outputDir, i), First: first, Records: size}
		if err := writeShard(fsys, sh.Path, lines[first:first+size]); err != nil {
			removeShards(fsys, shards)
			_ = fs.RemoveIfExists(fsys, sh.Path)
			return nil, failure.Wrap(failure.ErrIO, "shard", "write", sh.Path, err)
		}
		shards = append(shards, sh)
		first += size
	}
	return shards, nil
}

func writeShard(fsys fs.FileSystem, path string, lines []Line) error {
	f, err := fs.Create(fsys, path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := w.WriteString(l.Text + "\n"); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func removeShards(fsys fs.FileSystem, shards []Shard) {
	for _, sh := range shards {
		_ = fs.RemoveIfExists(fsys, sh.Path)
	}
}

// ReadShard parses a shard file written by Split.
func ReadShard(fsys fs.FileSystem, path string, m model.Modality) ([]model.Record, error) {
	f, err := fs.Open(fs.Or(fsys), path)
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "shard", "open", path, err)
	}
	defer f.Close()
	lines, err := NewReader(f, m).ReadAll()
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "shard", "parse", path, err)
	}
	records := make([]model.Record, len(lines))
	for i, l := range lines {
		records[i] = l.Record
	}
	return records, nil
}
