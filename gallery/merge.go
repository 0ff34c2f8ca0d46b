package gallery

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/model"
)

const consolidatingSuffix = ".consolidating"

// ShardPairs returns the shard indices with an edb.<i>/manifest.<i> pair in
// dir, in ascending order. A shard with only one half of its pair is an error.
func ShardPairs(fsys fs.FileSystem, dir string) ([]int, error) {
	entries, err := fs.Or(fsys).ReadDir(dir)
	if err != nil {
		return nil, failure.Wrap(failure.ErrIO, "gallery", "scan shards", dir, err)
	}

	edbs := map[int]bool{}
	manifests := map[int]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if i, ok := shardSuffix(e.Name(), EDBName); ok {
			edbs[i] = true
		} else if i, ok := shardSuffix(e.Name(), ManifestName); ok {
			manifests[i] = true
		}
	}

	var shards []int
	for i := range edbs {
		if !manifests[i] {
			return nil, failure.Wrap(failure.ErrGalleryMismatch, "gallery", "scan shards",
				fmt.Sprintf("shard %d has %s.%d but no %s.%d", i, EDBName, i, ManifestName, i), nil)
		}
		shards = append(shards, i)
	}
	for i := range manifests {
		if !edbs[i] {
			return nil, failure.Wrap(failure.ErrGalleryMismatch, "gallery", "scan shards",
				fmt.Sprintf("shard %d has %s.%d but no %s.%d", i, ManifestName, i, EDBName, i), nil)
		}
	}
	slices.Sort(shards)
	return shards, nil
}

func shardSuffix(name, base string) (int, bool) {
	rest, ok := strings.CutPrefix(name, base+".")
	if !ok || rest == "" {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 || strconv.Itoa(i) != rest {
		return 0, false
	}
	return i, true
}

// Consolidate concatenates the given shard pairs, in order, into dir/edb and
// dir/manifest. Offsets are rebased onto the combined EDB. Each shard pair is
// verified before it is copied.
func Consolidate(ctx context.Context, fsys fs.FileSystem, dir string, shards []int) (Pair, error) {
	fsys = fs.Or(fsys)
	edbTmp := EDBPath(dir) + consolidatingSuffix
	manifestTmp := ManifestPath(dir) + consolidatingSuffix

	pair, err := consolidate(ctx, fsys, dir, shards, edbTmp, manifestTmp)
	if err != nil {
		_ = fs.RemoveIfExists(fsys, edbTmp)
		_ = fs.RemoveIfExists(fsys, manifestTmp)
		return Pair{}, err
	}

	if err := fsys.Rename(edbTmp, pair.EDBPath); err != nil {
		return Pair{}, failure.Wrap(failure.ErrIO, "gallery", "consolidate", pair.EDBPath, err)
	}
	if err := fsys.Rename(manifestTmp, pair.ManifestPath); err != nil {
		return Pair{}, failure.Wrap(failure.ErrIO, "gallery", "consolidate", pair.ManifestPath, err)
	}
	return pair, nil
}

func consolidate(ctx context.Context, fsys fs.FileSystem, dir string, shards []int, edbTmp, manifestTmp string) (Pair, error) {
	edbOut, err := fs.Create(fsys, edbTmp)
	if err != nil {
		return Pair{}, failure.Wrap(failure.ErrIO, "gallery", "consolidate", edbTmp, err)
	}
	manifestOut, err := fs.Create(fsys, manifestTmp)
	if err != nil {
		_ = edbOut.Close()
		return Pair{}, failure.Wrap(failure.ErrIO, "gallery", "consolidate", manifestTmp, err)
	}
	mw := bufio.NewWriter(manifestOut)

	pair := Pair{EDBPath: EDBPath(dir), ManifestPath: ManifestPath(dir)}
	var base int64
	for _, i := range shards {
		if err := ctx.Err(); err != nil {
			_ = edbOut.Close()
			_ = manifestOut.Close()
			return Pair{}, err
		}
		shard, err := VerifyFiles(fsys, ShardEDBPath(dir, i), ShardManifestPath(dir, i))
		if err != nil {
			_ = edbOut.Close()
			_ = manifestOut.Close()
			return Pair{}, err
		}
		if err := copyFile(fsys, edbOut, shard.EDBPath); err != nil {
			_ = edbOut.Close()
			_ = manifestOut.Close()
			return Pair{}, failure.Wrap(failure.ErrIO, "gallery", "consolidate", shard.EDBPath, err)
		}
		for _, e := range shard.Entries {
			rebased := model.IndexEntry{ID: e.ID, Length: e.Length, Offset: e.Offset + base}
			if err := WriteEntry(mw, rebased); err != nil {
				_ = edbOut.Close()
				_ = manifestOut.Close()
				return Pair{}, failure.Wrap(failure.ErrIO, "gallery", "consolidate", manifestTmp, err)
			}
			pair.Entries = append(pair.Entries, rebased)
		}
		base += shard.EDBSize
	}
	pair.EDBSize = base

	err = errors.Join(mw.Flush(), syncClose(manifestOut), syncClose(edbOut))
	if err != nil {
		return Pair{}, failure.Wrap(failure.ErrIO, "gallery", "consolidate", dir, err)
	}
	return pair, nil
}

func copyFile(fsys fs.FileSystem, dst io.Writer, src string) error {
	f, err := fs.Open(fsys, src)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(dst, f)
	return err
}

// RemoveShards deletes the given shard pairs from dir.
func RemoveShards(fsys fs.FileSystem, dir string, shards []int) error {
	fsys = fs.Or(fsys)
	var errs []error
	for _, i := range shards {
		errs = append(errs,
			fs.RemoveIfExists(fsys, ShardEDBPath(dir, i)),
			fs.RemoveIfExists(fsys, ShardManifestPath(dir, i)),
		)
	}
	if err := errors.Join(errs...); err != nil {
		return failure.Wrap(failure.ErrIO, "gallery", "cleanup", dir, err)
	}
	return nil
}

// Reset removes the consolidated gallery and every shard EDB or manifest
// from dir, paired or not. A missing dir is not an error.
func Reset(fsys fs.FileSystem, dir string) error {
	fsys = fs.Or(fsys)
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil
		}
		return failure.Wrap(failure.ErrIO, "gallery", "reset", dir, err)
	}

	var errs []error
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		_, edb := shardSuffix(name, EDBName)
		_, manifest := shardSuffix(name, ManifestName)
		if edb || manifest || name == EDBName || name == ManifestName {
			errs = append(errs, fs.RemoveIfExists(fsys, filepath.Join(dir, name)))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return failure.Wrap(failure.ErrIO, "gallery", "reset", dir, err)
	}
	return nil
}
