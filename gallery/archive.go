package gallery

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/gallerybench/blobstore"
	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/fs"
)

// Codec selects the compression of exported gallery files.
type Codec string

const (
	CodecNone Codec = "none"
	CodecZstd Codec = "zstd"
	CodecLZ4  Codec = "lz4"
)

// ParseCodec parses a codec name. The empty string selects zstd.
func ParseCodec(s string) (Codec, error) {
	switch Codec(s) {
	case "", CodecZstd:
		return CodecZstd, nil
	case CodecLZ4:
		return CodecLZ4, nil
	case CodecNone:
		return CodecNone, nil
	default:
		return "", fmt.Errorf("unknown codec %q", s)
	}
}

// Ext returns the blob name suffix for the codec.
func (c Codec) Ext() string {
	switch c {
	case CodecZstd:
		return ".zst"
	case CodecLZ4:
		return ".lz4"
	default:
		return ""
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (c Codec) newWriter(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CodecZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	case CodecNone:
		return nopWriteCloser{w}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", c)
	}
}

func (c Codec) newReader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CodecZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CodecNone:
		return io.NopCloser(r), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", c)
	}
}

// ArchiveIndexName is the blob describing an exported gallery.
const ArchiveIndexName = "archive.toml"

// ArchiveIndex describes an exported gallery.
type ArchiveIndex struct {
	Version int           `toml:"version"`
	RunID   string        `toml:"run_id"`
	Codec   Codec         `toml:"codec"`
	Entries int           `toml:"entries"`
	Files   []ArchiveFile `toml:"files"`
}

// ArchiveFile is one exported file. Size and SHA256 describe the uncompressed bytes.
type ArchiveFile struct {
	Name   string `toml:"name"`
	Blob   string `toml:"blob"`
	Size   int64  `toml:"size"`
	SHA256 string `toml:"sha256"`
}

// Export compresses the consolidated gallery in dir and uploads it to store,
// followed by an ArchiveIndex blob.
func Export(ctx context.Context, fsys fs.FileSystem, dir string, store blobstore.BlobStore, codec Codec, runID string) (ArchiveIndex, error) {
	fsys = fs.Or(fsys)
	pair, err := VerifyFiles(fsys, EDBPath(dir), ManifestPath(dir))
	if err != nil {
		return ArchiveIndex{}, err
	}

	idx := ArchiveIndex{Version: 1, RunID: runID, Codec: codec, Entries: len(pair.Entries)}
	for _, f := range []struct{ name, path string }{
		{EDBName, pair.EDBPath},
		{ManifestName, pair.ManifestPath},
	} {
		af, err := exportFile(ctx, fsys, f.path, f.name, store, codec)
		if err != nil {
			return ArchiveIndex{}, failure.Wrap(failure.ErrIO, "export", f.name, "", err)
		}
		idx.Files = append(idx.Files, af)
	}

	raw, err := toml.Marshal(idx)
	if err != nil {
		return ArchiveIndex{}, failure.Wrap(failure.ErrIO, "export", "encode index", "", err)
	}
	if err := store.Put(ctx, ArchiveIndexName, raw); err != nil {
		return ArchiveIndex{}, failure.Wrap(failure.ErrIO, "export", "put index", "", err)
	}
	return idx, nil
}

func exportFile(ctx context.Context, fsys fs.FileSystem, path, name string, store blobstore.BlobStore, codec Codec) (ArchiveFile, error) {
	src, err := fs.Open(fsys, path)
	if err != nil {
		return ArchiveFile{}, err
	}
	defer src.Close()

	af := ArchiveFile{Name: name, Blob: name + codec.Ext()}
	dst, err := store.Create(ctx, af.Blob)
	if err != nil {
		return ArchiveFile{}, err
	}
	cw, err := codec.newWriter(dst)
	if err != nil {
		_ = dst.Close()
		return ArchiveFile{}, err
	}

	h := sha256.New()
	n, err := io.Copy(cw, io.TeeReader(src, h))
	if err != nil {
		_ = cw.Close()
		_ = dst.Close()
		return ArchiveFile{}, err
	}
	if err := cw.Close(); err != nil {
		_ = dst.Close()
		return ArchiveFile{}, err
	}
	if err := dst.Close(); err != nil {
		return ArchiveFile{}, err
	}
	af.Size = n
	af.SHA256 = hexSum(h)
	return af, nil
}

// ReadArchiveIndex loads the ArchiveIndex from store.
func ReadArchiveIndex(ctx context.Context, store blobstore.BlobStore) (ArchiveIndex, error) {
	b, err := store.Open(ctx, ArchiveIndexName)
	if err != nil {
		return ArchiveIndex{}, failure.Wrap(failure.ErrIO, "import", "open index", "", err)
	}
	defer b.Close()
	raw, err := blobstore.ReadAll(ctx, b)
	if err != nil {
		return ArchiveIndex{}, failure.Wrap(failure.ErrIO, "import", "read index", "", err)
	}
	var idx ArchiveIndex
	if err := toml.NewDecoder(bytes.NewReader(raw)).Decode(&idx); err != nil {
		return ArchiveIndex{}, failure.Wrap(failure.ErrGalleryMismatch, "import", "decode index", "", err)
	}
	return idx, nil
}

// Import downloads an exported gallery into dir and checks sizes, digests
// and manifest ranges.
func Import(ctx context.Context, store blobstore.BlobStore, fsys fs.FileSystem, dir string) (ArchiveIndex, error) {
	fsys = fs.Or(fsys)
	idx, err := ReadArchiveIndex(ctx, store)
	if err != nil {
		return ArchiveIndex{}, err
	}
	for _, af := range idx.Files {
		if af.Name != EDBName && af.Name != ManifestName {
			return ArchiveIndex{}, failure.Wrap(failure.ErrGalleryMismatch, "import", af.Name, "unexpected file", nil)
		}
		if err := importFile(ctx, store, fsys, dir, idx.Codec, af); err != nil {
			return ArchiveIndex{}, err
		}
	}
	if _, err := VerifyFiles(fsys, EDBPath(dir), ManifestPath(dir)); err != nil {
		return ArchiveIndex{}, err
	}
	return idx, nil
}

func importFile(ctx context.Context, store blobstore.BlobStore, fsys fs.FileSystem, dir string, codec Codec, af ArchiveFile) error {
	b, err := store.Open(ctx, af.Blob)
	if err != nil {
		return failure.Wrap(failure.ErrIO, "import", af.Blob, "", err)
	}
	defer b.Close()
	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return failure.Wrap(failure.ErrIO, "import", af.Blob, "", err)
	}
	defer rc.Close()
	dec, err := codec.newReader(rc)
	if err != nil {
		return failure.Wrap(failure.ErrIO, "import", af.Blob, "", err)
	}
	defer dec.Close()

	path := filepath.Join(dir, af.Name)
	out, err := fs.Create(fsys, path)
	if err != nil {
		return failure.Wrap(failure.ErrIO, "import", path, "", err)
	}
	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, h), dec)
	if err != nil {
		_ = out.Close()
		return failure.Wrap(failure.ErrIO, "import", path, "", err)
	}
	if err := syncClose(out); err != nil {
		return failure.Wrap(failure.ErrIO, "import", path, "", err)
	}
	if n != af.Size || hexSum(h) != af.SHA256 {
		return failure.Wrap(failure.ErrGalleryMismatch, "import", af.Name,
			fmt.Sprintf("got %d bytes sha256 %s, want %d bytes sha256 %s", n, hexSum(h), af.Size, af.SHA256), nil)
	}
	return nil
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
