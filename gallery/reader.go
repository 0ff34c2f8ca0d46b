package gallery

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hupe1980/gallerybench/blobstore"
	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/model"
)

// Gallery is a read-only view of a finalized EDB and its manifest.
type Gallery struct {
	edb     blobstore.Blob
	data    []byte // non-nil when the EDB blob is Mappable
	entries []model.IndexEntry
}

// Open loads the manifest named manifestName and opens edbName from store.
// The manifest is verified against the EDB size.
func Open(ctx context.Context, store blobstore.BlobStore, edbName, manifestName string) (*Gallery, error) {
	mb, err := store.Open(ctx, manifestName)
	if err != nil {
		return nil, failure.Wrap(failure.ErrIO, "gallery", "open", manifestName, err)
	}
	raw, err := blobstore.ReadAll(ctx, mb)
	_ = mb.Close()
	if err != nil {
		return nil, failure.Wrap(failure.ErrIO, "gallery", "read", manifestName, err)
	}
	entries, err := ParseManifest(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	edb, err := store.Open(ctx, edbName)
	if err != nil {
		return nil, failure.Wrap(failure.ErrIO, "gallery", "open", edbName, err)
	}
	if err := Verify(entries, edb.Size()); err != nil {
		_ = edb.Close()
		return nil, err
	}

	g := &Gallery{edb: edb, entries: entries}
	if m, ok := edb.(blobstore.Mappable); ok {
		if g.data, err = m.Bytes(); err != nil {
			_ = edb.Close()
			return nil, failure.Wrap(failure.ErrIO, "gallery", "map", edbName, err)
		}
	}
	return g, nil
}

// Len returns the number of templates.
func (g *Gallery) Len() int { return len(g.entries) }

// Entries returns the manifest entries in enrollment order.
func (g *Gallery) Entries() []model.IndexEntry { return g.entries }

// Template returns an owned copy of template i.
func (g *Gallery) Template(ctx context.Context, i int) (model.Template, error) {
	if i < 0 || i >= len(g.entries) {
		return nil, fmt.Errorf("template index %d out of range [0, %d)", i, len(g.entries))
	}
	e := g.entries[i]
	if e.Length == 0 {
		return model.Template{}, nil
	}
	if g.data != nil {
		return model.Template(g.data[e.Offset:e.End()]).Clone(), nil
	}
	buf := make(model.Template, e.Length)
	if _, err := g.edb.ReadAt(ctx, buf, e.Offset); err != nil {
		return nil, failure.Wrap(failure.ErrIO, "gallery", "read template", e.ID, err)
	}
	return buf, nil
}

// Close releases the EDB.
func (g *Gallery) Close() error {
	return g.edb.Close()
}
