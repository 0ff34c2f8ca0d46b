package gallery

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gallerybench/blobstore"
	"github.com/hupe1980/gallerybench/internal/failure"
)

func TestParseCodec(t *testing.T) {
	for in, want := range map[string]Codec{"": CodecZstd, "zstd": CodecZstd, "lz4": CodecLZ4, "none": CodecNone} {
		got, err := ParseCodec(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCodec("gzip")
	assert.Error(t, err)
}

func TestExportImport(t *testing.T) {
	for _, codec := range []Codec{CodecZstd, CodecLZ4, CodecNone} {
		t.Run(string(codec), func(t *testing.T) {
			ctx := context.Background()
			src := t.TempDir()
			writeShard(t, src, 0, map[string]string{"a": "templateA", "b": "", "c": "templateC"}, "a", "b", "c")
			_, err := Consolidate(ctx, nil, src, []int{0})
			require.NoError(t, err)

			store := blobstore.NewMemoryStore()
			idx, err := Export(ctx, nil, src, store, codec, "run-1")
			require.NoError(t, err)
			assert.Equal(t, 3, idx.Entries)
			require.Len(t, idx.Files, 2)
			assert.Equal(t, "edb"+codec.Ext(), idx.Files[0].Blob)

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{ArchiveIndexName, "edb" + codec.Ext(), "manifest" + codec.Ext()}, names)

			dst := t.TempDir()
			got, err := Import(ctx, store, nil, dst)
			require.NoError(t, err)
			assert.Equal(t, idx, got)

			for _, name := range []string{EDBName, ManifestName} {
				want, err := os.ReadFile(src + "/" + name)
				require.NoError(t, err)
				have, err := os.ReadFile(dst + "/" + name)
				require.NoError(t, err)
				assert.Equal(t, want, have)
			}
		})
	}
}

func TestImport_DigestMismatch(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	writeShard(t, src, 0, map[string]string{"a": "templateA"}, "a")
	_, err := Consolidate(ctx, nil, src, []int{0})
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	_, err = Export(ctx, nil, src, store, CodecNone, "run-1")
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "edb", []byte("templateB")))

	_, err = Import(ctx, store, nil, t.TempDir())
	require.ErrorIs(t, err, failure.ErrGalleryMismatch)
}

func TestOpenGallery(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeShard(t, dir, 0, map[string]string{"a": "AAA", "b": "", "c": "CC"}, "a", "b", "c")
	_, err := Consolidate(ctx, nil, dir, []int{0})
	require.NoError(t, err)

	g, err := Open(ctx, blobstore.NewLocalStore(dir), EDBName, ManifestName)
	require.NoError(t, err)
	defer g.Close()

	require.Equal(t, 3, g.Len())
	for i, want := range []string{"AAA", "", "CC"} {
		tmpl, err := g.Template(ctx, i)
		require.NoError(t, err)
		assert.Equal(t, want, string(tmpl))
	}
	_, err = g.Template(ctx, 3)
	assert.Error(t, err)
}

func TestOpenGallery_Mismatch(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, EDBName, []byte("abc")))
	require.NoError(t, store.Put(ctx, ManifestName, []byte("a 4 0\n")))

	_, err := Open(ctx, store, EDBName, ManifestName)
	require.ErrorIs(t, err, failure.ErrGalleryMismatch)
}
