package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	name := "gallery/edb"
	data := []byte("templateAtemplateBtemplateC")

	w, err := store.Create(ctx, name)
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Not visible before Close.
	_, err = os.Stat(filepath.Join(tmpDir, "gallery", "edb"))
	require.True(t, os.IsNotExist(err))
	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 9)
	n, err = blob.ReadAt(ctx, buf, 9)
	require.NoError(t, err)
	require.Equal(t, 9, n)
	assert.Equal(t, "templateB", string(buf))

	rc, err := blob.ReadRange(ctx, 18, 100)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "templateC", string(got))

	all, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, data, all)
}

func TestLocalStore_PutListDelete(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "run/edb.zst", []byte("a")))
	require.NoError(t, store.Put(ctx, "run/manifest.zst", []byte("b")))
	require.NoError(t, store.Put(ctx, "other", []byte("c")))

	names, err := store.List(ctx, "run/")
	require.NoError(t, err)
	assert.Equal(t, []string{"run/edb.zst", "run/manifest.zst"}, names)

	require.NoError(t, store.Delete(ctx, "run/edb.zst"))
	require.NoError(t, store.Delete(ctx, "run/edb.zst"))

	_, err = store.Open(ctx, "run/edb.zst")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w, err := store.Create(ctx, "edb")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "edb")
	require.NoError(t, err)
	assert.Equal(t, int64(5), blob.Size())

	all, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(all))

	buf := make([]byte, 10)
	n, err := blob.ReadAt(ctx, buf, 2)
	assert.Equal(t, 3, n)
	assert.Equal(t, io.EOF, err)

	_, err = store.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "edb"))
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
