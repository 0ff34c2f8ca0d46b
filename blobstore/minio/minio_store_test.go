package minio

import (
	"context"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gallerybench/blobstore"
)

var _ blobstore.BlobStore = (*Store)(nil)

func TestStore_KeyMapping(t *testing.T) {
	for _, prefix := range []string{"run-42", "run-42/", "/run-42/"} {
		s := NewStore(nil, "galleries", prefix)
		assert.Equal(t, "run-42/edb.zst", s.objectKey("edb.zst"), prefix)

		name, ok := s.blobName("run-42/edb.zst")
		require.True(t, ok, prefix)
		assert.Equal(t, "edb.zst", name)

		_, ok = s.blobName("run-420/edb.zst")
		assert.False(t, ok, prefix)
		_, ok = s.blobName("run-42/")
		assert.False(t, ok, prefix)
	}

	s := NewStore(nil, "galleries", "")
	assert.Equal(t, "archive.toml", s.objectKey("archive.toml"))
	name, ok := s.blobName("archive.toml")
	require.True(t, ok)
	assert.Equal(t, "archive.toml", name)
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"archive.toml": "application/toml",
		"edb.zst":      "application/zstd",
		"manifest.lz4": "application/x-lz4",
		"edb":          "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, contentType(name), name)
	}
}

func TestDial_Validation(t *testing.T) {
	_, err := Dial(Config{}, "b", "")
	require.ErrorContains(t, err, "empty endpoint")

	_, err = Dial(Config{Endpoint: "localhost:9000"}, "", "")
	require.ErrorContains(t, err, "empty bucket")

	_, err = Dial(Config{Endpoint: "localhost:9000/nested/path"}, "b", "")
	require.ErrorContains(t, err, "minio: dial")

	s, err := Dial(Config{Endpoint: "localhost:9000"}, "b", "/runs/7/")
	require.NoError(t, err)
	assert.Equal(t, "runs/7", s.prefix)
}

// TestMinioStore_Integration requires a running MinIO instance.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("Skipping MinIO integration test: MINIO_ENDPOINT not set")
	}
	bucket := "gallerybench-test"

	store, err := Dial(Config{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}, bucket, "test-prefix")
	require.NoError(t, err)

	ctx := context.Background()
	exists, err := store.client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "archive.toml", data))

	blob, err := store.Open(ctx, "archive.toml")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())
	got, err := blobstore.ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	part := make([]byte, 5)
	n, err := blob.ReadAt(ctx, part, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(part[:n]))

	require.NoError(t, blob.Close())

	wb, err := store.Create(ctx, "manifest.zst")
	require.NoError(t, err)
	_, err = wb.Write([]byte("a 1 0\n"))
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "archive.toml")
	assert.Contains(t, names, "manifest.zst")

	require.NoError(t, store.Delete(ctx, "archive.toml"))
	require.NoError(t, store.Delete(ctx, "manifest.zst"))
	_, err = store.Open(ctx, "archive.toml")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
