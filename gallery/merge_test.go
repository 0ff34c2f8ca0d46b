package gallery

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/model"
)

func writeShard(t *testing.T, dir string, shard int, records map[string]string, order ...string) {
	t.Helper()
	w, err := Create(context.Background(), ShardEDBPath(dir, shard), ShardManifestPath(dir, shard))
	require.NoError(t, err)
	for _, id := range order {
		_, err := w.Append(id, model.Template(records[id]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestShardPairs(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, 10, map[string]string{"x": "1"}, "x")
	writeShard(t, dir, 2, map[string]string{"y": "2"}, "y")
	require.NoError(t, os.WriteFile(dir+"/edb.bak", nil, 0o644))
	require.NoError(t, os.WriteFile(dir+"/manifest.01", nil, 0o644))

	shards, err := ShardPairs(nil, dir)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 10}, shards)

	require.NoError(t, os.Remove(ShardManifestPath(dir, 2)))
	_, err = ShardPairs(nil, dir)
	require.ErrorIs(t, err, failure.ErrGalleryMismatch)
}

func TestConsolidate(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, 0, map[string]string{"a": "AAA", "b": "", "c": "CC"}, "a", "b", "c")
	writeShard(t, dir, 1, map[string]string{"d": "D", "e": "EEEE"}, "d", "e")

	shards, err := ShardPairs(nil, dir)
	require.NoError(t, err)
	pair, err := Consolidate(context.Background(), nil, dir, shards)
	require.NoError(t, err)

	want := []model.IndexEntry{
		{ID: "a", Length: 3, Offset: 0}, {ID: "b", Length: 0, Offset: 3}, {ID: "c", Length: 2, Offset: 3}, {ID: "d", Length: 1, Offset: 5}, {ID: "e", Length: 4, Offset: 6},
	}
	assert.Equal(t, want, pair.Entries)
	assert.Equal(t, int64(10), pair.EDBSize)

	edb, err := os.ReadFile(EDBPath(dir))
	require.NoError(t, err)
	assert.Equal(t, "AAACCDEEEE", string(edb))

	verified, err := VerifyFiles(nil, EDBPath(dir), ManifestPath(dir))
	require.NoError(t, err)
	assert.Equal(t, want, verified.Entries)

	require.NoError(t, RemoveShards(nil, dir, shards))
	shards, err = ShardPairs(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, shards)
}

func TestConsolidate_BadShardLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, 0, map[string]string{"a": "AAA"}, "a")
	require.NoError(t, os.WriteFile(ShardEDBPath(dir, 1), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(ShardManifestPath(dir, 1), []byte("z 5 0\n"), 0o644))

	_, err := Consolidate(context.Background(), nil, dir, []int{0, 1})
	require.ErrorIs(t, err, failure.ErrGalleryMismatch)

	for _, p := range []string{EDBPath(dir), ManifestPath(dir), EDBPath(dir) + consolidatingSuffix} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), p)
	}
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, 0, map[string]string{"a": "A"}, "a")
	writeShard(t, dir, 3, map[string]string{"b": "B"}, "b")
	_, err := Consolidate(context.Background(), nil, dir, []int{0, 3})
	require.NoError(t, err)
	require.NoError(t, os.Remove(ShardManifestPath(dir, 3)))
	require.NoError(t, os.WriteFile(dir+"/edb.bak", nil, 0o644))

	require.NoError(t, Reset(nil, dir))

	for _, p := range []string{EDBPath(dir), ManifestPath(dir), ShardEDBPath(dir, 0), ShardManifestPath(dir, 0), ShardEDBPath(dir, 3)} {
		assert.NoFileExists(t, p)
	}
	assert.FileExists(t, dir+"/edb.bak")

	require.NoError(t, Reset(nil, dir+"/missing"))
}
