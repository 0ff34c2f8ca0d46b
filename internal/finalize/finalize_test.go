package finalize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gallerybench/gallery"
	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/model"
	"github.com/hupe1980/gallerybench/testutil"
)

func writePair(t *testing.T, edbPath, manifestPath string, tmpls map[string]string, order ...string) {
	t.Helper()
	w, err := gallery.Create(context.Background(), edbPath, manifestPath)
	require.NoError(t, err)
	for _, id := range order {
		_, err := w.Append(id, model.Template(tmpls[id]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func newJob(t *testing.T) Job {
	t.Helper()
	return Job{
		ConfigDir:   t.TempDir(),
		EnrollDir:   filepath.Join(t.TempDir(), "enroll"),
		OutputDir:   t.TempDir(),
		GalleryType: model.GalleryUnconsolidated,
		RunID:       "run-1",
	}
}

func TestRun_ConsolidatesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	job := newJob(t)
	job.Cleanup = true
	writePair(t, gallery.ShardEDBPath(job.OutputDir, 0), gallery.ShardManifestPath(job.OutputDir, 0),
		map[string]string{"a": "aaa", "b": ""}, "a", "b")
	writePair(t, gallery.ShardEDBPath(job.OutputDir, 1), gallery.ShardManifestPath(job.OutputDir, 1),
		map[string]string{"c": "cc"}, "c")

	e := testutil.NewEngine()
	e.FinalizeFunc = func(_ int, configDir, enrollDir, edbPath, manifestPath string, gt model.GalleryType) model.ReturnStatus {
		assert.Equal(t, job.ConfigDir, configDir)
		assert.Equal(t, job.EnrollDir, enrollDir)
		assert.Equal(t, gallery.EDBPath(job.OutputDir), edbPath)
		assert.Equal(t, gallery.ManifestPath(job.OutputDir), manifestPath)
		assert.Equal(t, model.GalleryUnconsolidated, gt)
		return model.OK()
	}

	f := New(e)
	res, err := f.Run(ctx, job)
	require.NoError(t, err)
	assert.False(t, res.Reused)
	assert.Equal(t, []int{0, 1}, res.Consolidated)
	assert.Equal(t, int64(5), res.Pair.EDBSize)
	assert.Equal(t, []model.IndexEntry{
		{ID: "a", Length: 3, Offset: 0},
		{ID: "b", Length: 0, Offset: 3},
		{ID: "c", Length: 2, Offset: 3},
	}, res.Pair.Entries)
	assert.NoFileExists(t, gallery.ShardEDBPath(job.OutputDir, 0))
	assert.NoFileExists(t, filepath.Join(job.OutputDir, LockName))

	marker, found, err := ReadMarker(nil, filepath.Join(job.EnrollDir, MarkerName))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, res.Digest, marker.Digest)
	assert.Equal(t, "run-1", marker.RunID)
	assert.Equal(t, 3, marker.Entries)

	again, err := f.Run(ctx, job)
	require.NoError(t, err)
	assert.True(t, again.Reused)
	assert.Equal(t, res.Digest, again.Digest)
	assert.Equal(t, 1, e.Calls("FinalizeEnrollment"))
}

func TestRun_RejectsDifferentGallery(t *testing.T) {
	ctx := context.Background()
	job := newJob(t)
	writePair(t, gallery.EDBPath(job.OutputDir), gallery.ManifestPath(job.OutputDir), map[string]string{"a": "x"}, "a")

	e := testutil.NewEngine()
	_, err := New(e).Run(ctx, job)
	require.NoError(t, err)

	writePair(t, gallery.EDBPath(job.OutputDir), gallery.ManifestPath(job.OutputDir), map[string]string{"a": "y"}, "a")
	_, err = New(e).Run(ctx, job)
	require.ErrorIs(t, err, failure.ErrGalleryMismatch)
	assert.Equal(t, 1, e.Calls("FinalizeEnrollment"))
}

func TestRun_MissingManifest(t *testing.T) {
	job := newJob(t)
	require.NoError(t, os.WriteFile(gallery.EDBPath(job.OutputDir), []byte("abc"), 0o644))

	e := testutil.NewEngine()
	_, err := New(e).Run(context.Background(), job)
	require.ErrorIs(t, err, failure.ErrGalleryMismatch)
	assert.Equal(t, 0, e.Calls("FinalizeEnrollment"))
}

func TestRun_NothingToFinalize(t *testing.T) {
	_, err := New(testutil.NewEngine()).Run(context.Background(), newJob(t))
	require.ErrorIs(t, err, failure.ErrGalleryMismatch)
}

func TestRun_HalfShardPair(t *testing.T) {
	job := newJob(t)
	require.NoError(t, os.WriteFile(gallery.ShardEDBPath(job.OutputDir, 0), nil, 0o644))
	_, err := New(testutil.NewEngine()).Run(context.Background(), job)
	require.ErrorIs(t, err, failure.ErrGalleryMismatch)
}

func TestRun_ManifestOutOfRange(t *testing.T) {
	job := newJob(t)
	require.NoError(t, os.WriteFile(gallery.EDBPath(job.OutputDir), []byte("abc"), 0o644))
	require.NoError(t, os.WriteFile(gallery.ManifestPath(job.OutputDir), []byte("a 4 0\n"), 0o644))

	e := testutil.NewEngine()
	_, err := New(e).Run(context.Background(), job)
	var rangeErr *failure.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 1, rangeErr.Line)
	assert.Equal(t, 0, e.Calls("FinalizeEnrollment"))
}

func TestRun_EngineFailure(t *testing.T) {
	tests := []struct {
		name string
		code model.ReturnCode
		want error
	}{
		{"error", model.EnrollDirError, failure.ErrConfiguration},
		{"not implemented", model.NotImplemented, failure.ErrNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := newJob(t)
			writePair(t, gallery.EDBPath(job.OutputDir), gallery.ManifestPath(job.OutputDir), map[string]string{"a": "x"}, "a")
			e := testutil.NewEngine()
			e.FinalizeFunc = func(int, string, string, string, string, model.GalleryType) model.ReturnStatus {
				return model.StatusOf(tt.code, "")
			}
			_, err := New(e).Run(context.Background(), job)
			require.ErrorIs(t, err, tt.want)
			assert.NoFileExists(t, filepath.Join(job.EnrollDir, MarkerName))
		})
	}
}

func TestRun_Locked(t *testing.T) {
	job := newJob(t)
	writePair(t, gallery.EDBPath(job.OutputDir), gallery.ManifestPath(job.OutputDir), map[string]string{"a": "x"}, "a")

	other := flock.New(filepath.Join(job.OutputDir, LockName))
	ok, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer other.Unlock()

	_, err = New(testutil.NewEngine()).Run(context.Background(), job)
	require.ErrorIs(t, err, ErrLocked)
}

func TestDigest(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("ab"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("c"), 0o644))

	d, err := Digest(nil, a, b)
	require.NoError(t, err)
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", d)
}

func TestRun_ReconsolidatesNewShards(t *testing.T) {
	ctx := context.Background()
	job := newJob(t)
	writePair(t, gallery.ShardEDBPath(job.OutputDir, 0), gallery.ShardManifestPath(job.OutputDir, 0),
		map[string]string{"a": "aaa", "b": "b"}, "a", "b")

	e := testutil.NewEngine()
	first, err := New(e).Run(ctx, job)
	require.NoError(t, err)
	require.Len(t, first.Pair.Entries, 2)

	require.NoError(t, os.Remove(gallery.ShardEDBPath(job.OutputDir, 0)))
	require.NoError(t, os.Remove(gallery.ShardManifestPath(job.OutputDir, 0)))
	writePair(t, gallery.ShardEDBPath(job.OutputDir, 0), gallery.ShardManifestPath(job.OutputDir, 0),
		map[string]string{"c": "cc"}, "c")

	job.EnrollDir = filepath.Join(t.TempDir(), "enroll")
	second, err := New(e).Run(ctx, job)
	require.NoError(t, err)
	assert.False(t, second.Reused)
	assert.Equal(t, []int{0}, second.Consolidated)
	assert.Equal(t, []model.IndexEntry{{ID: "c", Length: 2, Offset: 0}}, second.Pair.Entries)
	assert.NotEqual(t, first.Digest, second.Digest)
	assert.Equal(t, 2, e.Calls("FinalizeEnrollment"))
}
