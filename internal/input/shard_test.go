package input

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/model"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		total, workers int
		want           []int
	}{
		{0, 4, nil},
		{5, 2, []int{3, 2}},
		{5, 5, []int{1, 1, 1, 1, 1}},
		{3, 8, []int{1, 1, 1}},
		{10, 4, []int{3, 3, 2, 2}},
		{7, 0, []int{7}},
		{7, -3, []int{7}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.total, tt.workers), func(t *testing.T) {
			assert.Equal(t, tt.want, Partition(tt.total, tt.workers))
		})
	}
}

func TestPartition_Properties(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for workers := 1; workers <= 12; workers++ {
			sizes := Partition(total, workers)
			assert.Len(t, sizes, min(total, workers))
			sum := 0
			for i, s := range sizes {
				sum += s
				assert.LessOrEqual(t, sizes[0]-s, 1)
				if i > 0 {
					assert.LessOrEqual(t, s, sizes[i-1])
				}
			}
			assert.Equal(t, total, sum)
		}
	}
}

func writeInput(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestSharder_Split(t *testing.T) {
	var lines []string
	for i := range 5 {
		lines = append(lines, fmt.Sprintf("s%d img%d.ppm faceiso", i, i))
	}
	input := writeInput(t, append(lines[:2:2], append([]string{""}, lines[2:]...)...)...)
	out := t.TempDir()

	shards, err := Sharder{Modality: model.ModalityFace}.Split(context.Background(), input, out, 2)
	require.NoError(t, err)
	require.Len(t, shards, 2)
	assert.Equal(t, Shard{Index: 0, Path: ShardPath(out, 0), First: 0, Records: 3}, shards[0])
	assert.Equal(t, Shard{Index: 1, Path: ShardPath(out, 1), First: 3, Records: 2}, shards[1])

	var joined []string
	for _, sh := range shards {
		raw, err := os.ReadFile(sh.Path)
		require.NoError(t, err)
		joined = append(joined, strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")...)
	}
	assert.Equal(t, lines, joined)

	recs, err := ReadShard(nil, shards[1].Path, model.ModalityFace)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "s3", recs[0].ID)
}

func TestSharder_EmptyInput(t *testing.T) {
	input := writeInput(t, "", "  ")
	shards, err := Sharder{Modality: model.ModalityFace}.Split(context.Background(), input, t.TempDir(), 4)
	require.NoError(t, err)
	assert.Empty(t, shards)
}

func TestSharder_Errors(t *testing.T) {
	out := t.TempDir()
	s := Sharder{Modality: model.ModalityFace}

	_, err := s.Split(context.Background(), filepath.Join(out, "missing.txt"), out, 2)
	require.ErrorIs(t, err, failure.ErrConfiguration)

	input := writeInput(t, "a 1.ppm faceiso", "b 2.ppm")
	_, err = s.Split(context.Background(), input, out, 2)
	require.ErrorIs(t, err, failure.ErrConfiguration)
	_, statErr := os.Stat(ShardPath(out, 0))
	assert.True(t, os.IsNotExist(statErr), "no shard is written when parsing fails")
}

func TestSharder_WriteFault(t *testing.T) {
	out := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(ShardFileStem+".1", fs.Fault{FailOnOpen: true})

	input := writeInput(t, "a 1.ppm faceiso", "b 2.ppm faceiso", "c 3.ppm faceiso")
	_, err := Sharder{FS: ffs, Modality: model.ModalityFace}.Split(context.Background(), input, out, 3)
	require.ErrorIs(t, err, failure.ErrIO)

	_, statErr := os.Stat(ShardPath(out, 0))
	assert.True(t, os.IsNotExist(statErr))
}
