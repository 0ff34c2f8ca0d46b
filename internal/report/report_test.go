package report

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gallerybench/model"
)

func TestTally(t *testing.T) {
	tally := NewTally()
	tally.Observe(0, model.Success)
	tally.Observe(1, model.FaceDetectionError)
	tally.Observe(2, model.Success)
	tally.Observe(3, model.FaceDetectionError)

	assert.Equal(t, 4, tally.Records)
	assert.Equal(t, 2, tally.FailedCount())
	assert.Equal(t, map[model.ReturnCode]int{model.Success: 2, model.FaceDetectionError: 2}, tally.Codes)
}

func TestWriteRead(t *testing.T) {
	tally := NewTally()
	for i := range 10 {
		code := model.Success
		if i%3 == 0 {
			code = model.ExtractError
		}
		tally.Observe(i, code)
	}
	r, err := New("run-1", model.ActionEnroll1N, 2, model.StatusSuccess, tally, nil)
	require.NoError(t, err)
	r.Started = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.Finished = r.Started.Add(1500 * time.Millisecond)

	path := Path(t.TempDir(), "enroll", model.ActionEnroll1N, 2)
	assert.Equal(t, "enroll.enroll_1N.2.report", filepath.Base(path))
	require.NoError(t, Write(nil, path, r))

	got, err := Read(nil, path)
	require.NoError(t, err)
	assert.True(t, r.Started.Equal(got.Started))
	assert.True(t, r.Finished.Equal(got.Finished))
	got.Started, got.Finished = r.Started, r.Finished
	assert.Equal(t, r, got)
	assert.Equal(t, model.StatusSuccess, got.ShardStatus())

	ordinals, err := got.FailedOrdinals()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 3, 6, 9}, ordinals)
	assert.Equal(t, map[string]int{"0": 6, "4": 4}, got.Codes)
}

func TestNew_WithoutTally(t *testing.T) {
	r, err := New("run", model.ActionSearch1N, 0, model.StatusFailure, nil, errors.New("boom"))
	require.NoError(t, err)
	assert.Equal(t, "boom", r.Error)
	assert.Equal(t, model.StatusFailure, r.ShardStatus())

	ordinals, err := r.FailedOrdinals()
	require.NoError(t, err)
	assert.Empty(t, ordinals)
}

func TestSummary(t *testing.T) {
	reports := []ShardReport{
		{Shard: 1, Action: "search_1N", Status: "not-implemented", Records: 2},
		{Shard: 0, Action: "search_1N", Status: "success", Records: 3, Failed: 1},
	}
	Sort(reports)
	assert.Equal(t, 0, reports[0].Shard)

	out := Summary(reports)
	assert.Contains(t, out, "search_1N")
	assert.Contains(t, out, "not-implemented")
	assert.Contains(t, out, "5")
}
