package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gallerybench/model"
)

func TestRNG_Deterministic(t *testing.T) {
	a, b := NewRNG(4711), NewRNG(4711)
	assert.Equal(t, a.Template(16), b.Template(16))

	a.Reset()
	first := a.Template(16)
	a.Reset()
	assert.Equal(t, first, a.Template(16))
	assert.Equal(t, int64(4711), a.Seed())
}

func TestRNG_Templates(t *testing.T) {
	tmpls := NewRNG(1).Templates(50, 8)
	require.Len(t, tmpls, 50)
	for _, tmpl := range tmpls {
		assert.LessOrEqual(t, len(tmpl), 8)
	}
}

func TestRNG_CandidateList(t *testing.T) {
	list := NewRNG(7).CandidateList(20, 5)
	require.Len(t, list, 20)
	for i := 1; i < 5; i++ {
		assert.LessOrEqual(t, list[i].Score, list[i-1].Score)
		assert.True(t, list[i].Assigned)
	}
	assert.Equal(t, model.UnassignedCandidate(5), list[5])
}

func TestEngine_Calls(t *testing.T) {
	ctx := context.Background()
	e := NewMultiEngine()
	_, _, st := e.CreateTemplate(ctx, nil, model.RoleEnrollment1N)
	require.True(t, st.IsSuccess())
	_, _, _ = e.CreateTemplate(ctx, nil, model.RoleEnrollment1N)
	tmpls, _, _ := e.CreateSearchTemplates(ctx, model.Media{}, model.RoleSearch1N)

	assert.Equal(t, 2, e.Calls("CreateTemplate"))
	assert.Equal(t, 1, e.Calls("CreateSearchTemplates"))
	assert.Equal(t, []model.Template{model.Template("multi-0")}, tmpls)
}

func TestFixtures(t *testing.T) {
	dir := t.TempDir()
	lines := FaceRecords(t, dir, 12)
	path := WriteLines(t, dir, "in.txt", lines...)
	assert.Equal(t, lines, ReadLines(t, path))
	assert.Contains(t, lines[11], "s11 ")
}
