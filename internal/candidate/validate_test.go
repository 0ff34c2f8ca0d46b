package candidate

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/model"
)

func assigned(id string, score float64) model.Candidate {
	return model.Candidate{Assigned: true, TemplateID: id, Score: score}
}

func ranked(n int) model.CandidateList {
	list := make(model.CandidateList, n)
	for i := range list {
		list[i] = assigned(fmt.Sprintf("T%d", i), float64(n-i))
	}
	return list
}

func TestValidate_OK(t *testing.T) {
	tests := []struct {
		name string
		list model.CandidateList
		k    int
	}{
		{"ranked", ranked(20), 20},
		{"ties", model.CandidateList{assigned("a", 1), assigned("b", 1)}, 2},
		{"padded", append(ranked(2), model.UnassignedCandidate(2), model.UnassignedCandidate(3)), 4},
		{"all unassigned", model.PaddedCandidateList(20), 20},
		{"single null", append(ranked(1), model.NullCandidate()), 2},
		{"unassigned out of order", model.CandidateList{assigned("a", 0.5), {TemplateID: "x", Score: 9}, assigned("b", 0.4)}, 3},
		{"empty", model.CandidateList{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, Validate("p", tt.list, tt.k))
		})
	}
}

func TestValidate_Length(t *testing.T) {
	err := Validate("s1", ranked(19), 20)
	require.ErrorIs(t, err, failure.ErrProtocol)

	var lenErr *failure.CandidateLengthError
	require.True(t, errors.As(err, &lenErr))
	assert.Equal(t, failure.CandidateLengthError{SearchID: "s1", Expected: 20, Actual: 19}, *lenErr)
}

func TestValidate_Order(t *testing.T) {
	list := model.CandidateList{assigned("a", 0.9), model.NullCandidate(), assigned("b", 0.95)}
	err := Validate("p", list, 3)

	var orderErr *failure.CandidateOrderError
	require.True(t, errors.As(err, &orderErr))
	assert.Equal(t, 2, orderErr.Rank)
	assert.Equal(t, 0.9, orderErr.Previous)
	assert.Equal(t, 0.95, orderErr.Score)
}

func TestValidate_Duplicate(t *testing.T) {
	list := ranked(20)
	list[5].TemplateID = "T7"
	err := Validate("p", list, 20)

	var dupErr *failure.DuplicateCandidateError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "T7", dupErr.TemplateID)
	assert.Equal(t, 7, dupErr.Rank)
	assert.Equal(t, 5, dupErr.FirstRank)
}

func TestLines(t *testing.T) {
	list := model.CandidateList{assigned("T1", 0.9899), model.NullCandidate()}
	got := Lines("s1_0", model.Success, list)
	want := []string{
		"s1_0 0 0 1 T1 0.9899",
		"s1_0 1 0 0 NA -1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "s2", model.ExtractError, model.NullCandidateList(1)))
	assert.Equal(t, "s2 0 4 0 NA -1\n", buf.String())
}

func TestDump(t *testing.T) {
	assert.Equal(t, "p 0 T1 0.5000000000\n", Dump("p", model.CandidateList{assigned("T1", 0.5)}))
}

func TestValidate_DuplicateUnassigned(t *testing.T) {
	tests := []struct {
		name      string
		list      model.CandidateList
		rank      int
		firstRank int
	}{
		{"both unassigned", model.CandidateList{assigned("T1", 0.9), {TemplateID: "T7"}, {TemplateID: "T7"}}, 2, 1},
		{"assigned then unassigned", model.CandidateList{assigned("T7", 0.9), {TemplateID: "T7"}, assigned("T2", 0.1)}, 1, 0},
		{"null placeholders", append(ranked(1), model.NullCandidate(), model.NullCandidate()), 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate("p", tt.list, 3)
			require.ErrorIs(t, err, failure.ErrProtocol)

			var dupErr *failure.DuplicateCandidateError
			require.ErrorAs(t, err, &dupErr)
			assert.Equal(t, tt.rank, dupErr.Rank)
			assert.Equal(t, tt.firstRank, dupErr.FirstRank)
		})
	}
}
