package failure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gallerybench/model"
)

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrIO, "enroll", "append", "edb.3", cause)

	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "i/o error: enroll: append: edb.3: disk full", err.Error())

	err = Wrap(nil, " ", "", "", nil)
	require.ErrorIs(t, err, ErrIO)
	assert.Equal(t, "i/o error: harness failure", err.Error())
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.ShardStatus
		code int
	}{
		{"nil", nil, model.StatusSuccess, 0},
		{"not implemented", Wrap(ErrNotImplemented, "search", "create", "", nil), model.StatusNotImplemented, 2},
		{"protocol", &CandidateLengthError{SearchID: "p", Expected: 20, Actual: 19}, model.StatusFailure, 1},
		{"plain", errors.New("x"), model.StatusFailure, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
			assert.Equal(t, tt.code, ExitCode(tt.err))
		})
	}
}

func TestTypedErrorsUnwrap(t *testing.T) {
	assert.ErrorIs(t, &CandidateLengthError{}, ErrProtocol)
	assert.ErrorIs(t, &CandidateOrderError{}, ErrProtocol)
	assert.ErrorIs(t, &DuplicateCandidateError{}, ErrProtocol)
	assert.ErrorIs(t, &RangeError{}, ErrGalleryMismatch)
	assert.ErrorIs(t, &OverlapError{}, ErrGalleryMismatch)

	var dup *DuplicateCandidateError
	err := Wrap(ErrProtocol, "search", "validate", "", &DuplicateCandidateError{SearchID: "p1", TemplateID: "T7", Rank: 4, FirstRank: 2})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "T7", dup.TemplateID)
}
