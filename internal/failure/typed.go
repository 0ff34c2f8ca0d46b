package failure

import (
	"fmt"

	"github.com/hupe1980/gallerybench/model"
)

// CandidateLengthError reports a candidate list of the wrong length.
type CandidateLengthError struct {
	SearchID string
	Expected int
	Actual   int
}

func (e *CandidateLengthError) Error() string {
	return fmt.Sprintf("candidate list for %q: expected %d candidates, got %d", e.SearchID, e.Expected, e.Actual)
}

func (e *CandidateLengthError) Unwrap() error { return ErrProtocol }

// CandidateOrderError reports an assigned candidate scoring higher than an
// earlier assigned candidate.
type CandidateOrderError struct {
	SearchID string
	Rank     int
	Previous float64
	Score    float64
}

func (e *CandidateOrderError) Error() string {
	return fmt.Sprintf("candidate list for %q: score %v at rank %d exceeds previous score %v",
		e.SearchID, e.Score, e.Rank, e.Previous)
}

func (e *CandidateOrderError) Unwrap() error { return ErrProtocol }

// DuplicateCandidateError reports a template id assigned twice in one list.
type DuplicateCandidateError struct {
	SearchID   string
	TemplateID string
	Rank       int
	FirstRank  int
}

func (e *DuplicateCandidateError) Error() string {
	return fmt.Sprintf("candidate list for %q: template %q at rank %d duplicates rank %d",
		e.SearchID, e.TemplateID, e.Rank, e.FirstRank)
}

func (e *DuplicateCandidateError) Unwrap() error { return ErrProtocol }

// RangeError reports a manifest entry that does not fit inside the EDB.
type RangeError struct {
	Entry   model.IndexEntry
	Line    int
	EDBSize int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("manifest line %d: entry %q [%d, %d) exceeds edb size %d",
		e.Line, e.Entry.ID, e.Entry.Offset, e.Entry.End(), e.EDBSize)
}

func (e *RangeError) Unwrap() error { return ErrGalleryMismatch }

// OverlapError reports two manifest entries sharing bytes.
type OverlapError struct {
	First  model.IndexEntry
	Second model.IndexEntry
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("manifest entries %q [%d, %d) and %q [%d, %d) overlap",
		e.First.ID, e.First.Offset, e.First.End(), e.Second.ID, e.Second.Offset, e.Second.End())
}

func (e *OverlapError) Unwrap() error { return ErrGalleryMismatch }
