package gallerybench

import (
	"errors"

	"github.com/hupe1980/gallerybench/internal/failure"
)

var (
	// ErrConfiguration marks invalid invocations, unreadable inputs and
	// malformed records.
	ErrConfiguration = failure.ErrConfiguration
	// ErrIO marks failed file or blob operations.
	ErrIO = failure.ErrIO
	// ErrProtocol marks candidate lists that violate the engine contract.
	ErrProtocol = failure.ErrProtocol
	// ErrGalleryMismatch marks missing or inconsistent EDB/manifest pairs.
	ErrGalleryMismatch = failure.ErrGalleryMismatch
	// ErrNotImplemented is returned when the engine declines a phase.
	ErrNotImplemented = failure.ErrNotImplemented

	// ErrWorkerFailed is returned when at least one worker failed.
	ErrWorkerFailed = errors.New("worker failed")
)

// Typed errors carrying details. Each unwraps to one of the sentinels above.
type (
	CandidateLengthError    = failure.CandidateLengthError
	CandidateOrderError     = failure.CandidateOrderError
	DuplicateCandidateError = failure.DuplicateCandidateError
	RangeError              = failure.RangeError
	OverlapError            = failure.OverlapError
)

// ExitCode maps an error returned by Harness.Run to the process exit code:
// 0 for nil, 2 for ErrNotImplemented and 1 otherwise.
func ExitCode(err error) int {
	return failure.ExitCode(err)
}
