// Package failure classifies harness errors.
//
// Infrastructure errors are tagged with one of the sentinel markers so callers
// can branch with errors.Is. Engine per-record return codes are data and never
// become errors, except NotImplemented.
package failure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/gallerybench/model"
)

var (
	ErrConfiguration   = errors.New("configuration error")
	ErrIO              = errors.New("i/o error")
	ErrProtocol        = errors.New("engine protocol violation")
	ErrGalleryMismatch = errors.New("gallery mismatch")
	ErrNotImplemented  = errors.New("not implemented")
)

// Wrap builds an error message that includes stage context while tagging it
// with marker. The marker should be one of the sentinels above; nil means ErrIO.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Status maps an error to the terminal shard status.
func Status(err error) model.ShardStatus {
	switch {
	case err == nil:
		return model.StatusSuccess
	case errors.Is(err, ErrNotImplemented):
		return model.StatusNotImplemented
	default:
		return model.StatusFailure
	}
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	return Status(err).ExitCode()
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "harness failure"
	}
	return strings.Join(parts, ": ")
}
