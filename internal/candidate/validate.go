// Package candidate checks engine-returned candidate lists and formats them
// for the candidate list file.
package candidate

import (
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/model"
)

// Header is the first line of every candidate list file.
const Header = "searchId candidateRank searchRetCode isAssigned templateId score"

// Validate checks that list has exactly k entries, that assigned scores are
// non-increasing and that no two entries share a template id. Unassigned
// entries are ignored by the order check only.
func Validate(searchID string, list model.CandidateList, k int) error {
	if len(list) != k {
		return &failure.CandidateLengthError{SearchID: searchID, Expected: k, Actual: len(list)}
	}

	seen := make(map[string]int, len(list))
	prev, havePrev := 0.0, false
	for rank, c := range list {
		if first, dup := seen[c.TemplateID]; dup {
			return &failure.DuplicateCandidateError{SearchID: searchID, TemplateID: c.TemplateID, Rank: rank, FirstRank: first}
		}
		seen[c.TemplateID] = rank

		if !c.Assigned {
			continue
		}
		if havePrev && c.Score > prev {
			return &failure.CandidateOrderError{SearchID: searchID, Rank: rank, Previous: prev, Score: c.Score}
		}
		prev, havePrev = c.Score, true
	}
	return nil
}

// Lines renders list as candidate list file lines, without trailing newlines.
func Lines(searchID string, code model.ReturnCode, list model.CandidateList) []string {
	lines := make([]string, len(list))
	var b strings.Builder
	for rank, c := range list {
		b.Reset()
		b.WriteString(searchID)
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(rank))
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(int(code)))
		b.WriteByte(' ')
		if c.Assigned {
			b.WriteString("1 ")
		} else {
			b.WriteString("0 ")
		}
		b.WriteString(c.TemplateID)
		b.WriteByte(' ')
		b.WriteString(FormatScore(c.Score))
		lines[rank] = b.String()
	}
	return lines
}

// Write writes the lines of list to w.
func Write(w io.Writer, searchID string, code model.ReturnCode, list model.CandidateList) error {
	for _, line := range Lines(searchID, code, list) {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// FormatScore formats a score with the shortest representation that
// round-trips.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}

// Dump renders list for diagnostics with fixed ten-digit scores.
func Dump(searchID string, list model.CandidateList) string {
	var b strings.Builder
	for rank, c := range list {
		b.WriteString(searchID)
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(rank))
		b.WriteByte(' ')
		b.WriteString(c.TemplateID)
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(c.Score, 'f', 10, 64))
		b.WriteByte('\n')
	}
	return b.String()
}
