package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/gallerybench/model"
)

// ErrMalformed is returned for lines that do not follow the record format.
var ErrMalformed = errors.New("malformed record")

// ParseRecord parses one non-blank input line.
func ParseRecord(m model.Modality, line string) (model.Record, error) {
	if m.PipeDelimited() {
		return parseMultiMedia(m, line)
	}
	return parseFlat(m, line)
}

func parseFlat(m model.Modality, line string) (model.Record, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 3 || (len(tokens)-1)%2 != 0 {
		return model.Record{}, fmt.Errorf("%w: want id followed by path/label pairs, got %d tokens", ErrMalformed, len(tokens))
	}
	refs, err := parseRefs(m, tokens[1:])
	if err != nil {
		return model.Record{}, err
	}
	return model.Record{
		ID:    tokens[0],
		Media: []model.MediaEntry{{Type: model.MediaImage, Refs: refs}},
	}, nil
}

func parseMultiMedia(m model.Modality, line string) (model.Record, error) {
	var parts []string
	for _, p := range strings.Split(line, "|") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return model.Record{}, fmt.Errorf("%w: want id followed by media entries", ErrMalformed)
	}
	id := parts[0]
	if strings.ContainsFunc(id, isSpace) {
		return model.Record{}, fmt.Errorf("%w: id %q contains whitespace", ErrMalformed, id)
	}

	rec := model.Record{ID: id}
	for i, part := range parts[1:] {
		tokens := strings.Fields(part)
		if len(tokens) < 3 || (len(tokens)-1)%2 != 0 {
			return model.Record{}, fmt.Errorf("%w: media entry %d: want type followed by path/label pairs", ErrMalformed, i)
		}
		mt, err := model.ParseMediaType(tokens[0])
		if err != nil {
			return model.Record{}, fmt.Errorf("%w: media entry %d: %w", ErrMalformed, i, err)
		}
		refs, err := parseRefs(m, tokens[1:])
		if err != nil {
			return model.Record{}, err
		}
		rec.Media = append(rec.Media, model.MediaEntry{Type: mt, Refs: refs})
	}
	return rec, nil
}

func parseRefs(m model.Modality, pairs []string) ([]model.MediaRef, error) {
	refs := make([]model.MediaRef, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		label, err := model.ParseImageLabel(pairs[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if !m.AcceptsLabel(label) {
			return nil, fmt.Errorf("%w: label %q is not valid for modality %s", ErrMalformed, label, m)
		}
		refs = append(refs, model.MediaRef{Path: pairs[i], Label: label})
	}
	return refs, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\v' || r == '\f'
}

// Line is one non-blank input line and its parsed record.
type Line struct {
	// Number is the 1-based line number in the source.
	Number int
	Text   string
	Record model.Record
}

// Reader reads records from a line-oriented source.
type Reader struct {
	sc       *bufio.Scanner
	modality model.Modality
	line     int
}

// NewReader returns a Reader parsing lines of modality m.
func NewReader(r io.Reader, m model.Modality) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Reader{sc: sc, modality: m}
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Line, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if text == "" {
			continue
		}
		rec, err := ParseRecord(r.modality, text)
		if err != nil {
			return Line{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		return Line{Number: r.line, Text: text, Record: rec}, nil
	}
	if err := r.sc.Err(); err != nil {
		return Line{}, err
	}
	return Line{}, io.EOF
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([]Line, error) {
	var lines []Line
	for {
		l, err := r.Next()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
}
