package model

import (
	"fmt"
	"strconv"
)

// Template is an opaque, engine-defined template.
// A zero-length template marks a failed extraction and is still recorded.
type Template []byte

// Clone returns an owned copy of the template bytes.
func (t Template) Clone() Template {
	if t == nil {
		return Template{}
	}
	out := make(Template, len(t))
	copy(out, t)
	return out
}

// Len returns the template size in bytes.
func (t Template) Len() int { return len(t) }

// MediaRef references one image on disk together with its label.
type MediaRef struct {
	Path  string
	Label ImageLabel
}

// MediaEntry is one media item of a record: a still image set or a video.
type MediaEntry struct {
	Type MediaType
	Refs []MediaRef
}

// Record is one line of the input file.
type Record struct {
	ID    string
	Media []MediaEntry
}

// Refs returns all media references of the record in input order.
func (r Record) Refs() []MediaRef {
	var n int
	for _, m := range r.Media {
		n += len(m.Refs)
	}
	refs := make([]MediaRef, 0, n)
	for _, m := range r.Media {
		refs = append(refs, m.Refs...)
	}
	return refs
}

// ImageCount returns the number of images referenced by the record.
func (r Record) ImageCount() int {
	var n int
	for _, m := range r.Media {
		n += len(m.Refs)
	}
	return n
}

// Image is a decoded raster image.
type Image struct {
	// Width is the number of pixels horizontally.
	Width uint16
	// Height is the number of pixels vertically.
	Height uint16
	// Depth is the number of bits per pixel (8 or 24).
	Depth uint8
	// Data holds WH intensity bytes (depth 8) or 3WH RGB bytes (depth 24).
	Data  []byte
	Label ImageLabel
	Iris  IrisSide
}

// Size returns the expected size of the raster data in bytes.
func (i Image) Size() int {
	return int(i.Width) * int(i.Height) * int(i.Depth/8)
}

// Media is decoded media handed to the template engine.
type Media struct {
	Type MediaType
	// FPS is the frame rate for video media, 0 for stills.
	FPS    uint8
	Images []Image
}

// IndexEntry locates one template inside the EDB.
type IndexEntry struct {
	ID     string
	Length int64
	Offset int64
}

// End returns the exclusive end offset of the entry.
func (e IndexEntry) End() int64 { return e.Offset + e.Length }

// String returns the manifest line representation (without newline).
func (e IndexEntry) String() string {
	return e.ID + " " + strconv.FormatInt(e.Length, 10) + " " + strconv.FormatInt(e.Offset, 10)
}

// NullTemplateID is the template id used by null candidates.
const NullTemplateID = "NA"

// NullScore is the score used by null candidates.
const NullScore = -1.0

// Candidate is one ranked gallery match for a search record.
type Candidate struct {
	// Assigned is false for placeholder entries.
	Assigned   bool
	TemplateID string
	Score      float64
}

// NullCandidate returns the placeholder candidate.
func NullCandidate() Candidate {
	return Candidate{Assigned: false, TemplateID: NullTemplateID, Score: NullScore}
}

// UnassignedCandidate returns a placeholder for rank whose template id is
// unique within a list. Engines pad short result lists with it.
func UnassignedCandidate(rank int) Candidate {
	return Candidate{Assigned: false, TemplateID: NullTemplateID + strconv.Itoa(rank), Score: NullScore}
}

// String returns a compact representation for diagnostics.
func (c Candidate) String() string {
	return fmt.Sprintf("Cand(%t:%s:%.10f)", c.Assigned, c.TemplateID, c.Score)
}

// CandidateList is the fixed-length ranked result of one search.
type CandidateList []Candidate

// NullCandidateList returns a list of k placeholder candidates.
func NullCandidateList(k int) CandidateList {
	if k < 0 {
		k = 0
	}
	list := make(CandidateList, k)
	for i := range list {
		list[i] = NullCandidate()
	}
	return list
}

// PaddedCandidateList returns k unassigned candidates with distinct ids.
func PaddedCandidateList(k int) CandidateList {
	list := make(CandidateList, max(k, 0))
	for i := range list {
		list[i] = UnassignedCandidate(i)
	}
	return list
}
