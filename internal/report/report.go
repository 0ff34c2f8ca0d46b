// Package report records per-shard outcomes and renders the run summary.
//
// Every worker writes a small TOML report next to its outputs. The parent
// reads them back after all workers exited, so process and in-process
// workers are summarized the same way.
package report

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/model"
)

// Tally counts the engine return codes of one shard.
type Tally struct {
	Records int
	// Failed holds the shard-local ordinals of records whose engine call
	// did not succeed.
	Failed *roaring.Bitmap
	Codes  map[model.ReturnCode]int
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{Failed: roaring.New(), Codes: make(map[model.ReturnCode]int)}
}

// Observe records the outcome of the record at ordinal.
func (t *Tally) Observe(ordinal int, code model.ReturnCode) {
	t.Records = max(t.Records, ordinal+1)
	t.Codes[code]++
	if code != model.Success {
		t.Failed.Add(uint32(ordinal))
	}
}

// FailedCount returns the number of distinct failed records.
func (t *Tally) FailedCount() int {
	return int(t.Failed.GetCardinality())
}

// ShardReport is the persisted outcome of one worker.
type ShardReport struct {
	RunID    string         `toml:"run_id"`
	Action   string         `toml:"action"`
	Shard    int            `toml:"shard"`
	Status   string         `toml:"status"`
	Records  int            `toml:"records"`
	Failed   int            `toml:"failed"`
	FailedBM string         `toml:"failed_bitmap,omitempty"`
	Codes    map[string]int `toml:"codes,omitempty"`
	Error    string         `toml:"error,omitempty"`
	Started  time.Time      `toml:"started"`
	Finished time.Time      `toml:"finished"`
}

// New builds a report from a tally. t may be nil when the worker failed
// before processing any record.
func New(runID string, action model.Action, shard int, status model.ShardStatus, t *Tally, err error) (ShardReport, error) {
	r := ShardReport{
		RunID:  runID,
		Action: action.String(),
		Shard:  shard,
		Status: status.String(),
	}
	if err != nil {
		r.Error = err.Error()
	}
	if t == nil {
		return r, nil
	}
	r.Records = t.Records
	r.Failed = t.FailedCount()
	if !t.Failed.IsEmpty() {
		enc, err := t.Failed.ToBase64()
		if err != nil {
			return ShardReport{}, fmt.Errorf("encode failed set: %w", err)
		}
		r.FailedBM = enc
	}
	if len(t.Codes) > 0 {
		r.Codes = make(map[string]int, len(t.Codes))
		for code, n := range t.Codes {
			r.Codes[strconv.Itoa(int(code))] = n
		}
	}
	return r, nil
}

// ShardStatus parses the recorded status. Unknown values are failures.
func (r ShardReport) ShardStatus() model.ShardStatus {
	for _, s := range []model.ShardStatus{model.StatusSuccess, model.StatusNotImplemented} {
		if r.Status == s.String() {
			return s
		}
	}
	return model.StatusFailure
}

// FailedOrdinals decodes the shard-local ordinals of failed records.
func (r ShardReport) FailedOrdinals() ([]uint32, error) {
	if r.FailedBM == "" {
		return nil, nil
	}
	bm := roaring.New()
	if _, err := bm.FromBase64(r.FailedBM); err != nil {
		return nil, fmt.Errorf("decode failed set: %w", err)
	}
	return bm.ToArray(), nil
}

// Path returns the report file of a shard.
func Path(outputDir, stem string, action model.Action, shard int) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s.%s.%d.report", stem, action, shard))
}

// Write stores r at path.
func Write(fsys fs.FileSystem, path string, r ShardReport) error {
	data, err := toml.Marshal(r)
	if err != nil {
		return err
	}
	return fs.WriteFile(fs.Or(fsys), path, data)
}

// Read loads a report written by Write.
func Read(fsys fs.FileSystem, path string) (ShardReport, error) {
	data, err := fs.ReadFile(fs.Or(fsys), path)
	if err != nil {
		return ShardReport{}, err
	}
	var r ShardReport
	if err := toml.Unmarshal(data, &r); err != nil {
		return ShardReport{}, fmt.Errorf("parse report %s: %w", path, err)
	}
	return r, nil
}

// Sort orders reports by shard index.
func Sort(reports []ShardReport) {
	slices.SortFunc(reports, func(a, b ShardReport) int { return a.Shard - b.Shard })
}
