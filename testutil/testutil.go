package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/gallerybench/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Template returns a random template of n bytes.
func (r *RNG) Template(n int) model.Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := make(model.Template, n)
	_, _ = r.rand.Read(t)
	return t
}

// Templates returns num templates with lengths in [0, maxLen].
// Zero-length templates are included on purpose.
func (r *RNG) Templates(num, maxLen int) []model.Template {
	out := make([]model.Template, num)
	for i := range out {
		out[i] = r.Template(r.Intn(maxLen + 1))
	}
	return out
}

// CandidateList returns a valid list of k candidates: assigned candidates
// with distinct ids and non-increasing scores, padded with unassigned candidates.
func (r *RNG) CandidateList(k, assigned int) model.CandidateList {
	list := model.PaddedCandidateList(k)
	r.mu.Lock()
	defer r.mu.Unlock()
	score := 1.0
	for i := range min(k, assigned) {
		score -= r.rand.Float64() * score / 4
		list[i] = model.Candidate{Assigned: true, TemplateID: fmt.Sprintf("T%d", i), Score: score}
	}
	return list
}
