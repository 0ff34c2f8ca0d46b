// Package nullimpl is a reference engine that produces fixed templates and
// synthetic candidate lists. It makes the harness runnable end to end without
// a real matcher.
package nullimpl

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/gallerybench/blobstore"
	"github.com/hupe1980/gallerybench/engine"
	"github.com/hupe1980/gallerybench/gallery"
	"github.com/hupe1980/gallerybench/model"
)

// Name is the registry name of the engine.
const Name = "null"

// Gallery copies written into the enrollment directory on finalize.
const (
	EDBName      = "null.edb"
	ManifestName = "null.manifest"
)

// TopScore is the score of the first candidate; each following one halves it.
const TopScore = 0.9899

func init() {
	engine.Register(Name, func() (engine.TemplateEngine, error) { return New(), nil })
}

// Engine is the null template engine.
type Engine struct {
	counter atomic.Uint64

	mu        sync.RWMutex
	templates map[string]model.Template
	ids       []string
}

var (
	_ engine.TemplateEngine       = (*Engine)(nil)
	_ engine.MultiTemplateCreator = (*Engine)(nil)
)

// New returns a null engine.
func New() *Engine {
	return &Engine{}
}

func (e *Engine) InitializeTemplateCreation(context.Context, string, model.TemplateRole) model.ReturnStatus {
	e.counter.Store(0)
	return model.OK()
}

func (e *Engine) CreateTemplate(_ context.Context, media []model.Media, role model.TemplateRole) (model.Template, []model.Geometry, model.ReturnStatus) {
	tmpl := model.Template(strconv.Itoa(len(media)) + " null " + role.String() + " template\n")
	return tmpl, nil, model.OK()
}

// CreateSearchTemplates alternates between one and two templates per call.
func (e *Engine) CreateSearchTemplates(_ context.Context, media model.Media, role model.TemplateRole) ([]model.Template, []model.Geometry, model.ReturnStatus) {
	n := int(e.counter.Add(1)-1)%2 + 1
	tmpls := make([]model.Template, n)
	for i := range tmpls {
		tmpls[i] = model.Template(fmt.Sprintf("%d null %s %s template\n", len(media.Images), media.Type, role))
	}
	return tmpls, nil, model.OK()
}

// FinalizeEnrollment copies the EDB and manifest into enrollDir.
func (e *Engine) FinalizeEnrollment(ctx context.Context, _, enrollDir, edbPath, manifestPath string, _ model.GalleryType) model.ReturnStatus {
	if err := os.MkdirAll(enrollDir, 0o755); err != nil {
		return model.StatusOf(model.EnrollDirError, err.Error())
	}
	store := blobstore.NewLocalStore(enrollDir)
	if err := copyInto(ctx, store, EDBName, edbPath); err != nil {
		return model.StatusOf(model.EnrollDirError, err.Error())
	}
	if err := copyInto(ctx, store, ManifestName, manifestPath); err != nil {
		return model.StatusOf(model.EnrollDirError, err.Error())
	}
	return model.OK()
}

func copyInto(ctx context.Context, store blobstore.BlobStore, name, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, in); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// InitializeSearch loads every template of the finalized gallery.
// Templates sharing an id keep the first occurrence.
func (e *Engine) InitializeSearch(ctx context.Context, _, enrollDir string) model.ReturnStatus {
	g, err := gallery.Open(ctx, blobstore.NewLocalStore(enrollDir), EDBName, ManifestName)
	if err != nil {
		return model.StatusOf(model.ConfigError, err.Error())
	}
	defer g.Close()

	templates := make(map[string]model.Template, g.Len())
	for i, entry := range g.Entries() {
		if _, ok := templates[entry.ID]; ok {
			continue
		}
		tmpl, err := g.Template(ctx, i)
		if err != nil {
			return model.StatusOf(model.TemplateFormatError, err.Error())
		}
		templates[entry.ID] = tmpl
	}
	ids := make([]string, 0, len(templates))
	for id := range templates {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	e.mu.Lock()
	e.templates, e.ids = templates, ids
	e.mu.Unlock()
	return model.OK()
}

// Search ranks gallery ids in sorted order with halving scores. Lists longer
// than the gallery are padded with unassigned candidates.
func (e *Engine) Search(_ context.Context, _ model.Template, k int) ([]model.Candidate, model.ReturnStatus) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.ids) == 0 {
		return nil, model.StatusOf(model.VendorError, "enrollment gallery is empty")
	}
	list := model.PaddedCandidateList(k)
	score := TopScore
	for i := range min(k, len(e.ids)) {
		list[i] = model.Candidate{Assigned: true, TemplateID: e.ids[i], Score: score}
		score /= 2
	}
	return list, model.OK()
}

// GalleryLen returns the number of distinct templates loaded by InitializeSearch.
func (e *Engine) GalleryLen() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.ids)
}
