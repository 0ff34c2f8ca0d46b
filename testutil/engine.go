package testutil

import (
	"context"
	"strconv"
	"sync"

	"github.com/hupe1980/gallerybench/engine"
	"github.com/hupe1980/gallerybench/model"
)

// Engine is a scripted TemplateEngine. Nil funcs fall back to fixed
// successful behavior. call is the 0-based call index of that operation.
type Engine struct {
	CreateFunc   func(call int, media []model.Media, role model.TemplateRole) (model.Template, []model.Geometry, model.ReturnStatus)
	SearchFunc   func(call int, tmpl model.Template, k int) ([]model.Candidate, model.ReturnStatus)
	FinalizeFunc func(call int, configDir, enrollDir, edbPath, manifestPath string, galleryType model.GalleryType) model.ReturnStatus

	InitCreateStatus model.ReturnStatus
	InitSearchStatus model.ReturnStatus

	mu    sync.Mutex
	calls map[string]int
}

var _ engine.TemplateEngine = (*Engine)(nil)

// NewEngine returns an Engine that succeeds everywhere.
func NewEngine() *Engine {
	return &Engine{calls: make(map[string]int)}
}

func (e *Engine) next(op string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.calls == nil {
		e.calls = make(map[string]int)
	}
	n := e.calls[op]
	e.calls[op]++
	return n
}

// Calls returns how often op was called.
func (e *Engine) Calls(op string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[op]
}

func (e *Engine) InitializeTemplateCreation(context.Context, string, model.TemplateRole) model.ReturnStatus {
	e.next("InitializeTemplateCreation")
	return e.InitCreateStatus
}

func (e *Engine) CreateTemplate(_ context.Context, media []model.Media, role model.TemplateRole) (model.Template, []model.Geometry, model.ReturnStatus) {
	call := e.next("CreateTemplate")
	if e.CreateFunc != nil {
		return e.CreateFunc(call, media, role)
	}
	return model.Template("template-" + strconv.Itoa(call)), nil, model.OK()
}

func (e *Engine) FinalizeEnrollment(_ context.Context, configDir, enrollDir, edbPath, manifestPath string, galleryType model.GalleryType) model.ReturnStatus {
	call := e.next("FinalizeEnrollment")
	if e.FinalizeFunc != nil {
		return e.FinalizeFunc(call, configDir, enrollDir, edbPath, manifestPath, galleryType)
	}
	return model.OK()
}

func (e *Engine) InitializeSearch(context.Context, string, string) model.ReturnStatus {
	e.next("InitializeSearch")
	return e.InitSearchStatus
}

func (e *Engine) Search(_ context.Context, tmpl model.Template, k int) ([]model.Candidate, model.ReturnStatus) {
	call := e.next("Search")
	if e.SearchFunc != nil {
		return e.SearchFunc(call, tmpl, k)
	}
	return NewRNG(int64(call)).CandidateList(k, k), model.OK()
}

// MultiEngine adds the MultiTemplateCreator capability to Engine.
type MultiEngine struct {
	*Engine
	MultiFunc func(call int, media model.Media, role model.TemplateRole) ([]model.Template, []model.Geometry, model.ReturnStatus)
}

var _ engine.MultiTemplateCreator = (*MultiEngine)(nil)

// NewMultiEngine returns a MultiEngine that creates one template per call.
func NewMultiEngine() *MultiEngine {
	return &MultiEngine{Engine: NewEngine()}
}

func (e *MultiEngine) CreateSearchTemplates(_ context.Context, media model.Media, role model.TemplateRole) ([]model.Template, []model.Geometry, model.ReturnStatus) {
	call := e.next("CreateSearchTemplates")
	if e.MultiFunc != nil {
		return e.MultiFunc(call, media, role)
	}
	return []model.Template{model.Template("multi-" + strconv.Itoa(call))}, nil, model.OK()
}
