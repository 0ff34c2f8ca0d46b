package engine

import (
	"context"

	"github.com/hupe1980/gallerybench/model"
)

// TemplateEngine is the capability set the harness drives.
//
// Returned templates and candidate slices are owned by the caller once
// returned; the harness copies templates before storing them.
type TemplateEngine interface {
	// InitializeTemplateCreation is called once per worker before any
	// CreateTemplate call.
	InitializeTemplateCreation(ctx context.Context, configDir string, role model.TemplateRole) model.ReturnStatus

	// CreateTemplate builds one template from all media of a record.
	// geometry holds one entry per image in input order, or may be empty.
	CreateTemplate(ctx context.Context, media []model.Media, role model.TemplateRole) (tmpl model.Template, geometry []model.Geometry, status model.ReturnStatus)

	// FinalizeEnrollment freezes the gallery. It is called once, after all
	// enrollment workers exited.
	FinalizeEnrollment(ctx context.Context, configDir, enrollDir, edbPath, manifestPath string, galleryType model.GalleryType) model.ReturnStatus

	// InitializeSearch loads the finalized gallery from enrollDir.
	InitializeSearch(ctx context.Context, configDir, enrollDir string) model.ReturnStatus

	// Search returns up to k ranked candidates for a search template.
	Search(ctx context.Context, tmpl model.Template, k int) ([]model.Candidate, model.ReturnStatus)
}

// MultiTemplateCreator is implemented by engines that can detect several
// subjects in one piece of search media.
type MultiTemplateCreator interface {
	// CreateSearchTemplates returns one template per detected subject.
	CreateSearchTemplates(ctx context.Context, media model.Media, role model.TemplateRole) ([]model.Template, []model.Geometry, model.ReturnStatus)
}

// AsMultiTemplateCreator returns e as a MultiTemplateCreator if it supports it.
func AsMultiTemplateCreator(e TemplateEngine) (MultiTemplateCreator, bool) {
	m, ok := e.(MultiTemplateCreator)
	return m, ok
}

// Unimplemented declines every operation with model.NotImplemented.
// Embed it to implement only part of TemplateEngine.
type Unimplemented struct{}

var _ TemplateEngine = Unimplemented{}

func (Unimplemented) InitializeTemplateCreation(context.Context, string, model.TemplateRole) model.ReturnStatus {
	return model.StatusOf(model.NotImplemented, "")
}

func (Unimplemented) CreateTemplate(context.Context, []model.Media, model.TemplateRole) (model.Template, []model.Geometry, model.ReturnStatus) {
	return nil, nil, model.StatusOf(model.NotImplemented, "")
}

func (Unimplemented) FinalizeEnrollment(context.Context, string, string, string, string, model.GalleryType) model.ReturnStatus {
	return model.StatusOf(model.NotImplemented, "")
}

func (Unimplemented) InitializeSearch(context.Context, string, string) model.ReturnStatus {
	return model.StatusOf(model.NotImplemented, "")
}

func (Unimplemented) Search(context.Context, model.Template, int) ([]model.Candidate, model.ReturnStatus) {
	return nil, model.StatusOf(model.NotImplemented, "")
}
