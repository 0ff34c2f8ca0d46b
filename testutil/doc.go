// Package testutil provides fixtures for harness tests.
//
// This package is intended for use in tests only. It writes input files and
// images, generates random templates and candidate lists, and provides a
// scripted template engine whose behavior is set per test.
//
// # Fixtures
//
//	img := testutil.WritePGM(t, dir, "a.pgm")
//	in := testutil.WriteLines(t, dir, "input.txt", "s1 "+img+" faceiso")
//
// # Scripted Engine
//
//	e := testutil.NewEngine()
//	e.CreateFunc = func(call int, _ []model.Media, _ model.TemplateRole) (model.Template, []model.Geometry, model.ReturnStatus) {
//	    if call == 2 {
//	        return nil, nil, model.StatusOf(model.NotImplemented, "")
//	    }
//	    return model.Template("t"), nil, model.OK()
//	}
package testutil
