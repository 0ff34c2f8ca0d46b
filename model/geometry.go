package model

import "strconv"

// Geometry is per-image auxiliary output reported by the engine.
// The zero value of every implementation is the unassigned placeholder.
type Geometry interface {
	// Fields returns the log columns for this geometry.
	Fields() []string
}

// EyePair holds the eye coordinates of a face image.
type EyePair struct {
	IsLeftAssigned  bool
	IsRightAssigned bool
	XLeft           uint16
	YLeft           uint16
	XRight          uint16
	YRight          uint16
}

func (e EyePair) Fields() []string {
	return []string{
		boolField(e.IsLeftAssigned),
		boolField(e.IsRightAssigned),
		uintField(e.XLeft),
		uintField(e.YLeft),
		uintField(e.XRight),
		uintField(e.YRight),
	}
}

// IrisAnnulus holds the limbus and pupil circles of an iris image.
type IrisAnnulus struct {
	LimbusCenterX uint16
	LimbusCenterY uint16
	PupilRadius   uint16
	LimbusRadius  uint16
}

func (a IrisAnnulus) Fields() []string {
	return []string{
		uintField(a.LimbusCenterX),
		uintField(a.LimbusCenterY),
		uintField(a.PupilRadius),
		uintField(a.LimbusRadius),
	}
}

// BoundingBox is a detected region in a multi-media frame.
type BoundingBox struct {
	XLeft  int16
	YTop   int16
	Width  uint16
	Height uint16
}

func (b BoundingBox) Fields() []string {
	return []string{
		strconv.Itoa(int(b.XLeft)),
		strconv.Itoa(int(b.YTop)),
		uintField(b.Width),
		uintField(b.Height),
	}
}

// NoGeometry is used by modalities without geometry columns.
type NoGeometry struct{}

func (NoGeometry) Fields() []string { return nil }

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func uintField(v uint16) string { return strconv.FormatUint(uint64(v), 10) }
