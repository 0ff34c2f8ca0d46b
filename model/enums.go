package model

import "fmt"

// Modality selects the record format, the enrollment log layout and the
// geometry the engine reports.
type Modality int

const (
	ModalityFace Modality = iota + 1
	ModalityIris
	// ModalityMM is combined face and iris.
	ModalityMM
	// ModalityFive is multi-media (stills and video) person matching.
	ModalityFive
)

// ParseModality parses a modality name.
func ParseModality(s string) (Modality, error) {
	switch s {
	case "face":
		return ModalityFace, nil
	case "iris":
		return ModalityIris, nil
	case "mm":
		return ModalityMM, nil
	case "five":
		return ModalityFive, nil
	default:
		return 0, fmt.Errorf("unknown modality %q", s)
	}
}

func (m Modality) String() string {
	switch m {
	case ModalityFace:
		return "face"
	case ModalityIris:
		return "iris"
	case ModalityMM:
		return "mm"
	case ModalityFive:
		return "five"
	default:
		return fmt.Sprintf("Modality(%d)", int(m))
	}
}

// PipeDelimited reports whether records use the `id|type path label ...` format.
func (m Modality) PipeDelimited() bool { return m == ModalityFive }

// SupportsMultiSearch reports whether a search record may expand into several templates.
func (m Modality) SupportsMultiSearch() bool {
	return m == ModalityFace || m == ModalityFive
}

// EnrollLogHeader returns the header line of the enrollment log.
func (m Modality) EnrollLogHeader() string {
	const base = "id image templateSizeBytes returnCode"
	switch m {
	case ModalityFace:
		return base + " isLeftEyeAssigned isRightEyeAssigned xleft yleft xright yright"
	case ModalityIris:
		return base + " limbusCenterX limbusCenterY pupilRadius limbusRadius"
	case ModalityFive:
		return base + " bbxleft bbytop bbwidth bbheight"
	default:
		return base
	}
}

// Placeholder returns the unassigned geometry for this modality.
func (m Modality) Placeholder() Geometry {
	switch m {
	case ModalityFace:
		return EyePair{}
	case ModalityIris:
		return IrisAnnulus{}
	case ModalityFive:
		return BoundingBox{}
	default:
		return NoGeometry{}
	}
}

// AcceptsLabel reports whether images of this modality may carry label l.
func (m Modality) AcceptsLabel(l ImageLabel) bool {
	face := l >= LabelFaceUnknown && l <= LabelFaceWild
	iris := l >= LabelIrisUnknown && l <= LabelIrisWild
	switch m {
	case ModalityFace:
		return face
	case ModalityIris:
		return iris
	case ModalityMM:
		return face || iris
	case ModalityFive:
		return l >= LabelUnknown && l <= LabelVideoElevatedPlatform
	default:
		return false
	}
}

// Action is the phase a harness invocation runs.
type Action int

const (
	ActionEnroll1N Action = iota + 1
	ActionFinalize1N
	ActionSearch1N
	ActionSearchMulti1N
)

// ParseAction parses an action name.
func ParseAction(s string) (Action, error) {
	switch s {
	case "enroll_1N":
		return ActionEnroll1N, nil
	case "finalize_1N":
		return ActionFinalize1N, nil
	case "search_1N":
		return ActionSearch1N, nil
	case "searchMulti_1N":
		return ActionSearchMulti1N, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

func (a Action) String() string {
	switch a {
	case ActionEnroll1N:
		return "enroll_1N"
	case ActionFinalize1N:
		return "finalize_1N"
	case ActionSearch1N:
		return "search_1N"
	case ActionSearchMulti1N:
		return "searchMulti_1N"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// IsSearch reports whether the action runs identification searches.
func (a Action) IsSearch() bool {
	return a == ActionSearch1N || a == ActionSearchMulti1N
}

// Sharded reports whether the action fans out over input shards.
func (a Action) Sharded() bool {
	return a == ActionEnroll1N || a.IsSearch()
}

// MediaType distinguishes still images from video frames.
type MediaType int

const (
	MediaImage MediaType = iota
	MediaVideo
)

// ParseMediaType parses a media type token.
func ParseMediaType(s string) (MediaType, error) {
	switch s {
	case "image":
		return MediaImage, nil
	case "video":
		return MediaVideo, nil
	default:
		return 0, fmt.Errorf("unknown media type %q", s)
	}
}

func (t MediaType) String() string {
	if t == MediaVideo {
		return "video"
	}
	return "image"
}

// DefaultFPS returns the frame rate handed to the engine for this media type.
func (t MediaType) DefaultFPS() uint8 {
	if t == MediaVideo {
		return 30
	}
	return 0
}

// ImageLabel describes the capture conditions of an image.
type ImageLabel int

const (
	LabelFaceUnknown ImageLabel = iota
	LabelFaceISO
	LabelFaceMugshot
	LabelFacePhotojournalism
	LabelFaceWild
	LabelIrisUnknown
	LabelIrisNIR
	LabelIrisWild
	LabelUnknown
	LabelStillISO
	LabelStillMugshot
	LabelStillPhotojournalism
	LabelStillWild
	LabelVideoLongRange
	LabelVideoPhotojournalism
	LabelVideoPassiveObservation
	LabelVideoChokepoint
	LabelVideoElevatedPlatform
)

var imageLabelNames = [...]string{
	LabelFaceUnknown:             "faceunknown",
	LabelFaceISO:                 "faceiso",
	LabelFaceMugshot:             "facemugshot",
	LabelFacePhotojournalism:     "facephotojournalism",
	LabelFaceWild:                "facewild",
	LabelIrisUnknown:             "irisunknown",
	LabelIrisNIR:                 "irisnir",
	LabelIrisWild:                "iriswild",
	LabelUnknown:                 "unknown",
	LabelStillISO:                "stilliso",
	LabelStillMugshot:            "stillmugshot",
	LabelStillPhotojournalism:    "stillphotojournalism",
	LabelStillWild:               "stillwild",
	LabelVideoLongRange:          "videolongrange",
	LabelVideoPhotojournalism:    "videophotojournalism",
	LabelVideoPassiveObservation: "videopassiveobservation",
	LabelVideoChokepoint:         "videochokepoint",
	LabelVideoElevatedPlatform:   "videoelevatedplatform",
}

// ParseImageLabel parses an image label token.
func ParseImageLabel(s string) (ImageLabel, error) {
	for i, name := range imageLabelNames {
		if name == s {
			return ImageLabel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown image label %q", s)
}

func (l ImageLabel) String() string {
	if l >= 0 && int(l) < len(imageLabelNames) {
		return imageLabelNames[l]
	}
	return fmt.Sprintf("ImageLabel(%d)", int(l))
}

// IrisSide labels the eye an iris image belongs to.
type IrisSide int

const (
	IrisUnspecified IrisSide = iota
	IrisRight
	IrisLeft
)
