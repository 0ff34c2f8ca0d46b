package model

import "fmt"

// ReturnCode is the numeric status an engine reports for one operation.
type ReturnCode int

const (
	Success                ReturnCode = 0
	UnknownError           ReturnCode = 1
	ConfigError            ReturnCode = 2
	RefuseInput            ReturnCode = 3
	ExtractError           ReturnCode = 4
	ParseError             ReturnCode = 5
	TemplateCreationError  ReturnCode = 6
	VerifTemplateError     ReturnCode = 7
	FaceDetectionError     ReturnCode = 8
	NumDataError           ReturnCode = 9
	TemplateFormatError    ReturnCode = 10
	EnrollDirError         ReturnCode = 11
	InputLocationError     ReturnCode = 12
	MemoryError            ReturnCode = 13
	MatchError             ReturnCode = 14
	QualityAssessmentError ReturnCode = 15
	// NotImplemented means the engine declines the whole operation.
	NotImplemented ReturnCode = 16
	VendorError    ReturnCode = 17
)

// String returns the human readable description of the code.
func (c ReturnCode) String() string {
	switch c {
	case Success:
		return "Success"
	case UnknownError:
		return "Unknown Error"
	case ConfigError:
		return "Error reading configuration files"
	case RefuseInput:
		return "Elective refusal to process the input"
	case ExtractError:
		return "Involuntary failure to process the image"
	case ParseError:
		return "Cannot parse the input data"
	case TemplateCreationError:
		return "Elective refusal to produce a template"
	case VerifTemplateError:
		return "Either or both of the input templates were result of failed feature extraction"
	case FaceDetectionError:
		return "Unable to detect a face in the image"
	case NumDataError:
		return "Number of input images not supported"
	case TemplateFormatError:
		return "Template file is an incorrect format or defective"
	case EnrollDirError:
		return "An operation on the enrollment directory failed"
	case InputLocationError:
		return "Cannot locate the input data - the input files or names seem incorrect"
	case MemoryError:
		return "Memory allocation failed (e.g. out of memory)"
	case MatchError:
		return "Error occurred during the 1:1 match operation"
	case QualityAssessmentError:
		return "Failure to generate a quality score on the input image"
	case NotImplemented:
		return "Function is not implemented"
	case VendorError:
		return "Vendor-defined error"
	default:
		return "Undefined error"
	}
}

// ReturnStatus is the outcome of one engine call.
type ReturnStatus struct {
	Code ReturnCode
	// Info is optional engine-provided detail.
	Info string
}

// OK returns a successful status.
func OK() ReturnStatus { return ReturnStatus{Code: Success} }

// StatusOf builds a status with the given code and info.
func StatusOf(code ReturnCode, info string) ReturnStatus {
	return ReturnStatus{Code: code, Info: info}
}

// IsSuccess reports whether the status carries the Success code.
func (s ReturnStatus) IsSuccess() bool { return s.Code == Success }

// IsNotImplemented reports whether the engine declined the operation.
func (s ReturnStatus) IsNotImplemented() bool { return s.Code == NotImplemented }

func (s ReturnStatus) String() string {
	if s.Info == "" {
		return fmt.Sprintf("%d (%s)", int(s.Code), s.Code)
	}
	return fmt.Sprintf("%d (%s): %s", int(s.Code), s.Code, s.Info)
}

// TemplateRole tells the engine what a template will be used for.
type TemplateRole int

const (
	RoleEnrollment11 TemplateRole = iota
	RoleVerification11
	RoleEnrollment1N
	RoleSearch1N
)

func (r TemplateRole) String() string {
	switch r {
	case RoleEnrollment11:
		return "Enrollment_11"
	case RoleVerification11:
		return "Verification_11"
	case RoleEnrollment1N:
		return "Enrollment_1N"
	case RoleSearch1N:
		return "Search_1N"
	default:
		return fmt.Sprintf("TemplateRole(%d)", int(r))
	}
}

// GalleryType describes the composition of a finalized gallery.
type GalleryType int

const (
	// GalleryConsolidated holds at most one template per subject.
	GalleryConsolidated GalleryType = iota
	// GalleryUnconsolidated may hold several templates per subject.
	GalleryUnconsolidated
)

func (g GalleryType) String() string {
	switch g {
	case GalleryConsolidated:
		return "consolidated"
	case GalleryUnconsolidated:
		return "unconsolidated"
	default:
		return fmt.Sprintf("GalleryType(%d)", int(g))
	}
}

// ParseGalleryType parses a gallery type name.
func ParseGalleryType(s string) (GalleryType, error) {
	switch s {
	case "consolidated":
		return GalleryConsolidated, nil
	case "unconsolidated", "":
		return GalleryUnconsolidated, nil
	default:
		return 0, fmt.Errorf("unknown gallery type %q", s)
	}
}

// ShardStatus is the terminal status of one worker.
type ShardStatus int

const (
	StatusSuccess ShardStatus = iota
	StatusNotImplemented
	StatusFailure
)

// Process exit codes for shard statuses.
const (
	ExitSuccess        = 0
	ExitFailure        = 1
	ExitNotImplemented = 2
)

func (s ShardStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNotImplemented:
		return "not-implemented"
	case StatusFailure:
		return "failure"
	default:
		return fmt.Sprintf("ShardStatus(%d)", int(s))
	}
}

// ExitCode maps the status to a process exit code.
func (s ShardStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return ExitSuccess
	case StatusNotImplemented:
		return ExitNotImplemented
	default:
		return ExitFailure
	}
}

// StatusFromExitCode maps a worker exit code back to a status.
// Unknown codes are failures.
func StatusFromExitCode(code int) ShardStatus {
	switch code {
	case ExitSuccess:
		return StatusSuccess
	case ExitNotImplemented:
		return StatusNotImplemented
	default:
		return StatusFailure
	}
}

// Worst returns the more severe of two statuses.
// Failure outranks NotImplemented, which outranks Success.
func Worst(a, b ShardStatus) ShardStatus {
	if b > a {
		return b
	}
	return a
}

// ShardResult is the aggregated outcome of one worker.
type ShardResult struct {
	Shard  int
	Status ShardStatus
	Err    error
}
