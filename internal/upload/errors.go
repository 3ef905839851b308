package upload

import (
	"errors"
	"fmt"
)

// Kind classifies why an upload attempt did not succeed.
type Kind int

const (
	KindUnsupportedFileType Kind = iota + 1
	KindTransportFailure
	KindTimeout
	KindMalformedResponse
	// KindMalformedStatisticsHeader is never surfaced as a failed attempt;
	// it is only logged when the X-Statistics header cannot be parsed.
	KindMalformedStatisticsHeader
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedFileType:
		return "unsupported_file_type"
	case KindTransportFailure:
		return "transport_failure"
	case KindTimeout:
		return "timeout"
	case KindMalformedResponse:
		return "malformed_response"
	case KindMalformedStatisticsHeader:
		return "malformed_statistics_header"
	default:
		return "unknown"
	}
}

// User-visible messages.
const (
	MsgUnsupported   = "Unsupported file type. Please select a .csv, .xlsx or .xls file."
	MsgUploadFailed  = "Upload failed"
	MsgNoFileURL     = "No file URL returned"
	MsgNoFile        = "No file returned"
	msgTimeoutFormat = "Upload timed out after %s"
)

// Error is the typed failure recorded in State.Err.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err carries an upload Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Kind == k
}
