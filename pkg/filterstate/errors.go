package filterstate

import (
	"errors"
	"fmt"
)

// ErrMalformedQuery matches every ParseError.
var ErrMalformedQuery = errors.New("filterstate: malformed query")

// ParseErrorKind classifies a query segment that could not be decoded cleanly.
type ParseErrorKind uint8

const (
	MissingSeparator ParseErrorKind = iota + 1 // Segment without '='
	EmptyKey                                   // Segment starting with '='
	BadEscape                                  // Invalid percent-encoding
	BadFiltersJSON                             // filters parameter is not {"filters":[{...}]}
)

// String returns the kind name.
func (k ParseErrorKind) String() string {
	switch k {
	case MissingSeparator:
		return "missing separator"
	case EmptyKey:
		return "empty key"
	case BadEscape:
		return "bad escape"
	case BadFiltersJSON:
		return "bad filters json"
	default:
		return "unknown"
	}
}

// ParseError reports one query segment that was skipped or kept verbatim.
type ParseError struct {
	Kind    ParseErrorKind
	Segment string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("filterstate: %s in %q: %v", e.Kind, e.Segment, e.Err)
	}
	return fmt.Sprintf("filterstate: %s in %q", e.Kind, e.Segment)
}

// Unwrap exposes both ErrMalformedQuery and the underlying cause.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedQuery}
	}
	return []error{ErrMalformedQuery, e.Err}
}
