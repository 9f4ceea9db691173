package nem12

import (
	"errors"
	"fmt"
)

// Kind classifies a parse failure so callers can tell a bad file from a bad field.
type Kind string

const (
	KindStructural    Kind = "structural"
	KindFieldCount    Kind = "field_count"
	KindFieldFormat   Kind = "field_format"
	KindUnknownRecord Kind = "unknown_record"
	KindResource      Kind = "resource"
)

// Sentinels matched by errors.Is against a *ParseError of the same kind.
var (
	ErrStructural    = errors.New("structural error")
	ErrFieldCount    = errors.New("field count error")
	ErrFieldFormat   = errors.New("field format error")
	ErrUnknownRecord = errors.New("unknown record type")
	ErrResource      = errors.New("resource error")
)

// ErrNoMeterRead is returned when an interval volume has no meter read to attach to.
var ErrNoMeterRead = errors.New("no active meter read")

// ParseError describes the first violation found in a SimpleNEM12 document.
type ParseError struct {
	Kind Kind
	// Line is 1-based; 0 when the failure is not tied to a line.
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindStructural:
		return ErrStructural
	case KindFieldCount:
		return ErrFieldCount
	case KindFieldFormat:
		return ErrFieldFormat
	case KindUnknownRecord:
		return ErrUnknownRecord
	case KindResource:
		return ErrResource
	default:
		return nil
	}
}

// AsParseError is a shorthand for errors.As with *ParseError.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
