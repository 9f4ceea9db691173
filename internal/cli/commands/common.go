package commands

import (
	"fmt"
	"io"

	"github.com/milad/simplenem12/internal/domain"
	"github.com/milad/simplenem12/internal/nem12"
)

const (
	ExitOK      = 0
	ExitInvalid = 1
	ExitError   = 2
)

// ExitCode is set by commands to indicate the result
var ExitCode = ExitOK

// load parses path. An invalid document is reported on stderr and sets
// ExitInvalid; the returned error is reserved for I/O failures.
func load(path string, stderr io.Writer) ([]domain.MeterRead, bool, error) {
	reads, err := nem12.ParseFile(path)
	if err == nil {
		return reads, true, nil
	}
	pe, ok := nem12.AsParseError(err)
	if !ok || pe.Kind == nem12.KindResource {
		return nil, false, err
	}
	if pe.Line > 0 {
		_, _ = fmt.Fprintf(stderr, "%s: invalid [%s] at line %d: %s\n", path, pe.Kind, pe.Line, pe.Msg)
	} else {
		_, _ = fmt.Fprintf(stderr, "%s: invalid [%s]: %s\n", path, pe.Kind, pe.Msg)
	}
	ExitCode = ExitInvalid
	return nil, false, nil
}
