// Package nem12 parses SimpleNEM12, a restricted line-oriented variant of the
// NEM12 metering data format:
//
//	100
//	200,<NMI>,<ENERGY_UNIT>
//	300,<YYYYMMDD>,<VOLUME>,<QUALITY>
//	900
//
// Parsing is all or nothing: the first violation aborts and no meter reads are returned.
package nem12

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/milad/simplenem12/internal/domain"
)

const (
	// Delimiter separates fields. There is no quoting or escaping.
	Delimiter = ","

	maxLineBytes = 1 << 20
)

// Parse reads a SimpleNEM12 document and returns its meter reads in the order
// their 200 records appear. Meter reads without any 300 record are included.
//
// Any failure is returned as a *ParseError and the result is nil.
func Parse(r io.Reader) ([]domain.MeterRead, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		st  = newState()
		acc = &accumulator{}
		err error
	)
	for sc.Scan() {
		st.line++
		fields, ok := splitLine(sc.Text())
		if !ok {
			continue
		}
		if st, err = st.step(acc, fields); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Kind: KindResource, Msg: fmt.Sprintf("read input: %v", err), Err: err}
	}
	if err := st.finish(); err != nil {
		return nil, err
	}
	return acc.result(), nil
}

// ParseFile opens path and parses it. The file is closed on every return path.
func ParseFile(path string) ([]domain.MeterRead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Kind: KindResource, Msg: fmt.Sprintf("open %q: %v", path, err), Err: err}
	}
	defer f.Close()

	return Parse(f)
}

// splitLine trims a raw line and splits it into trimmed fields. Trailing empty
// fields are dropped ("900," is one field); inner empty fields are kept. It
// reports false for a blank line.
func splitLine(raw string) ([]string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return nil, false
	}
	fields := strings.Split(line, Delimiter)
	n := len(fields)
	for n > 1 && fields[n-1] == "" {
		n--
	}
	fields = fields[:n]
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, true
}
