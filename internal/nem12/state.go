package nem12

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/milad/simplenem12/internal/domain"
)

const (
	recordStart     = "100"
	recordMeterRead = "200"
	recordInterval  = "300"
	recordEnd       = "900"

	nmiLength  = 10
	dateLayout = "20060102"
)

// state is the file-level state carried from one line to the next. Transitions
// are monotonic: not started, started, ended.
type state struct {
	started bool
	ended   bool
	// line is the 1-based number of the line being processed, blank lines included.
	line int
	// current indexes the accumulator's meter read under construction; -1 before the first 200.
	current int
}

func newState() state {
	return state{current: -1}
}

// step validates one non-blank line and applies it. On error the returned state
// is unchanged and acc has not been mutated.
func (s state) step(acc *accumulator, fields []string) (state, error) {
	if s.ended {
		return s, s.fail(KindStructural, nil, "RecordType 900 must be the last line (extra data)")
	}

	switch fields[0] {
	case recordStart:
		return s.start(fields)
	case recordMeterRead:
		return s.meterRead(acc, fields)
	case recordInterval:
		return s.interval(acc, fields)
	case recordEnd:
		return s.end(fields)
	default:
		return s, s.fail(KindUnknownRecord, nil, fmt.Sprintf("unknown record type %q", fields[0]))
	}
}

func (s state) start(fields []string) (state, error) {
	if s.started {
		return s, s.fail(KindStructural, nil, "duplicate RecordType 100")
	}
	if s.line != 1 {
		return s, s.fail(KindStructural, nil, "RecordType 100 must be the first line")
	}
	if err := s.checkFields(recordStart, fields, 1); err != nil {
		return s, err
	}
	s.started = true
	return s, nil
}

func (s state) meterRead(acc *accumulator, fields []string) (state, error) {
	if err := s.checkStarted(); err != nil {
		return s, err
	}
	if err := s.checkFields(recordMeterRead, fields, 3); err != nil {
		return s, err
	}

	nmi := fields[1]
	if utf8.RuneCountInString(nmi) != nmiLength {
		return s, s.fail(KindFieldFormat, nil, fmt.Sprintf("NMI must be %d characters, got %q", nmiLength, nmi))
	}
	unit, err := domain.ParseEnergyUnit(fields[2])
	if err != nil {
		return s, s.fail(KindFieldFormat, err, fmt.Sprintf("invalid energy unit %q", fields[2]))
	}

	s.current = acc.add(nmi, unit)
	return s, nil
}

func (s state) interval(acc *accumulator, fields []string) (state, error) {
	if err := s.checkStarted(); err != nil {
		return s, err
	}
	if !acc.has(s.current) {
		return s, s.fail(KindStructural, ErrNoMeterRead, "300 record without preceding 200")
	}
	if err := s.checkFields(recordInterval, fields, 4); err != nil {
		return s, err
	}

	date, err := parseDate(fields[1])
	if err != nil {
		return s, s.fail(KindFieldFormat, err, fmt.Sprintf("invalid date %q (want YYYYMMDD)", fields[1]))
	}
	volume, err := decimal.NewFromString(fields[2])
	if err != nil {
		return s, s.fail(KindFieldFormat, err, fmt.Sprintf("invalid volume %q", fields[2]))
	}
	quality, err := domain.ParseQuality(fields[3])
	if err != nil {
		return s, s.fail(KindFieldFormat, err, fmt.Sprintf("invalid quality %q", fields[3]))
	}

	if err := acc.appendVolume(s.current, date, domain.IntervalVolume{Volume: volume, Quality: quality}); err != nil {
		return s, s.fail(KindStructural, err, "300 record without preceding 200")
	}
	return s, nil
}

func (s state) end(fields []string) (state, error) {
	if err := s.checkStarted(); err != nil {
		return s, err
	}
	if err := s.checkFields(recordEnd, fields, 1); err != nil {
		return s, err
	}
	s.ended = true
	return s, nil
}

// finish checks the state once the input is exhausted.
func (s state) finish() error {
	if !s.ended {
		return &ParseError{Kind: KindStructural, Msg: "RecordType 900 must be present as the last line"}
	}
	return nil
}

func (s state) checkStarted() error {
	if !s.started {
		return s.fail(KindStructural, nil, "RecordType 100 must be the first line")
	}
	return nil
}

func (s state) checkFields(record string, fields []string, want int) error {
	if len(fields) != want {
		return s.fail(KindFieldCount, nil, fmt.Sprintf("%s record: expected %d fields, got %d", record, want, len(fields)))
	}
	return nil
}

func (s state) fail(kind Kind, err error, msg string) *ParseError {
	return &ParseError{Kind: kind, Line: s.line, Msg: msg, Err: err}
}

// parseDate accepts exactly eight digits forming a real calendar date in year 1
// or later.
func parseDate(v string) (time.Time, error) {
	if len(v) != len(dateLayout) || strings.Trim(v, "0123456789") != "" {
		return time.Time{}, fmt.Errorf("want %d digits", len(dateLayout))
	}
	t, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if t.Year() < 1 {
		return time.Time{}, fmt.Errorf("year %04d out of range", t.Year())
	}
	return t, nil
}
