package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout used when a date is rendered outside the SimpleNEM12
// wire format (JSON, exports).
const DateLayout = "2006-01-02"

// IntervalVolume is one dated measurement of consumption or generation.
type IntervalVolume struct {
	Volume  decimal.Decimal
	Quality Quality
}

// MeterRead holds the interval volumes recorded for one metering point.
//
// Volumes is keyed by UTC midnight of the interval date. Dates need not be
// contiguous; a later entry for the same date replaces the earlier one.
type MeterRead struct {
	NMI        string
	EnergyUnit EnergyUnit
	Volumes    map[time.Time]IntervalVolume
}

func NewMeterRead(nmi string, unit EnergyUnit) MeterRead {
	return MeterRead{
		NMI:        nmi,
		EnergyUnit: unit,
		Volumes:    make(map[time.Time]IntervalVolume),
	}
}

// AppendVolume sets the volume for date, replacing any existing entry.
func (m *MeterRead) AppendVolume(date time.Time, v IntervalVolume) {
	if m.Volumes == nil {
		m.Volumes = make(map[time.Time]IntervalVolume)
	}
	m.Volumes[date] = v
}

// Dates returns the interval dates in ascending order.
func (m MeterRead) Dates() []time.Time {
	out := make([]time.Time, 0, len(m.Volumes))
	for d := range m.Volumes {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// TotalVolume sums every interval volume regardless of quality.
func (m MeterRead) TotalVolume() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m.Volumes {
		total = total.Add(v.Volume)
	}
	return total
}

// StartDate returns the earliest interval date, or false when there are none.
func (m MeterRead) StartDate() (time.Time, bool) {
	dates := m.Dates()
	if len(dates) == 0 {
		return time.Time{}, false
	}
	return dates[0], true
}

// EndDate returns the latest interval date, or false when there are none.
func (m MeterRead) EndDate() (time.Time, bool) {
	dates := m.Dates()
	if len(dates) == 0 {
		return time.Time{}, false
	}
	return dates[len(dates)-1], true
}

// Clone returns a copy that shares no map storage with m.
func (m MeterRead) Clone() MeterRead {
	cp := NewMeterRead(m.NMI, m.EnergyUnit)
	for d, v := range m.Volumes {
		cp.Volumes[d] = v
	}
	return cp
}

// Between returns a copy carrying only the volumes in [startInclusive, endExclusive).
// A nil bound is open.
func (m MeterRead) Between(startInclusive, endExclusive *time.Time) MeterRead {
	cp := NewMeterRead(m.NMI, m.EnergyUnit)
	for d, v := range m.Volumes {
		if startInclusive != nil && d.Before(*startInclusive) {
			continue
		}
		if endExclusive != nil && !d.Before(*endExclusive) {
			continue
		}
		cp.Volumes[d] = v
	}
	return cp
}
