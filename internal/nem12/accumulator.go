package nem12

import (
	"time"

	"github.com/milad/simplenem12/internal/domain"
)

// accumulator owns every meter read built during one parse. The state machine
// refers to the read under construction by index only.
type accumulator struct {
	reads []domain.MeterRead
}

// add appends a new meter read and returns its index.
func (a *accumulator) add(nmi string, unit domain.EnergyUnit) int {
	a.reads = append(a.reads, domain.NewMeterRead(nmi, unit))
	return len(a.reads) - 1
}

func (a *accumulator) has(idx int) bool {
	return idx >= 0 && idx < len(a.reads)
}

func (a *accumulator) appendVolume(idx int, date time.Time, v domain.IntervalVolume) error {
	if !a.has(idx) {
		return ErrNoMeterRead
	}
	a.reads[idx].AppendVolume(date, v)
	return nil
}

func (a *accumulator) result() []domain.MeterRead {
	if a.reads == nil {
		return []domain.MeterRead{}
	}
	return a.reads
}
