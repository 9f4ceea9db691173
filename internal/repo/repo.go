package repo

import (
	"context"
	"time"

	"github.com/milad/simplenem12/internal/domain"
)

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	// NMI selects a single metering point.
	NMI string
	// StartInclusive and EndExclusive bound the interval dates carried by each meter read.
	StartInclusive *time.Time
	EndExclusive   *time.Time
}

// MeterReadRepository provides access to parsed meter reads.
type MeterReadRepository interface {
	// List returns meter reads in the order they were ingested. Each returned
	// meter read is a copy owned by the caller.
	List(ctx context.Context, f Filter) ([]domain.MeterRead, error)
}
