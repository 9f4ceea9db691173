package nem12repo

import (
	"context"
	"fmt"

	"github.com/milad/simplenem12/internal/domain"
	"github.com/milad/simplenem12/internal/nem12"
	"github.com/milad/simplenem12/internal/repo"
)

var _ repo.MeterReadRepository = (*Repo)(nil)

// Repo is an in-memory repository backed by a SimpleNEM12 file loaded at startup.
type Repo struct {
	reads []domain.MeterRead // file order
}

// NewFromFile parses path. A file that fails to parse yields no repository.
func NewFromFile(path string) (*Repo, error) {
	reads, err := nem12.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("load nem12 %q: %w", path, err)
	}
	return &Repo{reads: reads}, nil
}

func New(reads []domain.MeterRead) *Repo {
	cp := make([]domain.MeterRead, 0, len(reads))
	for _, mr := range reads {
		cp = append(cp, mr.Clone())
	}
	return &Repo{reads: cp}
}

func (r *Repo) List(ctx context.Context, f repo.Filter) ([]domain.MeterRead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.MeterRead, 0, len(r.reads))
	for _, mr := range r.reads {
		if f.NMI != "" && mr.NMI != f.NMI {
			continue
		}
		out = append(out, mr.Between(f.StartInclusive, f.EndExclusive))
	}
	return out, nil
}

// Len reports how many meter reads were loaded.
func (r *Repo) Len() int { return len(r.reads) }
