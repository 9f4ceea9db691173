package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/milad/simplenem12/internal/domain"
	"github.com/milad/simplenem12/internal/nem12"
	"github.com/milad/simplenem12/internal/repo"
)

var ErrInvalidDateRange = errors.New("invalid date range")
var ErrInvalidPagination = errors.New("invalid pagination")
var ErrInvalidNMI = errors.New("invalid nmi")

const (
	MaxPageSize = 1_000
	nmiLength   = 10
)

type ListMeterReadsPageResult struct {
	MeterReads    []domain.MeterRead
	NextPageToken string
}

type MeterReadService struct {
	repo repo.MeterReadRepository
	log  *slog.Logger
}

type Option func(*MeterReadService)

// WithLogger sets the logger used for parse outcomes. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *MeterReadService) {
		if l != nil {
			s.log = l
		}
	}
}

func NewMeterReadService(r repo.MeterReadRepository, opts ...Option) *MeterReadService {
	s := &MeterReadService{repo: r, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *MeterReadService) ListMeterReads(ctx context.Context, f repo.Filter) ([]domain.MeterRead, error) {
	res, err := s.ListMeterReadsPage(ctx, f, 0, "")
	return res.MeterReads, err
}

// ListMeterReadsPage pages over meter reads in ingest order. A pageSize of 0
// returns everything.
func (s *MeterReadService) ListMeterReadsPage(
	ctx context.Context,
	f repo.Filter,
	pageSize int,
	pageToken string,
) (ListMeterReadsPageResult, error) {
	if f.NMI != "" && utf8.RuneCountInString(f.NMI) != nmiLength {
		return ListMeterReadsPageResult{}, fmt.Errorf("%w: must be %d characters", ErrInvalidNMI, nmiLength)
	}
	if f.StartInclusive != nil && f.EndExclusive != nil && !f.StartInclusive.Before(*f.EndExclusive) {
		return ListMeterReadsPageResult{}, fmt.Errorf("%w: start must be before end", ErrInvalidDateRange)
	}

	offset, err := parseOffsetToken(pageSize, pageToken)
	if err != nil {
		return ListMeterReadsPageResult{}, err
	}
	if pageSize < 0 {
		return ListMeterReadsPageResult{}, fmt.Errorf("%w: page_size must be >= 0", ErrInvalidPagination)
	}
	if pageSize > MaxPageSize {
		return ListMeterReadsPageResult{}, fmt.Errorf("%w: page_size too large (max %d)", ErrInvalidPagination, MaxPageSize)
	}

	reads, err := s.repo.List(ctx, f)
	if err != nil {
		return ListMeterReadsPageResult{}, err
	}
	if offset > len(reads) {
		return ListMeterReadsPageResult{}, fmt.Errorf("%w: page_token out of range", ErrInvalidPagination)
	}

	if pageSize == 0 {
		return ListMeterReadsPageResult{MeterReads: reads}, nil
	}

	end := min(offset+pageSize, len(reads))
	next := ""
	if end < len(reads) {
		next = strconv.Itoa(end)
	}
	return ListMeterReadsPageResult{
		MeterReads:    reads[offset:end],
		NextPageToken: next,
	}, nil
}

// ParseFile validates an uploaded SimpleNEM12 document. It returns either every
// meter read in the document or a *nem12.ParseError.
func (s *MeterReadService) ParseFile(ctx context.Context, r io.Reader) ([]domain.MeterRead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	reads, err := nem12.Parse(r)
	dur := time.Since(start)
	observeParse(reads, err, dur)

	if err != nil {
		attrs := []any{slog.Duration("duration", dur), slog.String("error", err.Error())}
		if pe, ok := nem12.AsParseError(err); ok {
			attrs = append(attrs, slog.String("kind", string(pe.Kind)), slog.Int("line", pe.Line))
		}
		s.log.WarnContext(ctx, "nem12 document rejected", attrs...)
		return nil, err
	}
	s.log.InfoContext(ctx, "nem12 document parsed",
		slog.Int("meter_reads", len(reads)),
		slog.Duration("duration", dur),
	)
	return reads, nil
}

func parseOffsetToken(pageSize int, pageToken string) (int, error) {
	if pageToken == "" {
		return 0, nil
	}
	if pageSize <= 0 {
		return 0, fmt.Errorf("%w: page_token requires page_size", ErrInvalidPagination)
	}
	n, err := strconv.Atoi(pageToken)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid page_token", ErrInvalidPagination)
	}
	return n, nil
}
