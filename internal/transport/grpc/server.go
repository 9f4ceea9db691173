package grpcserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/milad/simplenem12/internal/domain"
	"github.com/milad/simplenem12/internal/nem12"
	"github.com/milad/simplenem12/internal/repo"
	nem12v1 "github.com/milad/simplenem12/internal/rpc/nem12v1"
	"github.com/milad/simplenem12/internal/service"
)

type Server struct {
	nem12v1.UnimplementedMeterReadServiceServer
	svc *service.MeterReadService
}

func New(svc *service.MeterReadService) *Server {
	return &Server{svc: svc}
}

func (s *Server) ListMeterReads(ctx context.Context, req *nem12v1.ListMeterReadsRequest) (*nem12v1.ListMeterReadsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	start, end, err := fromWireRange(req.Start, req.End)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	f := repo.Filter{NMI: req.NMI, StartInclusive: start, EndExclusive: end}
	res, err := s.svc.ListMeterReadsPage(ctx, f, int(req.PageSize), req.PageToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) ||
			errors.Is(err, service.ErrInvalidPagination) ||
			errors.Is(err, service.ErrInvalidNMI) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &nem12v1.ListMeterReadsResponse{
		MeterReads:    toWireMeterReads(res.MeterReads),
		NextPageToken: res.NextPageToken,
	}, nil
}

func (s *Server) ParseFile(ctx context.Context, req *nem12v1.ParseFileRequest) (*nem12v1.ParseFileResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	reads, err := s.svc.ParseFile(ctx, bytes.NewReader(req.Content))
	if err != nil {
		if pe, ok := nem12.AsParseError(err); ok {
			return nil, nem12v1.RejectionError(pe.Error(), nem12v1.RejectionDetail{Kind: string(pe.Kind), Line: pe.Line})
		}
		return nil, status.FromContextError(err).Err()
	}
	return &nem12v1.ParseFileResponse{MeterReads: toWireMeterReads(reads)}, nil
}

func toWireMeterReads(reads []domain.MeterRead) []nem12v1.MeterRead {
	out := make([]nem12v1.MeterRead, 0, len(reads))
	for _, mr := range reads {
		out = append(out, toWireMeterRead(mr))
	}
	return out
}

func toWireMeterRead(mr domain.MeterRead) nem12v1.MeterRead {
	dates := mr.Dates()
	intervals := make([]nem12v1.Interval, 0, len(dates))
	for _, d := range dates {
		v := mr.Volumes[d]
		intervals = append(intervals, nem12v1.Interval{
			Date:    d.Format(domain.DateLayout),
			Volume:  v.Volume.String(),
			Quality: v.Quality.String(),
		})
	}
	return nem12v1.MeterRead{
		NMI:         mr.NMI,
		EnergyUnit:  mr.EnergyUnit.String(),
		TotalVolume: mr.TotalVolume().String(),
		Intervals:   intervals,
	}
}

func fromWireRange(start, end string) (*time.Time, *time.Time, error) {
	s, err := parseOptionalDate("start", start)
	if err != nil {
		return nil, nil, err
	}
	e, err := parseOptionalDate("end", end)
	if err != nil {
		return nil, nil, err
	}
	return s, e, nil
}

func parseOptionalDate(name, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(domain.DateLayout, v, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q (want YYYY-MM-DD)", name, v)
	}
	return &t, nil
}
