package httpserver

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/milad/simplenem12/internal/domain"
	nem12v1 "github.com/milad/simplenem12/internal/rpc/nem12v1"
)

// MeterReadClient is the small subset of the gRPC client we need, to keep tests simple.
type MeterReadClient interface {
	ListMeterReads(ctx context.Context, in *nem12v1.ListMeterReadsRequest, opts ...grpc.CallOption) (*nem12v1.ListMeterReadsResponse, error)
	ParseFile(ctx context.Context, in *nem12v1.ParseFileRequest, opts ...grpc.CallOption) (*nem12v1.ParseFileResponse, error)
}

func parseOptionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(domain.DateLayout, v, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
