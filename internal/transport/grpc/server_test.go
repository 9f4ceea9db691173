package grpcserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/milad/simplenem12/internal/domain"
	"github.com/milad/simplenem12/internal/repo/nem12repo"
	nem12v1 "github.com/milad/simplenem12/internal/rpc/nem12v1"
	"github.com/milad/simplenem12/internal/service"
)

func testReads() []domain.MeterRead {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := domain.NewMeterRead("BBBBBBBBBB", domain.EnergyUnitKWH)
	a.AppendVolume(base.AddDate(0, 0, 2), domain.IntervalVolume{Volume: decimal.RequireFromString("3"), Quality: domain.QualityActual})
	a.AppendVolume(base, domain.IntervalVolume{Volume: decimal.RequireFromString("1"), Quality: domain.QualityActual})
	a.AppendVolume(base.AddDate(0, 0, 1), domain.IntervalVolume{Volume: decimal.RequireFromString("2.5"), Quality: domain.QualityEstimated})

	b := domain.NewMeterRead("AAAAAAAAAA", domain.EnergyUnitKWH)
	return []domain.MeterRead{a, b}
}

func newClient(t *testing.T, reads []domain.MeterRead) nem12v1.MeterReadServiceClient {
	t.Helper()

	svc := service.NewMeterReadService(nem12repo.New(reads))
	srv := New(svc)

	const bufSize = 1024 * 1024
	lis := bufconn.Listen(bufSize)

	g := grpc.NewServer(nem12v1.ServerOptions()...)
	nem12v1.RegisterMeterReadServiceServer(g, srv)
	go func() { _ = g.Serve(lis) }()
	t.Cleanup(g.Stop)

	opts := append([]grpc.DialOption{
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, nem12v1.DialOptions()...)
	conn, err := grpc.NewClient("passthrough:///bufnet", opts...)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return nem12v1.NewMeterReadServiceClient(conn)
}

func TestServer_ListMeterReads_PreservesIngestOrderAndSortsIntervals(t *testing.T) {
	t.Parallel()

	client := newClient(t, testReads())

	resp, err := client.ListMeterReads(context.Background(), &nem12v1.ListMeterReadsRequest{})
	if err != nil {
		t.Fatalf("ListMeterReads: %v", err)
	}
	if got, want := len(resp.MeterReads), 2; got != want {
		t.Fatalf("len(meter reads)=%d want %d", got, want)
	}
	if got, want := resp.MeterReads[0].NMI, "BBBBBBBBBB"; got != want {
		t.Fatalf("first NMI=%q want %q", got, want)
	}
	ivs := resp.MeterReads[0].Intervals
	if len(ivs) != 3 || ivs[0].Date != "2024-01-01" || ivs[1].Date != "2024-01-02" || ivs[2].Date != "2024-01-03" {
		t.Fatalf("expected ascending interval dates, got %#v", ivs)
	}
	if got, want := resp.MeterReads[0].TotalVolume, "6.5"; got != want {
		t.Fatalf("total volume=%q want %q", got, want)
	}
	if got := len(resp.MeterReads[1].Intervals); got != 0 {
		t.Fatalf("second meter read intervals=%d want 0", got)
	}
}

func TestServer_ListMeterReads_FiltersRange(t *testing.T) {
	t.Parallel()

	client := newClient(t, testReads())

	resp, err := client.ListMeterReads(context.Background(), &nem12v1.ListMeterReadsRequest{
		NMI:   "BBBBBBBBBB",
		Start: "2024-01-02",
		End:   "2024-01-03",
	})
	if err != nil {
		t.Fatalf("ListMeterReads: %v", err)
	}
	if got, want := len(resp.MeterReads), 1; got != want {
		t.Fatalf("len(meter reads)=%d want %d", got, want)
	}
	ivs := resp.MeterReads[0].Intervals
	if len(ivs) != 1 || ivs[0].Volume != "2.5" || ivs[0].Quality != "E" {
		t.Fatalf("unexpected intervals: %#v", ivs)
	}
}

func TestServer_ListMeterReads_InvalidArguments(t *testing.T) {
	t.Parallel()

	client := newClient(t, testReads())

	for _, req := range []*nem12v1.ListMeterReadsRequest{
		{Start: "01/01/2024"},
		{Start: "2024-01-02", End: "2024-01-01"},
		{NMI: "short"},
		{PageToken: "1"},
	} {
		_, err := client.ListMeterReads(context.Background(), req)
		if got, want := status.Code(err), codes.InvalidArgument; got != want {
			t.Fatalf("request %+v: code=%s want %s", req, got, want)
		}
	}
}

func TestServer_ParseFile(t *testing.T) {
	t.Parallel()

	client := newClient(t, nil)

	resp, err := client.ParseFile(context.Background(), &nem12v1.ParseFileRequest{
		Content: []byte("100\n200,ABCDEFGHIJ,KWH\n300,20240101,12.5,A\n900\n"),
	})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(resp.MeterReads) != 1 || resp.MeterReads[0].Intervals[0].Volume != "12.5" {
		t.Fatalf("unexpected response: %#v", resp.MeterReads)
	}
}

func TestServer_ParseFile_RejectionCarriesKindAndLine(t *testing.T) {
	t.Parallel()

	client := newClient(t, nil)

	_, err := client.ParseFile(context.Background(), &nem12v1.ParseFileRequest{
		Content: []byte("100\n200,ABCDEFGHIJ,KWH\n900\n200,KLMNOPQRST,KWH\n"),
	})
	if got, want := status.Code(err), codes.InvalidArgument; got != want {
		t.Fatalf("code=%s want %s", got, want)
	}
	d, ok := nem12v1.RejectionFromError(err)
	if !ok {
		t.Fatalf("expected rejection detail on %v", err)
	}
	if d.Kind != "structural" || d.Line != 4 {
		t.Fatalf("detail=%+v want structural at line 4", d)
	}
}
