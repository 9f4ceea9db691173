package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	nem12v1 "github.com/milad/simplenem12/internal/rpc/nem12v1"
)

type fakeClient struct {
	listResp  *nem12v1.ListMeterReadsResponse
	parseResp *nem12v1.ParseFileResponse
	err       error

	listReq  *nem12v1.ListMeterReadsRequest
	parseReq *nem12v1.ParseFileRequest
}

func (f *fakeClient) ListMeterReads(_ context.Context, in *nem12v1.ListMeterReadsRequest, _ ...grpc.CallOption) (*nem12v1.ListMeterReadsResponse, error) {
	f.listReq = in
	return f.listResp, f.err
}

func (f *fakeClient) ParseFile(_ context.Context, in *nem12v1.ParseFileRequest, _ ...grpc.CallOption) (*nem12v1.ParseFileResponse, error) {
	f.parseReq = in
	return f.parseResp, f.err
}

func serve(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	srv.ServeHTTP(rr, req)
	return rr
}

func TestHTTP_ListMeterReads_OK(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{
		listResp: &nem12v1.ListMeterReadsResponse{
			MeterReads: []nem12v1.MeterRead{{
				NMI:         "ABCDEFGHIJ",
				EnergyUnit:  "KWH",
				TotalVolume: "12.5",
				Intervals:   []nem12v1.Interval{{Date: "2024-01-01", Volume: "12.50", Quality: "A"}},
			}},
			NextPageToken: "1",
		},
	}
	srv := New(fc)

	rr := serve(srv, http.MethodGet, "/api/meter-reads?nmi=ABCDEFGHIJ&start=2024-01-01&end=2024-02-01&page_size=1", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	var got listMeterReadsResponseJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.MeterReads, 1)
	assert.Equal(t, "ABCDEFGHIJ", got.MeterReads[0].NMI)
	assert.Equal(t, json.Number("12.5"), got.MeterReads[0].Intervals[0].Volume)
	assert.Equal(t, "1", got.NextPageToken)

	assert.Equal(t, &nem12v1.ListMeterReadsRequest{
		NMI: "ABCDEFGHIJ", Start: "2024-01-01", End: "2024-02-01", PageSize: 1,
	}, fc.listReq)
	assert.Contains(t, rr.Body.String(), `"volume":12.5`, "volumes are JSON numbers")
}

func TestHTTP_ListMeterReads_BadRequests(t *testing.T) {
	t.Parallel()

	for _, target := range []string{
		"/api/meter-reads?start=not-a-date",
		"/api/meter-reads?end=2024-13-01",
		"/api/meter-reads?start=2024-01-02&end=2024-01-01",
		"/api/meter-reads?page_size=abc",
		"/api/meter-reads?page_size=-1",
		"/api/meter-reads?page_token=10",
	} {
		rr := serve(New(&fakeClient{}), http.MethodGet, target, "")
		assert.Equalf(t, http.StatusBadRequest, rr.Code, "target %s", target)
	}
}

func TestHTTP_ListMeterReads_UpstreamErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{status.Error(codes.InvalidArgument, "bad nmi"), http.StatusBadRequest},
		{status.Error(codes.DeadlineExceeded, "slow"), http.StatusGatewayTimeout},
		{status.Error(codes.Unavailable, "nope"), http.StatusBadGateway},
	}
	for _, tc := range tests {
		rr := serve(New(&fakeClient{err: tc.err}), http.MethodGet, "/api/meter-reads", "")
		assert.Equal(t, tc.want, rr.Code)
	}
}

func TestHTTP_ListMeterReads_RejectsBadUpstreamVolume(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{listResp: &nem12v1.ListMeterReadsResponse{
		MeterReads: []nem12v1.MeterRead{{NMI: "ABCDEFGHIJ", TotalVolume: "lots"}},
	}}
	rr := serve(New(fc), http.MethodGet, "/api/meter-reads", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestHTTP_ListMeterReads_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	rr := serve(New(&fakeClient{}), http.MethodPost, "/api/meter-reads", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodGet, rr.Header().Get("Allow"))
}

func TestHTTP_Parse_OK(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{parseResp: &nem12v1.ParseFileResponse{
		MeterReads: []nem12v1.MeterRead{{NMI: "ABCDEFGHIJ", EnergyUnit: "KWH", TotalVolume: "0", Intervals: []nem12v1.Interval{}}},
	}}
	doc := "100\n200,ABCDEFGHIJ,KWH\n900\n"
	rr := serve(New(fc), http.MethodPost, "/api/parse", doc)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, doc, string(fc.parseReq.Content))

	var got parseResponseJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.MeterReads, 1)
	assert.Empty(t, got.MeterReads[0].Intervals)
}

func TestHTTP_Parse_RejectedDocument(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{err: nem12v1.RejectionError("line 2: NMI must be 10 characters, got \"ABCDE\"",
		nem12v1.RejectionDetail{Kind: "field_format", Line: 2})}
	rr := serve(New(fc), http.MethodPost, "/api/parse", "100\n200,ABCDE,KWH\n900")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var got apiErrorJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "field_format", got.Code)
	assert.Equal(t, 2, got.Line)
	assert.Contains(t, got.Message, "NMI must be 10 characters")
	assert.NotEmpty(t, got.RequestID)
}

func TestHTTP_Parse_RecordsUploadMetrics(t *testing.T) {
	before := testutil.ToFloat64(parseRejectionsTotal.WithLabelValues("unknown_record"))

	fc := &fakeClient{err: nem12v1.RejectionError("line 2: unknown record type \"400\"",
		nem12v1.RejectionDetail{Kind: "unknown_record", Line: 2})}
	rr := serve(New(fc), http.MethodPost, "/api/parse", "100\n400\n900")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(parseRejectionsTotal.WithLabelValues("unknown_record")))
	assert.Equal(t, 1, testutil.CollectAndCount(parseUploadBytes, "nem12_gateway_upload_bytes"))
}

func TestHTTP_Parse_TooLarge(t *testing.T) {
	t.Parallel()

	rr := serve(New(&fakeClient{}), http.MethodPost, "/api/parse", strings.Repeat("x", MaxUploadBytes+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestHTTP_Parse_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	rr := serve(New(&fakeClient{}), http.MethodGet, "/api/parse", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHTTP_UnknownAPIPathIsJSON(t *testing.T) {
	t.Parallel()

	rr := serve(New(&fakeClient{}), http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
}

func TestHTTP_Index(t *testing.T) {
	t.Parallel()

	rr := serve(New(&fakeClient{}), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "/api/parse")
}

func TestHTTP_Healthz(t *testing.T) {
	t.Parallel()

	rr := serve(New(&fakeClient{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
