package httpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	nem12v1 "github.com/milad/simplenem12/internal/rpc/nem12v1"
)

// MaxUploadBytes caps the body accepted by POST /api/parse.
const MaxUploadBytes = 10 << 20

type Server struct {
	client        MeterReadClient
	mux           *http.ServeMux
	log           *slog.Logger
	upstreamLimit time.Duration
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithUpstreamTimeout bounds each gRPC call. Defaults to 5s.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.upstreamLimit = d
		}
	}
}

func New(client MeterReadClient, opts ...Option) *Server {
	s := &Server{
		client:        client,
		mux:           http.NewServeMux(),
		log:           slog.Default(),
		upstreamLimit: 5 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := uuid.NewString()

	w.Header().Set("X-Request-Id", reqID)
	rr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	defer func() {
		if rec := recover(); rec != nil {
			rr.status = http.StatusInternalServerError

			// Best-effort response. If headers/body were already written, we can
			// only log.
			if !rr.wroteHeader {
				if strings.HasPrefix(r.URL.Path, "/api") {
					writeAPIError(rr, http.StatusInternalServerError, "internal_error", "internal error")
				} else {
					http.Error(rr, "internal error", http.StatusInternalServerError)
				}
			}

			s.log.ErrorContext(r.Context(), "panic handling request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("req_id", reqID),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
		}

		dur := time.Since(start)
		observeHTTPRequest(r, rr.status, dur)

		// Keep health checks + metrics endpoint quiet.
		if r.URL.Path != "/healthz" && r.URL.Path != "/metrics" {
			s.log.InfoContext(r.Context(), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rr.status),
				slog.Duration("duration", dur.Truncate(time.Millisecond)),
				slog.String("req_id", reqID),
			)
		}
	}()

	s.mux.ServeHTTP(rr, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/meter-reads", s.handleListMeterReads)
	s.mux.HandleFunc("/api/parse", s.handleParse)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/", s.handleIndex)
}

// handleListMeterReads returns meter reads, optionally narrowed to one NMI and to
// interval dates in [start, end). Dates are YYYY-MM-DD.
func (s *Server) handleListMeterReads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	q := r.URL.Query()
	start, err := parseOptionalDate(q.Get("start"))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", "invalid start")
		return
	}
	end, err := parseOptionalDate(q.Get("end"))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", "invalid end")
		return
	}
	if start != nil && end != nil && !start.Before(*end) {
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", "invalid range: start must be before end")
		return
	}

	pageSize, err := parseOptionalInt(q.Get("page_size"))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", "invalid page_size")
		return
	}
	if pageSize < 0 {
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", "page_size must be >= 0")
		return
	}
	pageToken := q.Get("page_token")
	if pageToken != "" && pageSize == 0 {
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", "page_token requires page_size")
		return
	}

	req := &nem12v1.ListMeterReadsRequest{
		NMI:       q.Get("nmi"),
		Start:     q.Get("start"),
		End:       q.Get("end"),
		PageSize:  int32(pageSize),
		PageToken: pageToken,
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.upstreamLimit)
	defer cancel()
	grpcStart := time.Now()
	resp, err := s.client.ListMeterReads(ctx, req)
	if err != nil {
		s.writeUpstreamError(w, "ListMeterReads", err, time.Since(grpcStart))
		return
	}
	observeUpstreamGRPC("ListMeterReads", codes.OK.String(), time.Since(grpcStart))

	out, err := toMeterReadsJSON(resp.MeterReads)
	if err != nil {
		writeAPIError(w, http.StatusBadGateway, "upstream_error", "upstream returned invalid meter read")
		return
	}
	_ = writeJSON(w, http.StatusOK, listMeterReadsResponseJSON{
		MeterReads:    out,
		NextPageToken: resp.NextPageToken,
	})
}

// handleParse validates the request body as a SimpleNEM12 document. A rejected
// document answers 422 with the error kind as code and the offending line.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAPIError(w, http.StatusRequestEntityTooLarge, "too_large", "document too large")
			return
		}
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", "could not read body")
		return
	}
	observeUpload(len(body))

	ctx, cancel := context.WithTimeout(r.Context(), s.upstreamLimit)
	defer cancel()
	grpcStart := time.Now()
	resp, err := s.client.ParseFile(ctx, &nem12v1.ParseFileRequest{Content: body})
	if err != nil {
		if d, ok := nem12v1.RejectionFromError(err); ok {
			observeUpstreamGRPC("ParseFile", codes.InvalidArgument.String(), time.Since(grpcStart))
			observeRejection(d.Kind)
			reqID := w.Header().Get("X-Request-Id")
			_ = writeJSON(w, http.StatusUnprocessableEntity, apiErrorJSON{
				Code:      d.Kind,
				Message:   status.Convert(err).Message(),
				Line:      d.Line,
				RequestID: reqID,
			})
			return
		}
		s.writeUpstreamError(w, "ParseFile", err, time.Since(grpcStart))
		return
	}
	observeUpstreamGRPC("ParseFile", codes.OK.String(), time.Since(grpcStart))

	out, err := toMeterReadsJSON(resp.MeterReads)
	if err != nil {
		writeAPIError(w, http.StatusBadGateway, "upstream_error", "upstream returned invalid meter read")
		return
	}
	_ = writeJSON(w, http.StatusOK, parseResponseJSON{MeterReads: out})
}

func (s *Server) writeUpstreamError(w http.ResponseWriter, method string, err error, dur time.Duration) {
	code := codes.Unknown.String()
	if st, ok := status.FromError(err); ok {
		code = st.Code().String()
		switch st.Code() {
		case codes.InvalidArgument:
			observeUpstreamGRPC(method, code, dur)
			writeAPIError(w, http.StatusBadRequest, "invalid_argument", st.Message())
			return
		case codes.DeadlineExceeded:
			observeUpstreamGRPC(method, code, dur)
			writeAPIError(w, http.StatusGatewayTimeout, "upstream_timeout", "upstream timeout")
			return
		}
	}
	observeUpstreamGRPC(method, code, dur)
	s.log.Warn("upstream call failed", slog.String("method", method), slog.String("code", code), slog.Any("error", err))
	writeAPIError(w, http.StatusBadGateway, "upstream_error", "upstream error")
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		// Keep API errors JSON.
		if strings.HasPrefix(r.URL.Path, "/api") {
			writeAPIError(w, http.StatusNotFound, "not_found", "not found")
			return
		}
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(p)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	reqID := w.Header().Get("X-Request-Id")
	_ = writeJSON(w, status, apiErrorJSON{
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

func parseOptionalInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n > int(^uint32(0)>>1) {
		return 0, strconv.ErrRange
	}
	return n, nil
}
