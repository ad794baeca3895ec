package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/agbru/parsearch/internal/config"
	apperrors "github.com/agbru/parsearch/internal/errors"
	"github.com/agbru/parsearch/internal/logging"
	"github.com/agbru/parsearch/internal/search"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr string
	// RequestTimeout bounds the wait for one search's workers.
	RequestTimeout time.Duration
	// MaxConcurrent bounds the searches running at once; 0 disables the bound.
	MaxConcurrent int64
	// RateLimit is the sustained /search request rate per second; 0
	// disables rate limiting.
	RateLimit float64
	Burst     int
	// ShutdownTimeout bounds graceful shutdown once the serve context is done.
	ShutdownTimeout time.Duration
	Security        SecurityConfig
}

// DefaultConfig returns the settings used by --serve.
func DefaultConfig() Config {
	return Config{
		Addr:            config.DefaultAddr,
		RequestTimeout:  config.DefaultTimeout,
		MaxConcurrent:   64,
		RateLimit:       100,
		Burst:           200,
		ShutdownTimeout: 10 * time.Second,
		Security:        DefaultSecurityConfig(),
	}
}

// Server serves parallel searches over HTTP.
type Server struct {
	cfg      Config
	searcher *search.Searcher
	metrics  *Metrics
	logger   logging.Logger
	limiter  *rate.Limiter
	sem      *semaphore.Weighted
}

// New creates a Server. The searcher reports to the server's Prometheus
// collectors and logs through logger; opts are applied after those defaults,
// and observers they add are notified after the collectors.
func New(cfg Config, logger logging.Logger, opts ...search.Option) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	m := NewMetrics()
	s := &Server{
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		searcher: search.New(append([]search.Option{
			search.WithLogger(logger),
			search.WithObserver(m.Observer()),
		}, opts...)...),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.MaxConcurrent > 0 {
		s.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	return s
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	sec := s.cfg.Security
	mux := http.NewServeMux()
	mux.HandleFunc("/search", SecurityMiddleware(sec,
		s.metricsMiddleware(s.rateLimitMiddleware(s.admissionMiddleware(s.handleSearch)))))
	mux.HandleFunc("/health", SecurityMiddleware(sec, s.metricsMiddleware(s.handleHealth)))
	mux.HandleFunc("/metrics", SecurityMiddleware(sec, s.handleMetrics))
	return mux
}

// Start serves until ctx is done, then shuts down gracefully. It returns nil
// after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like Start but accepts connections on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))
		serveErr <- httpSrv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-serveErr
	s.logger.Info("server stopped")
	return nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.ObserveRequest(rec.status, time.Since(start).Seconds())
	}
}

func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.metrics.Rejected("rate_limited")
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func (s *Server) admissionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sem != nil {
			if !s.sem.TryAcquire(1) {
				s.metrics.Rejected("saturated")
				writeError(w, http.StatusServiceUnavailable, "too many concurrent searches")
				return
			}
			defer s.sem.Release(1)
		}
		next(w, r)
	}
}

// SearchRequest is the body of POST /search. Workers 0 selects a worker
// count automatically.
type SearchRequest struct {
	Target  int64   `json:"target"`
	Values  []int64 `json:"values"`
	Workers int     `json:"workers"`
}

// SegmentResponse describes one worker's segment in a SearchResponse.
type SegmentResponse struct {
	Index   int    `json:"index"`
	Begin   int    `json:"begin"`
	End     int    `json:"end"`
	Scanned int    `json:"scanned"`
	Outcome string `json:"outcome"`
}

// SearchResponse is the body returned by a successful POST /search.
type SearchResponse struct {
	Found      bool              `json:"found"`
	Workers    int               `json:"workers"`
	Length     int               `json:"length"`
	Winner     int               `json:"winner"`
	Scanned    int               `json:"scanned"`
	DurationMS float64           `json:"duration_ms"`
	Segments   []SegmentResponse `json:"segments"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sec := s.cfg.Security
	if sec.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, sec.MaxBodyBytes)
	}
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if err := validateRequest(req, sec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	workers := req.Workers
	if workers == 0 {
		workers = config.EstimateOptimalWorkers(len(req.Values))
		if sec.MaxWorkers > 0 && workers > sec.MaxWorkers {
			workers = config.LargestDivisorAtMost(len(req.Values), sec.MaxWorkers)
		}
	}

	ctx := r.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	report, err := search.Run(ctx, s.searcher, req.Target, search.Slice[int64](req.Values), workers, search.Equal[int64])
	if err != nil {
		status := statusFor(err)
		fields := []logging.Field{
			logging.Int("length", len(req.Values)), logging.Int("workers", workers), logging.Int("status", status),
		}
		if apperrors.IsContextError(err) {
			s.logger.Debug("search request abandoned", append(fields, logging.Err(err))...)
		} else {
			s.logger.Error("search request failed", err, fields...)
		}
		writeError(w, status, err.Error())
		return
	}

	s.logger.Debug("search request served",
		logging.Int("length", report.Length), logging.Int("workers", workers), logging.Bool("found", report.Found))
	writeJSON(w, http.StatusOK, newSearchResponse(report))
}

func validateRequest(req SearchRequest, sec SecurityConfig) error {
	switch {
	case req.Workers < 0:
		return apperrors.ValidationError{Field: "workers", Message: "must not be negative"}
	case sec.MaxWorkers > 0 && req.Workers > sec.MaxWorkers:
		return apperrors.ValidationError{Field: "workers", Message: fmt.Sprintf("must not exceed %d", sec.MaxWorkers)}
	case sec.MaxValues > 0 && len(req.Values) > sec.MaxValues:
		return apperrors.ValidationError{Field: "values", Message: fmt.Sprintf("at most %d values are accepted", sec.MaxValues)}
	}
	return nil
}

// statusFor maps a search error to an HTTP status.
func statusFor(err error) int {
	var fault apperrors.WorkerFault
	switch {
	case apperrors.IsConfigError(err):
		return http.StatusBadRequest
	case errors.As(err, &fault):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func newSearchResponse(report search.Report) SearchResponse {
	resp := SearchResponse{
		Found:      report.Found,
		Workers:    report.Workers,
		Length:     report.Length,
		Winner:     report.Winner,
		Scanned:    report.Scanned(),
		DurationMS: float64(report.Duration) / float64(time.Millisecond),
		Segments:   make([]SegmentResponse, 0, len(report.Segments)),
	}
	for _, st := range report.Segments {
		resp.Segments = append(resp.Segments, SegmentResponse{
			Index:   st.Segment.Index,
			Begin:   st.Segment.Begin,
			End:     st.Segment.End,
			Scanned: st.Scanned,
			Outcome: st.Outcome.String(),
		})
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.logger.Debug("metrics: method not allowed", logging.String("method", r.Method))
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
