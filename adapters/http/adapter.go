// Package http exposes the estimation engine over HTTP.
// A request body is a BOM document; the response is the rendered report.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"azure-bom-cost/adapters/bom"
	"azure-bom-cost/adapters/pricing"
	"azure-bom-cost/core/engine"
	"azure-bom-cost/core/output"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

// Config holds HTTP adapter configuration
type Config struct {
	// Address to listen on
	Address string `json:"address" yaml:"address" toml:"address"`

	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" toml:"write_timeout"`

	// MaxBodySize limits the BOM document size
	MaxBodySize int64 `json:"max_body_size" yaml:"max_body_size" toml:"max_body_size"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Address:      ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		MaxBodySize:  4 * 1024 * 1024,
	}
}

// Adapter is the HTTP adapter
type Adapter struct {
	engine     *engine.Engine
	formatters *output.Registry
	sources    pricing.Options
	config     *Config
	logger     *zap.Logger
	server     *http.Server

	mu             sync.Mutex
	requestCount   int64
	errorCount     int64
	totalLatencyMs int64
}

// New creates a new HTTP adapter. sources is the base price source
// selection; region, currency and services come from each BOM.
func New(eng *engine.Engine, formatters *output.Registry, sources pricing.Options, config *Config, logger *zap.Logger) *Adapter {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		engine:     eng,
		formatters: formatters,
		sources:    sources,
		config:     config,
		logger:     logger,
	}
}

// Router returns the HTTP handler
func (a *Adapter) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /api/v1/formats", a.handleFormats)
	mux.HandleFunc("POST /api/v1/estimate", a.handleEstimate)
	mux.HandleFunc("GET /metrics", a.handleMetrics)
	mux.HandleFunc("/", a.handleNotFound)

	handler := a.loggingMiddleware(mux)
	handler = a.recoveryMiddleware(handler)
	return handler
}

// Start starts the HTTP server
func (a *Adapter) Start() error {
	a.server = &http.Server{
		Addr:         a.config.Address,
		Handler:      a.Router(),
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
	}
	a.logger.Info("listening", zap.String("address", a.config.Address))
	return a.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (a *Adapter) Shutdown(ctx context.Context) error {
	if a.server != nil {
		return a.server.Shutdown(ctx)
	}
	return nil
}

// ErrorBody is the JSON body of every failed request
type ErrorBody struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (a *Adapter) handleNotFound(w http.ResponseWriter, r *http.Request) {
	a.writeError(w, errors.NotFound("route", r.Method+" "+r.URL.Path))
}

func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (a *Adapter) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"bom":    []bom.Format{bom.FormatJSON, bom.FormatYAML, bom.FormatHCL},
		"output": a.formatters.Formats(),
	})
}

// handleEstimate prices the posted BOM.
//
// Query parameters: format (output format, default json), currency
// (overrides the BOM) and bom_format (json, yaml or hcl, default from
// the Content-Type).
func (a *Adapter) handleEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := output.FormatJSON
	if v := q.Get("format"); v != "" {
		f, err := output.ParseFormat(v)
		if err != nil {
			a.writeError(w, err)
			return
		}
		format = f
	}
	bomFormat, err := requestBOMFormat(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	var body bytes.Buffer
	if _, err := body.ReadFrom(http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)); err != nil {
		a.writeError(w, errors.Wrap(errors.TypeInput, "failed to read request body", err))
		return
	}
	b, err := bom.Parse(body.Bytes(), bomFormat, "request")
	if err != nil {
		a.writeError(w, err)
		return
	}
	if c := strings.ToUpper(strings.TrimSpace(q.Get("currency"))); c != "" {
		b.Currency = types.Currency(c)
	}

	report, err := a.estimate(r.Context(), b)
	if err != nil {
		a.writeError(w, err)
		return
	}

	var out bytes.Buffer
	if err := a.formatters.Render(&out, format, report); err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Run-ID", report.RunID)
	w.WriteHeader(http.StatusOK)
	w.Write(out.Bytes())
}

func (a *Adapter) estimate(ctx context.Context, b *types.BOM) (*output.Report, error) {
	opts := a.sources
	opts.Region = b.Region
	opts.Currency = a.engine.Currency(b)
	if opts.Retail != nil {
		opts.Services = a.engine.Services(b)
	}
	loaded, err := pricing.Load(ctx, opts, a.logger.Named("sources"))
	if err != nil {
		return nil, err
	}
	est, err := a.engine.Estimate(ctx, b, loaded.Indexes)
	if err != nil {
		return nil, err
	}
	return &output.Report{
		Estimate:       est,
		Dropped:        loaded.Dropped(),
		SourceWarnings: loaded.Warnings,
	}, nil
}

func (a *Adapter) handleMetrics(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	requests, failures, latency := a.requestCount, a.errorCount, a.totalLatencyMs
	a.mu.Unlock()

	avgLatency := float64(0)
	if requests > 0 {
		avgLatency = float64(latency) / float64(requests)
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, `# HELP azure_bom_cost_requests_total Total requests
# TYPE azure_bom_cost_requests_total counter
azure_bom_cost_requests_total %d

# HELP azure_bom_cost_errors_total Requests answered with an error
# TYPE azure_bom_cost_errors_total counter
azure_bom_cost_errors_total %d

# HELP azure_bom_cost_latency_avg_ms Average latency
# TYPE azure_bom_cost_latency_avg_ms gauge
azure_bom_cost_latency_avg_ms %.2f
`, requests, failures, avgLatency)
}

// Middleware

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (a *Adapter) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		a.mu.Lock()
		a.requestCount++
		if rec.status >= 400 {
			a.errorCount++
		}
		a.totalLatencyMs += elapsed.Milliseconds()
		a.mu.Unlock()

		a.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed))
	})
}

func (a *Adapter) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				a.logger.Error("panic serving request", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				a.writeError(w, errors.Internal("internal server error", nil))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Helpers

func requestBOMFormat(r *http.Request) (bom.Format, error) {
	if v := r.URL.Query().Get("bom_format"); v != "" {
		switch f := bom.Format(strings.ToLower(v)); f {
		case bom.FormatJSON, bom.FormatYAML, bom.FormatHCL:
			return f, nil
		}
		return "", errors.Input(fmt.Sprintf("unknown bom_format %q", v)).WithContext("field", "bom_format")
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return bom.FormatJSON, nil
	}
	media, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errors.Wrap(errors.TypeInput, "invalid Content-Type", err)
	}
	switch media {
	case "application/json", "text/json":
		return bom.FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return bom.FormatYAML, nil
	case "application/hcl", "text/x-hcl", "text/plain":
		return bom.FormatHCL, nil
	}
	return "", errors.NotSupported("BOM content type " + media)
}

func contentType(f output.Format) string {
	switch f {
	case output.FormatJSON:
		return "application/json"
	case output.FormatCSV:
		return "text/csv; charset=utf-8"
	case output.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// statusFor maps an error category to an HTTP status
func statusFor(err error) int {
	e, ok := errors.As(err)
	if !ok {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	}
	switch e.Type {
	case errors.TypeInput, errors.TypeParsing, errors.TypeInvalidAssumptions:
		return http.StatusBadRequest
	case errors.TypeNotSupported:
		return http.StatusUnsupportedMediaType
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeConfig:
		return http.StatusServiceUnavailable
	case errors.TypeNetwork, errors.TypePricing, errors.TypeAmbiguousSourceData:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (a *Adapter) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	detail := ErrorDetail{Type: string(errors.TypeInternal), Message: err.Error()}
	if e, ok := errors.As(err); ok {
		detail.Type = string(e.Type)
		detail.Field = e.Field()
	}
	if status >= 500 {
		a.logger.Warn("estimate failed", zap.Error(err))
	}
	writeJSON(w, status, ErrorBody{Success: false, Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
