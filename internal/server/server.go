// =============================================================================
// RSP Dashboard - HTTP API
// =============================================================================
//
// This module exposes the dashboard service over HTTP for a browser-based
// selection UI and chart renderer.
//
// ROUTES:
//   GET /api/options?mode=fy|cy                  filter options + defaults
//   GET /api/chart?city=&product=&year=&mode=    chart payload (JSON)
//   GET /api/chart.xlsx?...                      chart workbook download
//   GET /api/report                              data-quality report
//   GET /health                                  200 once a dataset is loaded
//   GET /metrics                                 Prometheus (if enabled)
//
// Empty query parameters take the defaults of the requested mode. An
// unknown mode is a 400; no dataset yet is a 503.
//
// MIDDLEWARE (outermost first):
//   recovery -> CORS -> rate limit -> per-route metrics -> per-route tracing
//
// =============================================================================

package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/ginjaninja78/rsp-dashboard/internal/aggregate"
	"github.com/ginjaninja78/rsp-dashboard/internal/chartwriter"
	"github.com/ginjaninja78/rsp-dashboard/internal/config"
	"github.com/ginjaninja78/rsp-dashboard/internal/dashboard"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
	"github.com/ginjaninja78/rsp-dashboard/pkg/observability"
	"github.com/ginjaninja78/rsp-dashboard/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Server holds the handler dependencies.
type Server struct {
	svc    *dashboard.Service
	cfg    *config.MainConfig
	logger *slog.Logger
}

// New builds the HTTP handler for svc.
func New(svc *dashboard.Service, cfg *config.MainConfig, logger *slog.Logger) http.Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, cfg: cfg, logger: logger.With("component", "server")}

	mux := http.NewServeMux()
	s.handle(mux, "GET /api/options", "/api/options", noStore(http.HandlerFunc(s.handleOptions)))
	s.handle(mux, "GET /api/chart", "/api/chart", noStore(http.HandlerFunc(s.handleChart)))
	s.handle(mux, "GET /api/chart.xlsx", "/api/chart.xlsx", noStore(http.HandlerFunc(s.handleChartXLSX)))
	s.handle(mux, "GET /api/report", "/api/report", noStore(http.HandlerFunc(s.handleReport)))
	s.handle(mux, "GET /health", "/health", http.HandlerFunc(s.handleHealth))
	if cfg.Server.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	var handler http.Handler = mux
	if cfg.Server.RateLimitPerSecond > 0 && cfg.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSecond), cfg.Server.RateLimitBurst)
		handler = rateLimit(limiter, handler)
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         7200,
	})
	handler = corsHandler.Handler(handler)

	return s.recovery(handler)
}

func (s *Server) handle(mux *http.ServeMux, pattern, route string, h http.Handler) {
	mux.Handle(pattern, observability.Metrics(route, observability.Tracing(nil, route, h)))
	s.logger.Debug("registered route", "path", route)
}

// =============================================================================
// HANDLERS
// =============================================================================

type optionsResponse struct {
	aggregate.Options
	Defaults types.Selection `json:"defaults"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	mode, err := types.ParseYearMode(r.URL.Query().Get("mode"), "")
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts, err := s.svc.Options(mode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defaults, err := s.svc.Selection(types.Selection{Mode: opts.Mode})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, optionsResponse{Options: opts, Defaults: defaults})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	c, err := s.svc.Chart(sel)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleChartXLSX(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	c, err := s.svc.Chart(sel)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := chartwriter.WriteXLSX(&buf, c); err != nil {
		s.writeError(w, err)
		return
	}

	name := utils.GenerateOutputFileName(s.cfg.Output.FileNameFormat, chartwriter.FileNameParams(c), ".xlsx")

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("failed to write workbook response", slog.Any("error", err))
	}
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	report, err := s.svc.Report()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !s.svc.Loaded() {
		w.WriteHeader(http.StatusServiceUnavailable)
		if _, err := w.Write([]byte("no dataset loaded")); err != nil {
			s.logger.Error("failed to write health response", slog.Any("error", err))
		}
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Error("failed to write health response", slog.Any("error", err))
	}
}

// selectionFromQuery reads city, product, year and mode.
func selectionFromQuery(r *http.Request) (types.Selection, error) {
	q := r.URL.Query()
	mode, err := types.ParseYearMode(q.Get("mode"), "")
	if err != nil {
		return types.Selection{}, err
	}
	return types.Selection{
		City:       q.Get("city"),
		Product:    q.Get("product"),
		YearBucket: q.Get("year"),
		Mode:       mode,
	}, nil
}

// =============================================================================
// RESPONSES
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := chartwriter.WriteJSON(w, v); err != nil {
		s.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrUnknownYearMode):
		status = http.StatusBadRequest
	case errors.Is(err, dashboard.ErrNoDataset):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", slog.Any("error", err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

func rateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic serving request", "path", r.URL.Path, "panic", rec)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
		s.logger.Debug("request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
