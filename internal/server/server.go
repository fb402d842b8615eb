package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprometheus "github.com/zsais/go-gin-prometheus"

	"github.com/oukeidos/tamilfix/internal/apperrors"
	"github.com/oukeidos/tamilfix/internal/correction"
	"github.com/oukeidos/tamilfix/internal/logger"
)

const metricsPath = "/metrics"

const (
	minWriteTimeout = 90 * time.Second
	// writeMargin is added to the upstream timeout so a slow model call still
	// gets its response written.
	writeMargin = 30 * time.Second
)

// go-gin-prometheus registers with the default registerer, so only one
// instance may exist per process.
var ginMetrics = sync.OnceValue(func() *ginprometheus.Prometheus {
	p := ginprometheus.NewPrometheus("gin")
	p.MetricsPath = metricsPath
	return p
})

// Options configures a Server.
type Options struct {
	Addr        string
	CORSOrigins []string
	Pprof       bool
	Metrics     bool

	// Registerer and Gatherer back /metrics. Nil selects the Prometheus defaults.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// UpstreamTimeout is the model call timeout; the write timeout is kept
	// above it.
	UpstreamTimeout time.Duration

	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Server exposes a correction.Service over HTTP.
type Server struct {
	svc        *correction.Service
	corsCfg    cors.Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	opts       Options

	mu      sync.Mutex
	running bool
}

// New builds the router and the underlying http.Server. An unusable CORS
// origin list is reported as a configuration error.
func New(svc *correction.Service, opts Options) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = "0.0.0.0:8000"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.L()
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	corsCfg := corsConfig(opts.CORSOrigins)
	if err := corsCfg.Validate(); err != nil {
		return nil, apperrors.Config(fmt.Sprintf("invalid server.cors_origins: %v", err))
	}

	s := &Server{svc: svc, corsCfg: corsCfg, logger: opts.Logger, opts: opts}
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout(opts.UpstreamTimeout),
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func writeTimeout(upstream time.Duration) time.Duration {
	if d := upstream + writeMargin; d > minWriteTimeout {
		return d
	}
	return minWriteTimeout
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID(s.logger))
	router.Use(accessLog())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{metricsPath, "/debug/pprof"})))
	router.Use(cors.New(s.corsCfg))

	if s.opts.Metrics {
		p := ginMetrics()
		router.Use(p.HandlerFunc())
		h := promhttp.InstrumentMetricHandler(s.opts.Registerer,
			promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{DisableCompression: true}))
		router.GET(metricsPath, gin.WrapH(h))
	}
	if s.opts.Pprof {
		pprof.Register(router)
	}

	router.GET("/", s.rootHandler)
	router.GET("/health", s.healthHandler)
	router.GET("/test-gemini", s.testGeminiHandler)
	router.POST("/process-text", s.processTextHandler)
	router.GET("/operations", s.operationsHandler)
	router.GET("/version", s.versionHandler)
	return router
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled or the listener fails, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
