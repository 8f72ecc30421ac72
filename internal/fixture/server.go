// Package fixture serves the sentiment API from a local SQLite store so the
// dashboard can run without the production backend.
package fixture

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sentidash/sentidash/internal/config"
	"github.com/sentidash/sentidash/internal/logging"
	"github.com/sentidash/sentidash/internal/storage"
	"golang.org/x/time/rate"
)

const (
	// Banner is the service name reported at the root route.
	Banner = "Financial Sentiment API v1.0.0"

	DefaultTokenTTL = 30 * time.Minute
	shutdownTimeout = 5 * time.Second
)

// Config holds server settings.
type Config struct {
	Addr       string
	User       string
	Password   string
	Secret     string
	RatePerSec float64
	Burst      int
	TokenTTL   time.Duration
}

// ConfigFromGlobal reads the fixture_* settings.
func ConfigFromGlobal() Config {
	ratePerSec, err := strconv.ParseFloat(config.Get("fixture_rate_per_sec", "20"), 64)
	if err != nil {
		ratePerSec = 20
	}
	return Config{
		Addr:       config.Get("fixture_addr", "127.0.0.1:8000"),
		User:       config.Get("fixture_user", "demo"),
		Password:   config.Get("fixture_password", "demo"),
		Secret:     config.Get("fixture_secret", "sentidash-fixture-secret"),
		RatePerSec: ratePerSec,
		Burst:      max(int(ratePerSec)*2, 1),
		TokenTTL:   DefaultTokenTTL,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the clock used for look-back windows and token times.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRegistry serves metrics from reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// Server is the fixture HTTP server.
type Server struct {
	echo     *echo.Echo
	store    storage.Store
	cfg      Config
	logger   logging.Logger
	now      func() time.Time
	registry *prometheus.Registry
	metrics  *metrics
	limiter  *RateLimiter
}

type detailBody struct {
	Detail string `json:"detail"`
}

// New builds a server answering from store.
func New(store storage.Store, cfg Config, opts ...Option) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	s := &Server{
		store:  store,
		cfg:    cfg,
		logger: logging.Noop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry)

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	s.limiter = NewRateLimiter(limit, cfg.Burst)
	s.limiter.now = s.now
	s.limiter.onReject = func(ip string) {
		s.metrics.rateLimited.Inc()
		s.logger.Warn("rate limit exceeded", "ip", ip)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogError:     true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				s.logger.Error("request failed", append(args, "error", v.Error.Error())...)
				return nil
			}
			s.logger.Info("request completed", args...)
			return nil
		},
	}))
	e.Use(s.metrics.middleware())
	e.Use(s.skipMetrics(s.limiter.Middleware()))

	s.echo = e
	s.routes()
	return s
}

func (s *Server) skipMetrics(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		limited := mw(next)
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/metrics" {
				return next(c)
			}
			return limited(c)
		}
	}
}

func (s *Server) routes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.echo.Group("/api")
	api.GET("/dashboard/stats", s.handleStats)
	api.GET("/sentiment/timeline", s.handleTimeline)
	api.GET("/sentiment/summary_by_symbol", s.handleSentimentBySymbol)
	api.GET("/stocks/prices_by_symbol", s.handleStockPrices)
	api.GET("/correlation/analysis", s.handleCorrelation)
	api.GET("/news/latest", s.handleNews)

	auth := s.echo.Group("/auth")
	auth.POST("/login", s.handleLogin)
	auth.GET("/me", s.handleMe)
}

// ServeHTTP lets the server be mounted in tests and other muxes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("fixture server listening", "addr", s.cfg.Addr)
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("fixture server stopped")
		return nil
	}
}

// handleError renders every failure as {"detail": "..."}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		} else {
			detail = http.StatusText(code)
		}
		if he.Internal != nil {
			s.logger.Error("handler error", "path", c.Path(), "error", he.Internal)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, detailBody{Detail: detail})
}
