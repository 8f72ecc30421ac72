package fixture

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/storage"
)

const (
	defaultHours = 24
	defaultLimit = 10
	maxLimit     = 500
)

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": Banner, "status": "running"})
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		s.logger.Warn("health check ping failed", "error", err)
		return c.JSON(http.StatusOK, api.Health{Status: "healthy", Database: "disconnected", Message: "Using sample data"})
	}
	return c.JSON(http.StatusOK, api.Health{Status: "healthy", Database: "connected"})
}

// window parses the hours parameter into a look-back start time.
func (s *Server) window(c echo.Context) (int, time.Time, error) {
	hours := defaultHours
	if raw := c.QueryParam("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return 0, time.Time{}, echo.NewHTTPError(http.StatusUnprocessableEntity, "hours must be a positive integer")
		}
		hours = n
	}
	return hours, storage.Since(s.now(), hours), nil
}

func storeError(err error) error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
}

func (s *Server) handleStats(c echo.Context) error {
	hours, since, err := s.window(c)
	if err != nil {
		return err
	}
	stats, err := s.store.Stats(c.Request().Context(), since)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"general_stats":          stats,
		"sentiment_distribution": stats.Distribution,
		"time_range_hours":       hours,
	})
}

func (s *Server) handleTimeline(c echo.Context) error {
	hours, since, err := s.window(c)
	if err != nil {
		return err
	}
	interval := c.QueryParam("interval")
	if interval != storage.IntervalDay {
		interval = storage.IntervalHour
	}
	timeline, err := s.store.Timeline(c.Request().Context(), since, interval)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"timeline":         timeline,
		"interval":         interval,
		"time_range_hours": hours,
	})
}

func (s *Server) handleSentimentBySymbol(c echo.Context) error {
	hours, since, err := s.window(c)
	if err != nil {
		return err
	}
	summary, err := s.store.SentimentBySymbol(c.Request().Context(), since)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"summary": summary, "time_range_hours": hours})
}

func (s *Server) handleStockPrices(c echo.Context) error {
	hours, since, err := s.window(c)
	if err != nil {
		return err
	}
	prices, err := s.store.StockPrices(c.Request().Context(), since)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"stock_prices": prices, "time_range_hours": hours})
}

func (s *Server) handleCorrelation(c echo.Context) error {
	hours, since, err := s.window(c)
	if err != nil {
		return err
	}
	rows, err := s.store.Correlation(c.Request().Context(), since)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"correlation_analysis": rows, "time_range_hours": hours})
}

func (s *Server) handleNews(c echo.Context) error {
	limit := defaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxLimit {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "limit must be between 1 and "+strconv.Itoa(maxLimit))
		}
		limit = n
	}
	news, err := s.store.LatestNews(c.Request().Context(), limit)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"news": news, "total_count": len(news)})
}

func (s *Server) user() api.User {
	return api.User{
		Username: s.cfg.User,
		Email:    s.cfg.User + "@example.com",
		FullName: "Demo User",
		Role:     "admin",
	}
}

func (s *Server) handleLogin(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.User)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) == 1
	if s.cfg.User == "" || !userOK || !passOK {
		s.metrics.logins.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
	}

	token, err := s.issueToken(username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not issue token").SetInternal(err)
	}
	s.metrics.logins.WithLabelValues("accepted").Inc()
	return c.JSON(http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         s.user(),
	})
}

func (s *Server) issueToken(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

func (s *Server) handleMe(c echo.Context) error {
	unauthorized := echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")

	raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if !ok || raw == "" {
		return unauthorized
	}
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return []byte(s.cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Subject != s.cfg.User {
		return unauthorized
	}
	return c.JSON(http.StatusOK, s.user())
}
