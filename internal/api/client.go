// Package api is the HTTP client for the sentiment backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sentidash/sentidash/internal/config"
	"github.com/sentidash/sentidash/internal/logging"
	"github.com/sentidash/sentidash/internal/query"
	"github.com/sentidash/sentidash/internal/version"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
	// RequestIDHeader carries the per-request id.
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes = 16 << 20
)

// Client talks to the sentiment API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     *bluemonday.Policy
	logger     logging.Logger
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables the limit.
func WithRateLimit(perSec float64) Option {
	return func(c *Client) {
		if perSec <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSec)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		policy:     bluemonday.StrictPolicy(),
		logger:     logging.Noop(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from the loaded configuration.
func NewFromConfig() *Client {
	return NewClient(
		config.Get("api_url", "http://localhost:8000"),
		WithToken(config.Get("api_token", "")),
		WithTimeout(config.GetDuration("api_timeout", DefaultTimeout)),
		WithRateLimit(float64(config.GetInt("api_rate_per_sec", 10))),
		WithLogger(logging.GetGlobal()),
	)
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

func hoursParam(r query.TimeRange) url.Values {
	return url.Values{"hours": {strconv.Itoa(r.Hours())}}
}

// Stats fetches the dashboard summary and sentiment distribution.
func (c *Client) Stats(ctx context.Context, hours query.TimeRange) (Stats, error) {
	var body struct {
		GeneralStats Stats             `json:"general_stats"`
		Distribution []DistributionRow `json:"sentiment_distribution"`
	}
	if err := c.get(ctx, apiPath(query.EndpointStats), hoursParam(hours), &body); err != nil {
		return Stats{}, err
	}
	stats := body.GeneralStats
	stats.Distribution = orEmpty(body.Distribution)
	return stats, nil
}

// Timeline fetches the sentiment timeline, newest bucket first.
func (c *Client) Timeline(ctx context.Context, hours query.TimeRange) ([]TimelinePoint, error) {
	var body struct {
		Timeline []TimelinePoint `json:"timeline"`
	}
	if err := c.get(ctx, apiPath(query.EndpointTimeline), hoursParam(hours), &body); err != nil {
		return nil, err
	}
	return orEmpty(body.Timeline), nil
}

// SentimentBySymbol fetches the per-ticker sentiment summary.
func (c *Client) SentimentBySymbol(ctx context.Context, hours query.TimeRange) ([]SymbolSentiment, error) {
	var body struct {
		Summary []SymbolSentiment `json:"summary"`
	}
	if err := c.get(ctx, apiPath(query.EndpointSentiment), hoursParam(hours), &body); err != nil {
		return nil, err
	}
	return orEmpty(body.Summary), nil
}

// StockPrices fetches hourly price bars for every ticker.
func (c *Client) StockPrices(ctx context.Context, hours query.TimeRange) ([]StockPrice, error) {
	var body struct {
		StockPrices []StockPrice `json:"stock_prices"`
	}
	if err := c.get(ctx, apiPath(query.EndpointPrices), hoursParam(hours), &body); err != nil {
		return nil, err
	}
	return orEmpty(body.StockPrices), nil
}

// Correlation fetches the sentiment to price correlation per category.
func (c *Client) Correlation(ctx context.Context, hours query.TimeRange) ([]CorrelationRow, error) {
	var body struct {
		Analysis []CorrelationRow `json:"correlation_analysis"`
	}
	if err := c.get(ctx, apiPath(query.EndpointCorrelation), hoursParam(hours), &body); err != nil {
		return nil, err
	}
	return orEmpty(body.Analysis), nil
}

// LatestNews fetches the most recent limit articles. Title and description are
// stripped of markup.
func (c *Client) LatestNews(ctx context.Context, limit int) ([]NewsItem, error) {
	var body struct {
		News []NewsItem `json:"news"`
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, apiPath(query.EndpointNews), params, &body); err != nil {
		return nil, err
	}
	news := orEmpty(body.News)
	for i := range news {
		news[i].Title = c.plainText(news[i].Title)
		news[i].Description = c.plainText(news[i].Description)
	}
	return news, nil
}

// Health fetches the server health report.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.get(ctx, "/health", nil, &h); err != nil {
		return Health{}, err
	}
	return h, nil
}

// Session is the result of a successful login. Nothing is persisted.
type Session struct {
	AccessToken string
	TokenType   string
	User        User
	ExpiresAt   time.Time // zero when the token carries no exp claim
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	form := url.Values{"username": {username}, "password": {password}}
	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        User   `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &body)
	if err != nil {
		return Session{}, err
	}
	if body.AccessToken == "" {
		return Session{}, &Error{Kind: KindMalformed, Endpoint: "/auth/login", Err: errors.New("missing access_token")}
	}
	return Session{
		AccessToken: body.AccessToken,
		TokenType:   body.TokenType,
		User:        body.User,
		ExpiresAt:   tokenExpiry(body.AccessToken),
	}, nil
}

// tokenExpiry reads the exp claim without verifying the signature. It is for display only.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func (c *Client) plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(s)))
}

func apiPath(e query.Endpoint) string {
	return "/api/" + string(e)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, "", out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Kind: KindNetwork, Endpoint: path, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Endpoint: path, Err: err}
	}
	requestID := c.newID()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := c.logger.With("request_id", requestID, "method", method, "path", path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err)
		return &Error{Kind: KindNetwork, Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("reading response failed", "status", resp.StatusCode, "error", err)
		return &Error{Kind: KindNetwork, Endpoint: path, Err: err}
	}
	log.Debug("request done", "status", resp.StatusCode, "bytes", len(data), "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(path, resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn("decoding response failed", "error", err)
		return &Error{Kind: KindMalformed, Endpoint: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return nil
}

func orEmpty[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
