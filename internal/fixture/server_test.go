package fixture

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/query"
	"github.com/sentidash/sentidash/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func fp(v float64) *float64 { return &v }

func testConfig() Config {
	return Config{User: "demo", Password: "secret", Secret: "test-secret"}
}

func newTestStore(t *testing.T) *sqlite.SQLiteStorage {
	t.Helper()
	store, err := sqlite.NewSQLiteStorage(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	records := []sqlite.Record{
		{Symbol: "AAPL", Hour: now.Add(-time.Hour), SentimentScore: fp(0.4), SentimentCategory: "Positive", Close: fp(190), Volume: 100, PriceChangePercent: fp(1)},
		{Symbol: "MSFT", Hour: now.Add(-30 * time.Hour), SentimentScore: fp(-0.3), SentimentCategory: "Negative", Close: fp(400), Volume: 200, PriceChangePercent: fp(-1)},
	}
	articles := []sqlite.Article{
		{Symbol: "AAPL", Title: "<b>Apple</b> rallies", Description: "Shares &amp; options", Source: "Reuters", PublishedAt: now.Add(-10 * time.Minute), SentimentScore: fp(0.5)},
		{Symbol: "MSFT", Title: "Microsoft slips", Source: "CNBC", PublishedAt: now.Add(-20 * time.Minute)},
	}
	require.NoError(t, store.Insert(context.Background(), records, articles))
	return store
}

func newTestServer(t *testing.T, cfg Config) (*Server, *sqlite.SQLiteStorage) {
	t.Helper()
	store := newTestStore(t)
	return New(store, cfg, WithClock(func() time.Time { return now })), store
}

func get(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestRootBanner(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rec, body := get(t, s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Banner, body["message"])
	assert.Equal(t, "running", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestHealthReportsDatabaseState(t *testing.T) {
	s, store := newTestServer(t, testConfig())

	_, body := get(t, s, "/health")
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])

	require.NoError(t, store.Close())
	_, body = get(t, s, "/health")
	assert.Equal(t, "disconnected", body["database"])
	assert.Equal(t, "Using sample data", body["message"])
}

func TestStatsHonoursHours(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	_, body := get(t, s, "/api/dashboard/stats")
	stats := body["general_stats"].(map[string]any)
	assert.Equal(t, 1.0, stats["total_records"])
	assert.Equal(t, 24.0, body["time_range_hours"])

	_, body = get(t, s, "/api/dashboard/stats?hours=48")
	stats = body["general_stats"].(map[string]any)
	assert.Equal(t, 2.0, stats["total_records"])
	assert.Len(t, body["sentiment_distribution"], 2)
}

func TestInvalidHoursIsRejected(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	for _, hours := range []string{"abc", "0", "-5"} {
		rec, body := get(t, s, "/api/stocks/prices_by_symbol?hours="+hours)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, hours)
		assert.Equal(t, "hours must be a positive integer", body["detail"])
	}
}

func TestTimelineInterval(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	_, body := get(t, s, "/api/sentiment/timeline?hours=48&interval=day")
	assert.Equal(t, "day", body["interval"])
	assert.Len(t, body["timeline"], 2)

	_, body = get(t, s, "/api/sentiment/timeline?interval=week")
	assert.Equal(t, "hour", body["interval"])
	assert.Len(t, body["timeline"], 1)
}

func TestNewsLimit(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	_, body := get(t, s, "/api/news/latest?limit=1")
	assert.Len(t, body["news"], 1)
	assert.Equal(t, 1.0, body["total_count"])

	rec, body := get(t, s, "/api/news/latest?limit=0")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body["detail"], "limit must be between")
}

func TestUnknownRouteHasDetail(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rec, body := get(t, s, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", body["detail"])
}

func TestStoreFailureIsServiceUnavailable(t *testing.T) {
	s, store := newTestServer(t, testConfig())
	require.NoError(t, store.Close())

	rec, body := get(t, s, "/api/correlation/analysis")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "database unavailable", body["detail"])
}

func login(s *Server, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := login(s, "demo", "secret")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AccessToken string   `json:"access_token"`
		TokenType   string   `json:"token_type"`
		User        api.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bearer", body.TokenType)
	assert.Equal(t, "demo", body.User.Username)

	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(body.AccessToken, &claims)
	require.NoError(t, err)
	assert.Equal(t, "demo", claims.Subject)
	assert.Equal(t, now.Add(DefaultTokenTTL), claims.ExpiresAt.Time.UTC())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.AccessToken)
	me := httptest.NewRecorder()
	s.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"username":"demo"`)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := login(s, "demo", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Incorrect username or password"}`, rec.Body.String())
}

func TestMeRejectsForeignToken(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	other := New(newTestStore(t), Config{User: "demo", Password: "secret", Secret: "other"},
		WithClock(func() time.Time { return now }))
	token, err := other.issueToken("demo")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, body := get(t, s, "/auth/me")
	assert.Equal(t, "Could not validate credentials", body["detail"])
}

func TestRateLimitAndMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.RatePerSec = 1
	cfg.Burst = 1
	s, _ := newTestServer(t, cfg)

	rec, _ := get(t, s, "/api/news/latest")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := get(t, s, "/api/news/latest")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Rate limit exceeded", body["detail"])
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// metrics are never rate limited
	rec, _ = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, "sentidash_fixture_rate_limited_total 1")
	assert.Contains(t, out, `sentidash_fixture_requests_total{method="GET",route="/api/news/latest",status="429"} 1`)
	assert.Contains(t, out, `sentidash_fixture_requests_total{method="GET",route="/api/news/latest",status="200"} 1`)
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	clock := now
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))
	assert.Equal(t, 2, rl.Tracked())

	clock = clock.Add(10 * time.Minute)
	assert.True(t, rl.allow("10.0.0.3"))
	assert.Equal(t, 1, rl.Tracked())
}

func TestClientAgainstFixture(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	ts := httptest.NewServer(s)
	defer ts.Close()

	ctx := context.Background()
	client := api.NewClient(ts.URL)

	stats, err := client.Stats(ctx, query.Last7Days)
	require.NoError(t, err)
	assert.Equal(t, 2.0, stats.TotalRecords.Value)
	assert.Len(t, stats.Distribution, 2)

	prices, err := client.StockPrices(ctx, query.Last24Hours)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "AAPL", prices[0].Symbol)

	corr, err := client.Correlation(ctx, query.Last7Days)
	require.NoError(t, err)
	require.Len(t, corr, 2)
	assert.Equal(t, "Positive", corr[0].SentimentCategory)
	assert.False(t, corr[0].CorrelationCoefficient.Set)

	news, err := client.LatestNews(ctx, 20)
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "Apple rallies", news[0].Title)
	assert.Equal(t, "Shares & options", news[0].Description)
	assert.False(t, news[1].SentimentScore.Set)

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.True(t, health.Healthy())

	session, err := client.Login(ctx, "demo", "secret")
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTokenTTL), session.ExpiresAt.UTC())

	_, err = client.Login(ctx, "demo", "nope")
	require.ErrorIs(t, err, api.ErrStatus)
	assert.Equal(t, "Incorrect username or password", api.Message(err))
}

func TestOpenStoreSeedsEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(ctx, "", sqlite.SeedOptions{Now: now, Hours: 24})
	require.NoError(t, err)
	defer store.Close()

	empty, err := store.IsEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)
}
