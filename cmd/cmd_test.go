package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sentidash/sentidash/internal/colors"
	"github.com/sentidash/sentidash/internal/fixture"
	"github.com/sentidash/sentidash/internal/storage/sqlite"
	"github.com/sentidash/sentidash/internal/tui/state"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFixtureAPI serves seeded demo data for the duration of the test.
func newFixtureAPI(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	store, err := fixture.OpenStore(ctx, "", sqlite.SeedOptions{
		Now:        time.Now(),
		Hours:      48,
		Symbols:    []string{"AAPL", "MSFT"},
		NewsPerDay: 6,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(fixture.New(store, fixture.Config{
		User:       "demo",
		Password:   "secret",
		Secret:     "test-secret",
		RatePerSec: 1000,
		Burst:      1000,
		TokenTTL:   time.Hour,
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command with args and returns stdout and the console
// messages written by colors.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("SENTIDASH_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("SENTIDASH_API_TOKEN", "")

	var out, console bytes.Buffer
	restore := colors.SetOutput(&console, &console)
	t.Cleanup(restore)

	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&console)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), console.String(), err
}

func TestStatsCommand(t *testing.T) {
	url := newFixtureAPI(t)
	out, _, err := run(t, "stats", "--api-url", url, "--hours", "24")
	require.NoError(t, err)
	assert.Contains(t, out, "Total records:")
	assert.Contains(t, out, "Overall sentiment:")
	assert.Contains(t, out, "Page 1 of")
}

func TestSentimentCommandFiltersBySymbol(t *testing.T) {
	url := newFixtureAPI(t)
	out, _, err := run(t, "sentiment", "--api-url", url, "--symbol", "AAPL")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL")
	assert.NotContains(t, out, "MSFT")
	assert.Contains(t, out, "Symbols:")
}

func TestStocksCommandPaging(t *testing.T) {
	url := newFixtureAPI(t)
	out, _, err := run(t, "stocks", "--api-url", url, "--page-size", "5", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Avg close:")
	assert.Contains(t, out, "Page 2 of")
}

func TestDatasetCommandRejectsInvalidFlags(t *testing.T) {
	url := newFixtureAPI(t)

	_, _, err := run(t, "news", "--api-url", url, "--limit", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--limit")

	_, _, err = run(t, "sentiment", "--api-url", url, "--min", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--min")

	_, _, err = run(t, "stocks", "--api-url", url, "--page-size", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--page-size")

	_, _, err = run(t, "news", "--api-url", url, "--symbol", "AAPL")
	require.Error(t, err, "news has no symbol flag")
}

func TestNewsCommandCSVToStdout(t *testing.T) {
	url := newFixtureAPI(t)
	out, _, err := run(t, "news", "--api-url", url, "--limit", "10", "--csv", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "title,description,url,published_at,source_name,sentiment_score,sentiment_subjectivity,sentiment_label", lines[0])
	assert.LessOrEqual(t, len(lines)-1, 10)
}

func TestCorrelationCommandCSVToDirectory(t *testing.T) {
	url := newFixtureAPI(t)
	dir := t.TempDir()
	orig := datasetNow
	datasetNow = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	defer func() { datasetNow = orig }()

	out, _, err := run(t, "correlation", "--api-url", url, "--csv", dir)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "correlation"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "sentiment_category,"))
}

func TestDatasetCommandUnreachableAPI(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	_, console, err := run(t, "sentiment", "--api-url", url)
	require.Error(t, err)
	assert.Equal(t, "could not load Sentiment", err.Error())
	assert.Contains(t, console, "sentiment:")
}

func TestHealthCommand(t *testing.T) {
	url := newFixtureAPI(t)
	out, console, err := run(t, "health", "--api-url", url)
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")
	assert.Contains(t, out, "connected")
	assert.Contains(t, console, "API is healthy")
}

func TestLoginCommand(t *testing.T) {
	url := newFixtureAPI(t)

	out, _, err := run(t, "login", "--api-url", url, "-u", "demo", "-p", "secret", "--token-only")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)

	out, _, err = run(t, "login", "--api-url", url, "-u", "demo", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "User:")
	assert.Contains(t, out, "demo")

	_, _, err = run(t, "login", "--api-url", url, "-u", "demo", "-p", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect username or password")

	_, _, err = run(t, "login", "--api-url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user")
}

func TestRootRunsDashboard(t *testing.T) {
	orig := runDashboard
	defer func() { runDashboard = orig }()

	var got state.Options
	runDashboard = func(ctx context.Context, opts state.Options, _ ...tea.ProgramOption) error {
		got = opts
		return nil
	}

	_, _, err := run(t, "--api-url", "http://127.0.0.1:1")
	require.NoError(t, err)
	require.Len(t, got.Pages, 5)
	assert.Equal(t, "Dashboard", got.Pages[0].Title())
	assert.Equal(t, "News", got.Pages[4].Title())
	assert.Equal(t, ".", got.ExportDir)
	assert.NotNil(t, got.Bus)
	assert.False(t, got.Announce)

	_, _, err = run(t, "tui", "--announce")
	require.NoError(t, err)
	assert.True(t, got.Announce)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "sentidash v"))
}

func TestHelpCommand(t *testing.T) {
	out, _, err := run(t, "help")
	require.NoError(t, err)
	assert.Contains(t, out, "COMMANDS:")
	assert.Contains(t, out, "serve-fixture")
	assert.Contains(t, out, "correlation")
}
