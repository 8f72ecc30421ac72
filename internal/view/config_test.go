package view

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sentidash/sentidash/internal/config"
	"github.com/sentidash/sentidash/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T, env map[string]string) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	t.Setenv("SENTIDASH_ENV_FILE", filepath.Join(tmp, "missing.env"))
	for k, v := range env {
		t.Setenv(k, v)
	}
	config.Load()
}

func TestHoursFromConfig(t *testing.T) {
	loadConfig(t, nil)
	assert.Equal(t, query.Last24Hours, HoursFromConfig())

	config.Set("default_hours", "168")
	assert.Equal(t, query.Last7Days, HoursFromConfig())

	config.Set("default_hours", "5")
	assert.Equal(t, query.Last24Hours, HoursFromConfig())
}

func TestNewsLimitFromConfig(t *testing.T) {
	loadConfig(t, nil)
	assert.Equal(t, DefaultNewsLimit, NewsLimitFromConfig())

	config.Set("news_limit", "50")
	assert.Equal(t, 50, NewsLimitFromConfig())

	config.Set("news_limit", "7")
	assert.Equal(t, DefaultNewsLimit, NewsLimitFromConfig())
}

func TestOptionsFromConfigSetsPageSize(t *testing.T) {
	loadConfig(t, map[string]string{"SENTIDASH_PAGE_SIZE": "3"})

	p := NewSentiment(new(mockSource), query.Last24Hours, OptionsFromConfig()...)
	assert.Equal(t, 3, p.PageState().Size)
}

func TestOptionsFromConfigSetsSearchMode(t *testing.T) {
	loadConfig(t, map[string]string{"SENTIDASH_SEARCH_MODE": "token"})
	src := new(mockSource)
	src.On("SentimentBySymbol", mock.Anything, query.Last24Hours).Return(symbols("AAPL", "MSFT"), nil).Once()

	p := NewSentiment(src, query.Last24Hours, OptionsFromConfig()...)
	LoadPage(context.Background(), p)

	// both tokens must occur in the symbol
	_, err := p.Set(SettingSearch, "aa ms")
	require.NoError(t, err)
	assert.Equal(t, 0, p.View().TotalCount)

	_, err = p.Set(SettingSearch, "aa pl")
	require.NoError(t, err)
	assert.Equal(t, 1, p.View().TotalCount)
}
