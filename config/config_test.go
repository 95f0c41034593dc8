package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stockdesk/krfeed/mst"
	"github.com/stockdesk/krfeed/rss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir into an empty directory so a stray krfeed.yaml cannot leak in.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	v, err := New()
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, rss.DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, mst.KospiURL, cfg.KospiURL)
	assert.Equal(t, mst.KosdaqURL, cfg.KosdaqURL)
	assert.Equal(t, ".", cfg.WorkDir)
	assert.Equal(t, "public/data/kr_stocks.csv", cfg.StocksCSV)
	assert.Equal(t, "public/data/ai_news.csv", cfg.NewsCSV)
	assert.Empty(t, cfg.ParquetPath)
	assert.Empty(t, cfg.DBPath)
	assert.Zero(t, cfg.HTTPTimeout)
	assert.False(t, cfg.InsecureTLS)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("KRFEED_FEED_URL", "https://feed.test/rss")
	t.Setenv("KRFEED_STOCKS_CSV", "/tmp/out/stocks.csv")
	t.Setenv("KRFEED_HTTP_TIMEOUT", "15s")
	t.Setenv("KRFEED_DB_PATH", "/tmp/krfeed.duckdb")
	t.Setenv("KRFEED_INSECURE_TLS", "true")

	v, err := New()
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://feed.test/rss", cfg.FeedURL)
	assert.Equal(t, "/tmp/out/stocks.csv", cfg.StocksCSV)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/tmp/krfeed.duckdb", cfg.DBPath)
	assert.True(t, cfg.InsecureTLS)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)
	content := "news_csv: out/news.csv\nwork_dir: cache\n"
	require.NoError(t, os.WriteFile(filepath.Join(".", "krfeed.yaml"), []byte(content), 0644))

	v, err := New()
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "out/news.csv", cfg.NewsCSV)
	assert.Equal(t, "cache", cfg.WorkDir)
}

func TestLoad_MissingRequired(t *testing.T) {
	isolate(t)

	v, err := New()
	require.NoError(t, err)
	v.Set("stocks_csv", "")

	_, err = Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stocks_csv")
}

func TestLoad_NegativeTimeout(t *testing.T) {
	isolate(t)

	v, err := New()
	require.NoError(t, err)
	v.Set("http_timeout", "-1s")

	_, err = Load(v)
	assert.Error(t, err)
}
