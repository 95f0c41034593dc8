package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stockdesk/krfeed/config"
	"github.com/stockdesk/krfeed/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func masterLine(code, std, name string) string {
	return fmt.Sprintf("%-9s%-12s%-50s%s", code, std, name, "ST1000000000000")
}

func zipOf(t *testing.T, name, utf8Content string) []byte {
	t.Helper()
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte(utf8Content))
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(encoded)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>t</title>
<item><title>one</title><link>https://n/1</link><pubDate>Tue, 05 Mar 2024 09:00:00 +0900</pubDate></item>
<item><title>two</title><link>https://n/2</link><pubDate>Tue, 05 Mar 2024 10:00:00 +0900</pubDate></item>
</channel></rss>`

func newSourceServer(t *testing.T, feedStatus int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(sourceMux(t, feedStatus))
	t.Cleanup(server.Close)
	return server
}

func sourceMux(t *testing.T, feedStatus int) *http.ServeMux {
	t.Helper()
	kospi := zipOf(t, "kospi_code.mst",
		masterLine("005930", "KR7005930003", "삼성전자")+"\n"+
			masterLine("000660", "KR7000660001", "SK하이닉스")+"\n")
	kosdaq := zipOf(t, "kosdaq_code.mst",
		masterLine("035720", "KR7035720002", "카카오")+"\n")

	mux := http.NewServeMux()
	mux.HandleFunc("/kospi_code.mst.zip", func(w http.ResponseWriter, r *http.Request) { w.Write(kospi) })
	mux.HandleFunc("/kosdaq_code.mst.zip", func(w http.ResponseWriter, r *http.Request) { w.Write(kosdaq) })
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(feedStatus)
		w.Write([]byte(testFeed))
	})
	return mux
}

func testConfig(t *testing.T, server *httptest.Server) *config.Config {
	t.Helper()
	require.NoError(t, SetupLogging("error", false))
	dir := t.TempDir()
	return &config.Config{
		FeedURL:   server.URL + "/rss",
		KospiURL:  server.URL + "/kospi_code.mst.zip",
		KosdaqURL: server.URL + "/kosdaq_code.mst.zip",
		WorkDir:   filepath.Join(dir, "work"),
		StocksCSV: filepath.Join(dir, "public", "data", "kr_stocks.csv"),
		NewsCSV:   filepath.Join(dir, "public", "data", "ai_news.csv"),
		LogLevel:  "error",
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestUpdateStocks(t *testing.T) {
	server := newSourceServer(t, http.StatusOK)
	cfg := testConfig(t, server)

	require.NoError(t, UpdateStocks(context.Background(), cfg))

	assert.Equal(t, [][]string{
		{"code", "standardCode", "name"},
		{"005930", "KR7005930003", "삼성전자"},
		{"000660", "KR7000660001", "SK하이닉스"},
		{"035720", "KR7035720002", "카카오"},
	}, readCSV(t, cfg.StocksCSV))

	assert.NoFileExists(t, filepath.Join(cfg.WorkDir, "kospi.zip"))
	assert.NoFileExists(t, filepath.Join(cfg.WorkDir, "kosdaq.zip"))
	assert.FileExists(t, filepath.Join(cfg.WorkDir, "kospi_code.mst"))
	assert.FileExists(t, filepath.Join(cfg.WorkDir, "kosdaq_code.mst"))
}

func TestUpdateStocks_RecreatesDeletedOutputDir(t *testing.T) {
	server := newSourceServer(t, http.StatusOK)
	cfg := testConfig(t, server)

	require.NoError(t, UpdateStocks(context.Background(), cfg))
	require.NoError(t, os.RemoveAll(filepath.Dir(cfg.StocksCSV)))

	require.NoError(t, UpdateStocks(context.Background(), cfg))
	assert.Len(t, readCSV(t, cfg.StocksCSV), 4)
}

func TestUpdateStocks_WithParquet(t *testing.T) {
	server := newSourceServer(t, http.StatusOK)
	cfg := testConfig(t, server)
	cfg.ParquetPath = filepath.Join(t.TempDir(), "kr_stocks.parquet")

	require.NoError(t, UpdateStocks(context.Background(), cfg))
	assert.FileExists(t, cfg.ParquetPath)
}

func TestUpdateStocks_DownloadFailure(t *testing.T) {
	server := newSourceServer(t, http.StatusOK)
	cfg := testConfig(t, server)
	cfg.KosdaqURL = server.URL + "/missing.zip"

	err := UpdateStocks(context.Background(), cfg)
	require.Error(t, err)
	assert.NoFileExists(t, cfg.StocksCSV)
}

func TestUpdateNews(t *testing.T) {
	server := newSourceServer(t, http.StatusOK)
	cfg := testConfig(t, server)

	require.NoError(t, UpdateNews(context.Background(), cfg))
	assert.Equal(t, [][]string{
		{"title", "link", "published"},
		{"one", "https://n/1", "Tue, 05 Mar 2024 09:00:00 +0900"},
		{"two", "https://n/2", "Tue, 05 Mar 2024 10:00:00 +0900"},
	}, readCSV(t, cfg.NewsCSV))
}

func TestCron_LoadsDatabase(t *testing.T) {
	server := newSourceServer(t, http.StatusOK)
	cfg := testConfig(t, server)
	cfg.DBPath = filepath.Join(t.TempDir(), "db", "krfeed.duckdb")

	require.NoError(t, Cron(context.Background(), cfg))
	assert.FileExists(t, cfg.DBPath)
	assert.FileExists(t, cfg.StocksCSV)
	assert.FileExists(t, cfg.NewsCSV)
}

func TestCron_FeedFailureStillWritesStocks(t *testing.T) {
	server := newSourceServer(t, http.StatusInternalServerError)
	cfg := testConfig(t, server)

	err := Cron(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update_news")
	assert.FileExists(t, cfg.StocksCSV)
	assert.NoFileExists(t, cfg.NewsCSV)
}

func TestLoadDB_RequiresPath(t *testing.T) {
	server := newSourceServer(t, http.StatusOK)
	cfg := testConfig(t, server)
	assert.Error(t, LoadDB(context.Background(), cfg))
}

func TestLoadDB_NothingToLoad(t *testing.T) {
	server := newSourceServer(t, http.StatusOK)
	cfg := testConfig(t, server)
	cfg.DBPath = filepath.Join(t.TempDir(), "x.duckdb")
	assert.Error(t, LoadDB(context.Background(), cfg))
}

func TestSetupLogging_InvalidLevel(t *testing.T) {
	assert.Error(t, SetupLogging("loud", false))
	assert.NoError(t, SetupLogging("loud", true))
}

func TestUpdateStocks_InsecureTLS(t *testing.T) {
	server := httptest.NewTLSServer(sourceMux(t, http.StatusOK))
	t.Cleanup(server.Close)
	cfg := testConfig(t, server)

	err := UpdateStocks(context.Background(), cfg)
	require.Error(t, err)
	assert.NoFileExists(t, cfg.StocksCSV)

	cfg.InsecureTLS = true
	require.NoError(t, UpdateStocks(context.Background(), cfg))
	assert.FileExists(t, cfg.StocksCSV)
}

func TestSearchStocks_AfterCron(t *testing.T) {
	server := newSourceServer(t, http.StatusOK)
	cfg := testConfig(t, server)
	cfg.DBPath = filepath.Join(t.TempDir(), "krfeed.duckdb")
	require.NoError(t, Cron(context.Background(), cfg))

	got, err := SearchStocks(context.Background(), cfg, "하이닉스")
	require.NoError(t, err)
	assert.Equal(t, []model.StockRecord{
		{Code: "000660", StandardCode: "KR7000660001", Name: "SK하이닉스"},
	}, got)
}

func TestSearchStocks_MissingDatabase(t *testing.T) {
	server := newSourceServer(t, http.StatusOK)
	cfg := testConfig(t, server)
	_, err := SearchStocks(context.Background(), cfg, "x")
	assert.Error(t, err)

	cfg.DBPath = filepath.Join(t.TempDir(), "absent.duckdb")
	_, err = SearchStocks(context.Background(), cfg, "x")
	assert.Error(t, err)
	assert.NoFileExists(t, cfg.DBPath)
}
