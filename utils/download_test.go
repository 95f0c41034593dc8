package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	target := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, DownloadFile(context.Background(), NewHTTPClient(0), server.URL, target))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestNewHTTPClient_InsecureTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tls payload"))
	}))
	defer server.Close()

	_, err := Get(context.Background(), NewHTTPClient(0), server.URL)
	assert.Error(t, err, "self-signed certificate must be rejected by default")

	body, err := Get(context.Background(), NewHTTPClient(0, WithInsecureTLS()), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "tls payload", string(body))
}

func TestDownloadFile_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	target := filepath.Join(t.TempDir(), "file.bin")
	err := DownloadFile(context.Background(), NewHTTPClient(0), server.URL, target)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.NoFileExists(t, target)
}

func TestFetchArchive(t *testing.T) {
	payload := buildZip(t, map[string]string{"kosdaq_code.mst": "line\n"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write(payload)
	}))
	defer server.Close()

	dir := t.TempDir()
	archive := filepath.Join(dir, "kosdaq.zip")

	files, err := FetchArchive(context.Background(), NewHTTPClient(0), server.URL, archive, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "kosdaq_code.mst")}, files)
	assert.NoFileExists(t, archive)

	data, err := os.ReadFile(filepath.Join(dir, "kosdaq_code.mst"))
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}

func TestFetchArchive_CorruptArchive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a zip"))
	}))
	defer server.Close()

	dir := t.TempDir()
	_, err := FetchArchive(context.Background(), NewHTTPClient(0), server.URL, filepath.Join(dir, "x.zip"), dir)
	assert.Error(t, err)
}
