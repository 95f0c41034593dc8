package utils

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

const userAgent = "krfeed"

// HTTPStatusError reports a response that arrived but was not 2xx.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: server returned status %d", e.URL, e.StatusCode)
}

type clientOptions struct {
	insecureTLS bool
}

type ClientOption func(*clientOptions)

// WithInsecureTLS skips certificate verification. The master-file host has
// served incomplete chains.
func WithInsecureTLS() ClientOption {
	return func(o *clientOptions) { o.insecureTLS = true }
}

// NewHTTPClient builds the shared client. Zero timeout leaves the
// transport default in place. No retry is configured.
func NewHTTPClient(timeout time.Duration, opts ...ClientOption) *resty.Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	client := resty.New().
		SetHeader("User-Agent", userAgent)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	if o.insecureTLS {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	return client
}

// Get fetches url and returns the raw body.
func Get(ctx context.Context, client *resty.Client, url string) ([]byte, error) {
	resp, err := client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to execute GET request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.Bytes(), nil
}

// DownloadFile saves the body of url to targetPath, overwriting it.
func DownloadFile(ctx context.Context, client *resty.Client, url, targetPath string) error {
	body, err := Get(ctx, client, url)
	if err != nil {
		return err
	}
	if err := os.WriteFile(targetPath, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", targetPath, err)
	}
	log.WithFields(log.Fields{"url": url, "bytes": len(body)}).Debug("downloaded")
	return nil
}

// FetchArchive downloads a zip archive, expands it into extractDir and
// removes the archive. The extracted files stay on disk.
func FetchArchive(ctx context.Context, client *resty.Client, url, archivePath, extractDir string) ([]string, error) {
	if err := CheckOutputDir(extractDir); err != nil {
		return nil, err
	}
	if err := DownloadFile(ctx, client, url, archivePath); err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}

	files, err := UnzipFile(archivePath, extractDir)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(archivePath); err != nil {
		return nil, fmt.Errorf("failed to remove archive %s: %w", archivePath, err)
	}
	return files, nil
}
