package cache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"storyvault/internal/config"
)

// HTTPDoer describes the HTTP client used for image downloads.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Download is the result of fetching one remote image.
type Download struct {
	Data        []byte
	ContentType string
}

// Downloader fetches remote image bytes. Implementations must honor context
// cancellation.
type Downloader interface {
	Download(ctx context.Context, networkURL string) (Download, error)
}

// HTTPDownloader fetches images over HTTP with a size cap and per-request
// timeout.
type HTTPDownloader struct {
	Client    HTTPDoer
	UserAgent string
	MaxSize   int64
	Timeout   time.Duration
}

// NewHTTPDownloader constructs a downloader from configuration.
func NewHTTPDownloader(cfg *config.Config) *HTTPDownloader {
	d := &HTTPDownloader{
		Client:  http.DefaultClient,
		MaxSize: 64 << 20,
		Timeout: 120 * time.Second,
	}
	if cfg != nil {
		d.UserAgent = cfg.Downloads.UserAgent
		if cfg.Downloads.MaxSizeBytes > 0 {
			d.MaxSize = cfg.Downloads.MaxSizeBytes
		}
		if cfg.Downloads.Timeout > 0 {
			d.Timeout = time.Duration(cfg.Downloads.Timeout) * time.Second
		}
	}
	return d
}

// Download fetches the image bytes at networkURL.
func (d *HTTPDownloader) Download(ctx context.Context, networkURL string) (Download, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, networkURL, nil)
	if err != nil {
		return Download{}, fmt.Errorf("build download request: %w", err)
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Download{}, fmt.Errorf("download %s: %w", networkURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Download{}, fmt.Errorf("download %s: unexpected status %d", networkURL, resp.StatusCode)
	}

	limit := d.MaxSize
	if limit <= 0 {
		limit = 64 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Download{}, fmt.Errorf("read %s: %w", networkURL, err)
	}
	if int64(len(data)) > limit {
		return Download{}, fmt.Errorf("download %s: exceeds size limit of %d bytes", networkURL, limit)
	}

	return Download{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}
