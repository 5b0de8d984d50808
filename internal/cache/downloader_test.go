package cache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storyvault/internal/cache"
)

func TestHTTPDownloaderFetchesBytes(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png bytes"))
	}))
	defer server.Close()

	dl := &cache.HTTPDownloader{UserAgent: "storyvault-test/1.0"}
	got, err := dl.Download(context.Background(), server.URL+"/cover.png")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(got.Data) != "png bytes" || got.ContentType != "image/png" {
		t.Fatalf("unexpected download: %#v", got)
	}
	if gotAgent != "storyvault-test/1.0" {
		t.Fatalf("User-Agent = %q", gotAgent)
	}
}

func TestHTTPDownloaderRejectsNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dl := &cache.HTTPDownloader{}
	if _, err := dl.Download(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestHTTPDownloaderEnforcesSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	dl := &cache.HTTPDownloader{MaxSize: 1024}
	_, err := dl.Download(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "size limit") {
		t.Fatalf("expected size limit error, got %v", err)
	}
}

func TestHTTPDownloaderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dl := &cache.HTTPDownloader{}
	if _, err := dl.Download(ctx, "https://cdn.example.com/never.jpg"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
