package utils

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestOpen(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.geojson" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[]}`)
	}))
	defer srv.Close()
	dir := t.TempDir()

	t.Run("DownloadsOnce", func(t *testing.T) { testOpenDownloadsOnce(t, srv.URL+"/world.geojson", dir, &hits) })
	t.Run("NotFound", func(t *testing.T) { testOpenNotFound(t, srv.URL+"/missing.geojson", dir) })
	t.Run("LocalFile", func(t *testing.T) { testOpenLocalFile(t, dir) })
	t.Run("TooLarge", func(t *testing.T) { testOpenTooLarge(t, srv.URL+"/huge.geojson", dir) })
	t.Run("Canceled", func(t *testing.T) { testOpenCanceled(t, srv.URL+"/late.geojson", dir) })
}

func testOpenDownloadsOnce(t *testing.T, url, dir string, hits *atomic.Int32) {
	for i := 0; i < 2; i++ {
		rc, err := OutlineSource{CacheDir: dir}.Open(context.Background(), url)
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil || len(data) == 0 {
			t.Fatalf("read #%d: %q, %v", i, data, err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times; want 1", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "world.geojson")); err != nil {
		t.Errorf("cached file missing: %v", err)
	}
}

func testOpenNotFound(t *testing.T, url, dir string) {
	if _, err := (OutlineSource{CacheDir: dir}).Open(context.Background(), url); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.geojson")); !os.IsNotExist(err) {
		t.Errorf("failed download left a file behind: %v", err)
	}
}

func testOpenLocalFile(t *testing.T, dir string) {
	path := filepath.Join(dir, "local.geojson")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	rc, err := OutlineSource{CacheDir: filepath.Join(dir, "unused")}.Open(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	_ = rc.Close()
	if _, err := os.Stat(filepath.Join(dir, "unused")); !os.IsNotExist(err) {
		t.Error("local open should not create the cache dir")
	}
}

func testOpenTooLarge(t *testing.T, url, dir string) {
	src := OutlineSource{CacheDir: dir, MaxBytes: 8}
	if _, err := src.Open(context.Background(), url); err == nil {
		t.Fatal("expected oversized download to fail")
	}
	if _, err := os.Stat(filepath.Join(dir, "huge.geojson")); !os.IsNotExist(err) {
		t.Errorf("oversized download left a file behind: %v", err)
	}
}

func testOpenCanceled(t *testing.T, url, dir string) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (OutlineSource{CacheDir: dir}).Open(ctx, url); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "late.geojson")); !os.IsNotExist(err) {
		t.Errorf("canceled download left a file behind: %v", err)
	}
}

func TestCacheFileName(t *testing.T) {
	tests := []struct{ url, want string }{
		{"https://example.com/data/world.geojson", "world.geojson"},
		{"https://example.com/data/world.geojson?v=2", "world.geojson"},
		{"https://example.com/countries/", "countries"},
	}
	for _, tt := range tests {
		if got := CacheFileName(tt.url); got != tt.want {
			t.Errorf("CacheFileName(%q) = %q; want %q", tt.url, got, tt.want)
		}
	}
}
