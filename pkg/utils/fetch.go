package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("file not found on server")

// DefaultMaxOutlineBytes bounds a downloaded outline file.
const DefaultMaxOutlineBytes = 256 << 20

// IsURL reports whether src should be fetched over HTTP rather than opened locally.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// CacheFileName is the local file name used for a downloaded URL.
func CacheFileName(url string) string {
	url = strings.TrimSuffix(url, "/")
	if i := strings.Index(url, "?"); i != -1 {
		url = url[:i]
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// OutlineSource opens country outline GeoJSON from a local path or a URL.
// URLs are downloaded into CacheDir once and read from disk afterwards.
type OutlineSource struct {
	CacheDir string
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// MaxBytes defaults to DefaultMaxOutlineBytes.
	MaxBytes int64
}

// Open returns a reader for src. Local paths never touch CacheDir.
func (s OutlineSource) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	if !IsURL(src) {
		return os.Open(src)
	}
	if err := os.MkdirAll(s.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	local := filepath.Join(s.CacheDir, CacheFileName(src))
	if _, err := os.Stat(local); errors.Is(err, os.ErrNotExist) {
		if err := s.download(ctx, src, local); err != nil {
			return nil, err
		}
	} else {
		log.Debug().Str("path", local).Msg("Using cached outlines")
	}
	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return f, nil
}

// download writes url to dst through a temp file in the same directory, so
// dst either holds the complete body or does not exist.
func (s OutlineSource) download(ctx context.Context, url, dst string) error {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("fetch %s: %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".outlines-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxOutlineBytes
	}
	n, err := io.Copy(tmp, io.LimitReader(resp.Body, limit+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	if n > limit {
		return fmt.Errorf("fetch %s: larger than %d bytes", url, limit)
	}
	log.Info().Str("url", url).Int64("bytes", n).Msg("Downloaded outlines")
	return os.Rename(tmp.Name(), dst)
}
