package code

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
)

// AssetSource provides the packed additional files sent with the SQLite
// language.
type AssetSource interface {
	Load(ctx context.Context) (string, error)
}

// AssetLoader reads the blob from a URL or a local file and keeps the first
// successful result. Concurrent first loads are not coalesced; each may hit
// the source once.
type AssetLoader struct {
	location string
	client   *http.Client

	mu   sync.Mutex
	blob string
	ok   bool
}

// NewAssetLoader loads from location: an http(s) URL or a file path.
func NewAssetLoader(location string, client *http.Client) *AssetLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &AssetLoader{location: location, client: client}
}

func (l *AssetLoader) Load(ctx context.Context) (string, error) {
	l.mu.Lock()
	if l.ok {
		blob := l.blob
		l.mu.Unlock()
		return blob, nil
	}
	l.mu.Unlock()

	blob, err := l.fetch(ctx)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	l.blob, l.ok = blob, true
	l.mu.Unlock()
	return blob, nil
}

func (l *AssetLoader) fetch(ctx context.Context) (string, error) {
	if l.location == "" {
		return "", fmt.Errorf("no additional files location configured")
	}
	if !strings.HasPrefix(l.location, "http://") && !strings.HasPrefix(l.location, "https://") {
		b, err := os.ReadFile(l.location)
		if err != nil {
			return "", fmt.Errorf("read additional files: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.location, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch additional files: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch additional files: HTTP %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read additional files: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
