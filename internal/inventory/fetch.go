package inventory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	fetchTimeout   = 60 * time.Second
	maxBodyBytes   = 32 << 20 // inventories for large projects run to a few MB
	fetchUserAgent = "nitpick/1.0 (+https://github.com/nitpick-dev/nitpick)"
)

// Fetch loads an inventory from a URL or a local path. http(s) sources are
// fetched with a bounded timeout; anything else is treated as a file path.
func Fetch(ctx context.Context, source string) (*Inventory, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetchHTTP(ctx, source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	defer f.Close()
	return Read(f, source)
}

func fetchHTTP(ctx context.Context, url string) (*Inventory, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory body: %w", err)
	}
	return Read(bytes.NewReader(body), url)
}
