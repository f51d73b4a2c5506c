package extract_service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Fetcher dereferences a file locator into its bytes.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// HTTPFetcher fetches http(s) locators over the network. file:// URLs and
// bare paths are read from disk only when AllowLocal is set.
type HTTPFetcher struct {
	Client     *http.Client
	MaxBytes   int64
	AllowLocal bool
}

func NewHTTPFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: maxBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	u, err := url.Parse(locator)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// bare path, or a windows drive letter parsed as a scheme
		return f.readLocal(locator)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, locator)
	case "file":
		return f.readLocal(u.Path)
	default:
		return nil, fmt.Errorf("unsupported locator scheme: %s", u.Scheme)
	}
}

func (f *HTTPFetcher) fetchHTTP(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch file: unexpected status %d", resp.StatusCode)
	}

	return f.readLimited(resp.Body)
}

func (f *HTTPFetcher) readLocal(path string) ([]byte, error) {
	if !f.AllowLocal {
		return nil, fmt.Errorf("local file access is disabled: only http and https locators are accepted")
	}
	return f.readFile(path)
}

func (f *HTTPFetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return f.readLimited(file)
}

func (f *HTTPFetcher) readLimited(r io.Reader) ([]byte, error) {
	if f.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, f.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, fmt.Errorf("file exceeds the %d byte limit", f.MaxBytes)
	}
	return data, nil
}
