package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
)

// HTTPFetcher downloads the dataset from a URL.
type HTTPFetcher struct {
	httpClient *http.Client
	URL        string
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher for url with the default client timeout.
func NewHTTPFetcher(url string) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		URL:        url,
	}
}

// Fetch downloads the payload. Transport failures and non-OK responses are
// returned as *daystats.NetworkError.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, &daystats.NetworkError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", "BallcrusherStats/1.0")

	log.Debug("Fetching dataset", "url", f.URL)
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &daystats.NetworkError{Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Warn("Dataset source returned non-OK status", "status", resp.StatusCode, "body", string(body))
		return nil, &daystats.NetworkError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &daystats.NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	log.Debug("Fetched dataset", "bytes", len(body))
	return body, nil
}
