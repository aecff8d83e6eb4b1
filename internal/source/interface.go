package source

import "context"

// Fetcher returns the raw day dataset payload.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}
