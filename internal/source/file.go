package source

import (
	"context"
	"fmt"
	"os"

	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
)

// FileFetcher reads the dataset from a local JSON file.
type FileFetcher struct {
	Path string
}

var _ Fetcher = (*FileFetcher)(nil)

// NewFileFetcher creates a fetcher that reads path on every call.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{Path: path}
}

func (f *FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &daystats.NetworkError{Err: err}
	}
	body, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &daystats.NetworkError{Err: fmt.Errorf("failed to read %s: %w", f.Path, err)}
	}
	return body, nil
}
