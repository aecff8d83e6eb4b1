package extrabox

import (
	"context"
	"errors"
)

// ErrInvalidName is returned for a player name that produces an empty key.
var ErrInvalidName = errors.New("invalid player name")

// Store defines the interface for the per-player extra-box counters.
type Store interface {
	Increment(ctx context.Context, name string) (int, error)
	Get(ctx context.Context, name string) (int, error)
	All(ctx context.Context) ([]Counter, error)
}
