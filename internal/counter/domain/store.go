package domain

import (
	"context"
	"errors"
)

// Store owns invocation counts and aliases. Every failure it returns wraps
// ErrCounter.
type Store interface {
	Incr(ctx context.Context, guildID, name string) error
	Forget(ctx context.Context, guildID, name string) error
	// Top returns up to k entries by descending score; k <= 0 means DefaultTop.
	Top(ctx context.Context, guildID string, k int) ([]Score, error)

	AliasSet(ctx context.Context, guildID, src, dst string) error
	// AliasGet reports ok=false with a nil error when src has no alias.
	AliasGet(ctx context.Context, guildID, src string) (dst string, ok bool, err error)
	AliasDelete(ctx context.Context, guildID, src string) error
}

var (
	ErrCounter    = errors.New("counter_storage")
	ErrInvalidKey = errors.New("invalid_counter_key")
)
