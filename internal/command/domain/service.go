package domain

import (
	"context"
	"errors"
)

// Store is the authoritative set of command rows.
type Store interface {
	// Insert appends a row; it never deduplicates.
	Insert(ctx context.Context, guildID, name, response, author string) error
	// Lookup returns every row for (guildID, name). No rows is not an error.
	Lookup(ctx context.Context, guildID, name string) ([]Command, error)
	// Delete removes every row for (guildID, name) and returns how many went.
	Delete(ctx context.Context, guildID, name string) (int64, error)
}

var (
	ErrStorage      = errors.New("command_storage")
	ErrInvalidGuild = errors.New("invalid_guild")
	ErrInvalidName  = errors.New("invalid_name")
)
