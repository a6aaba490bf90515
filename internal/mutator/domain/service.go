package domain

import (
	"context"
	"errors"
)

// Verbs, as used in logs and metrics.
const (
	VerbAdd         = "add"
	VerbRemove      = "remove"
	VerbAliasAdd    = "alias_add"
	VerbAliasRemove = "alias_remove"
)

// Service is the write side. A nil error means the verb succeeded.
type Service interface {
	Add(ctx context.Context, guildID, author, name, response string) error
	// Remove purges the score first and then every row for name. Removing a
	// name that does not exist succeeds.
	Remove(ctx context.Context, guildID, name string) error
	AliasAdd(ctx context.Context, guildID, src, dst string) error
	AliasRemove(ctx context.Context, guildID, src string) error
}

var ErrInvalidArgs = errors.New("invalid_args")
