package domain

import "context"

// Resolution is the outcome of a successful lookup. Name is the command that
// produced the response, which for an alias is the alias target.
type Resolution struct {
	GuildID  string
	Name     string
	Response string
}

// Service turns an invoked token into at most one response.
type Service interface {
	// Resolve performs the lookup without side effects. ok is false when the
	// token resolves to nothing or the store failed.
	Resolve(ctx context.Context, guildID, token string) (Resolution, bool)
	// Record credits the resolved name on the scoreboard. Failures are logged
	// and swallowed.
	Record(ctx context.Context, res Resolution)
	// ResolveAndRecord is Resolve followed by Record for callers with no
	// delivery step in between.
	ResolveAndRecord(ctx context.Context, guildID, token string) (Resolution, bool)
}
