package domain

// DefaultTop is the number of entries shown on the leaderboard.
const DefaultTop = 10

// Score is one leaderboard entry.
type Score struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// RankKey is the sorted set holding the guild's invocation counts.
func RankKey(guildID string) string { return guildID + ":rank" }

// AliasKey is the hash mapping source names to destination names.
func AliasKey(guildID string) string { return guildID + ":alias" }
