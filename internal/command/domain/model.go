package domain

import "time"

// Command is one registered response variant. Several rows may share the
// same (GuildID, Name); the resolver picks among them.
type Command struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	GuildID   string    `gorm:"column:guild_id;not null;index:ix_commands_guild_command,priority:1"`
	Name      string    `gorm:"column:command;not null;index:ix_commands_guild_command,priority:2"`
	Response  string    `gorm:"column:response;type:text;not null"`
	CreatedBy string    `gorm:"column:created_by;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Command) TableName() string { return "commands" }
