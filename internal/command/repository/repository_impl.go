package repository

import (
	"context"

	"github.com/TechharaInc/Tanaka/internal/command/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert leaves id and created_at to the database.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, cmd *domain.Command) error {
	if cmd == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO commands (guild_id, command, response, created_by) VALUES (?, ?, ?, ?)`,
		cmd.GuildID,
		cmd.Name,
		cmd.Response,
		cmd.CreatedBy,
	).Error
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, guildID, name string) ([]domain.Command, error) {
	var items []domain.Command
	err := db.WithContext(ctx).Raw(
		`SELECT id, guild_id, command, response, created_by, created_at
		 FROM commands WHERE guild_id = ? AND command = ?`,
		guildID,
		name,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteByName(ctx context.Context, db *gorm.DB, guildID, name string) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM commands WHERE guild_id = ? AND command = ?`,
		guildID,
		name,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
