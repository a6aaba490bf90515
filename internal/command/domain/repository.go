package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cmd *Command) error
	FindByName(ctx context.Context, db *gorm.DB, guildID, name string) ([]Command, error)
	DeleteByName(ctx context.Context, db *gorm.DB, guildID, name string) (int64, error)
}
