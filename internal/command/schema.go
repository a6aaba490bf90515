package command

import (
	"context"

	"github.com/TechharaInc/Tanaka/internal/command/domain"
	"gorm.io/gorm"
)

// EnsureSchema creates the commands table and its lookup index when absent.
func EnsureSchema(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&domain.Command{})
}
