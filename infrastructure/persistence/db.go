package persistence

import (
	"fmt"

	"github.com/docubrain/docubrain/internal/database"
)

// AutoMigrate creates or updates the database schema.
func AutoMigrate(db database.Database) error {
	if err := db.GORM().AutoMigrate(&RecordModel{}, &TaskModel{}); err != nil {
		return fmt.Errorf("auto-migrate schema: %w", err)
	}
	return nil
}
