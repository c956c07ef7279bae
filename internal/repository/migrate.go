package repository

import (
	"fmt"

	"gorm.io/gorm"

	"message-api/internal/model"
)

// Migrate creates the tables if they do not exist yet.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Message{}, &model.MessageEvent{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
