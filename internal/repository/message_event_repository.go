package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"message-api/internal/model"
)

type MessageEventRepository struct {
	db *gorm.DB
}

func NewMessageEventRepository(db *gorm.DB) *MessageEventRepository {
	return &MessageEventRepository{db: db}
}

func (r *MessageEventRepository) Create(ctx context.Context, event *model.MessageEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create message event failed: %w", err)
	}
	return nil
}
