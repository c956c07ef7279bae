package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"message-api/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) List(ctx context.Context) ([]model.Message, error) {
	messages := make([]model.Message, 0)
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// UpdateBody replaces the body of one message inside a single transaction and
// returns the updated row, or nil when the id is unknown.
func (r *MessageRepository) UpdateBody(ctx context.Context, id uint, body string) (*model.Message, error) {
	var updated *model.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message model.Message
		if err := tx.First(&message, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Model(&message).Update("body", body).Error; err != nil {
			return err
		}
		message.Body = body
		updated = &message
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update message failed: %w", err)
	}
	return updated, nil
}

// Delete removes one message inside a single transaction and returns the row
// as it was, or nil when the id is unknown.
func (r *MessageRepository) Delete(ctx context.Context, id uint) (*model.Message, error) {
	var deleted *model.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message model.Message
		if err := tx.First(&message, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Delete(&message).Error; err != nil {
			return err
		}
		deleted = &message
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete message failed: %w", err)
	}
	return deleted, nil
}
