package repository

import (
	"fmt"

	"gorm.io/gorm"

	"studyrag/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByWorkspaceID(workspaceID uint, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var messages []model.Message
	if err := r.db.Where("workspace_id = ?", workspaceID).Order("created_at ASC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) DeleteByWorkspaceID(workspaceID uint) error {
	if err := r.db.Where("workspace_id = ?", workspaceID).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("delete messages by workspace failed: %w", err)
	}
	return nil
}
