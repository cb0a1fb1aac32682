package repository

import (
	"fmt"

	"gorm.io/gorm"

	"studyrag/internal/model"
)

type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(upload *model.Upload) error {
	if err := r.db.Create(upload).Error; err != nil {
		return fmt.Errorf("create upload record failed: %w", err)
	}
	return nil
}

func (r *UploadRepository) ListByWorkspaceID(workspaceID uint) ([]model.Upload, error) {
	var uploads []model.Upload
	if err := r.db.Where("workspace_id = ?", workspaceID).Order("created_at DESC").Find(&uploads).Error; err != nil {
		return nil, fmt.Errorf("list uploads failed: %w", err)
	}
	return uploads, nil
}

func (r *UploadRepository) DeleteByWorkspaceID(workspaceID uint) error {
	if err := r.db.Where("workspace_id = ?", workspaceID).Delete(&model.Upload{}).Error; err != nil {
		return fmt.Errorf("delete uploads by workspace failed: %w", err)
	}
	return nil
}
