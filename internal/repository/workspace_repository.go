package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studyrag/internal/model"
)

type WorkspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) Create(workspace *model.Workspace) error {
	if err := r.db.Create(workspace).Error; err != nil {
		return fmt.Errorf("create workspace failed: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) Save(workspace *model.Workspace) error {
	if err := r.db.Save(workspace).Error; err != nil {
		return fmt.Errorf("save workspace failed: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) GetByIDAndUserID(id, userID uint) (*model.Workspace, error) {
	var workspace model.Workspace
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&workspace).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query workspace failed: %w", err)
	}
	return &workspace, nil
}

func (r *WorkspaceRepository) ListByUserID(userID uint) ([]model.Workspace, error) {
	var workspaces []model.Workspace
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&workspaces).Error; err != nil {
		return nil, fmt.Errorf("list workspaces failed: %w", err)
	}
	return workspaces, nil
}

func (r *WorkspaceRepository) ListByUserIDAndCategory(userID uint, category string) ([]model.Workspace, error) {
	var workspaces []model.Workspace
	if err := r.db.Where("user_id = ? AND category = ?", userID, category).Order("created_at DESC").Find(&workspaces).Error; err != nil {
		return nil, fmt.Errorf("list workspaces by category failed: %w", err)
	}
	return workspaces, nil
}

func (r *WorkspaceRepository) DeleteByIDAndUserID(id, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Workspace{}).Error; err != nil {
		return fmt.Errorf("delete workspace failed: %w", err)
	}
	return nil
}
