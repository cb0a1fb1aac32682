package app

import (
	"context"
	"strings"

	"studyrag/internal/model"
	"studyrag/internal/rag"
	"studyrag/internal/repository"
)

// WorkspaceService manages study workspaces. Deleting a workspace also
// removes its vector index files, upload records, messages and cached
// history, so no orphaned state survives the workspace.
type WorkspaceService struct {
	workspaceRepo *repository.WorkspaceRepository
	uploadRepo    *repository.UploadRepository
	messageRepo   *repository.MessageRepository
	historyCache  HistoryCache
}

func NewWorkspaceService(
	workspaceRepo *repository.WorkspaceRepository,
	uploadRepo *repository.UploadRepository,
	messageRepo *repository.MessageRepository,
	historyCache HistoryCache,
) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		uploadRepo:    uploadRepo,
		messageRepo:   messageRepo,
		historyCache:  historyCache,
	}
}

type CreateWorkspaceInput struct {
	UserID   uint
	Name     string
	Category string
}

func (s *WorkspaceService) Create(input CreateWorkspaceInput) (*model.Workspace, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "New Workspace"
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = "notes"
	}

	workspace := &model.Workspace{
		UserID:   input.UserID,
		Name:     name,
		Category: category,
	}
	if err := s.workspaceRepo.Create(workspace); err != nil {
		return nil, err
	}
	return workspace, nil
}

func (s *WorkspaceService) Get(userID, workspaceID uint) (*model.Workspace, error) {
	if userID == 0 || workspaceID == 0 {
		return nil, ErrInvalidInput
	}
	workspace, err := s.workspaceRepo.GetByIDAndUserID(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrWorkspaceNotFound
	}
	return workspace, nil
}

func (s *WorkspaceService) List(userID uint, category string) ([]model.Workspace, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	category = strings.TrimSpace(category)
	if category != "" {
		return s.workspaceRepo.ListByUserIDAndCategory(userID, category)
	}
	return s.workspaceRepo.ListByUserID(userID)
}

// Delete removes the workspace and everything derived from it: index files,
// uploads, messages and the cached history.
func (s *WorkspaceService) Delete(ctx context.Context, userID, workspaceID uint) error {
	if userID == 0 || workspaceID == 0 {
		return ErrInvalidInput
	}

	workspace, err := s.workspaceRepo.GetByIDAndUserID(workspaceID, userID)
	if err != nil {
		return err
	}
	if workspace == nil {
		return ErrWorkspaceNotFound
	}

	if err := rag.RemoveIndex(workspace.VectorIndexPath); err != nil {
		return err
	}
	if err := s.uploadRepo.DeleteByWorkspaceID(workspaceID); err != nil {
		return err
	}
	if err := s.messageRepo.DeleteByWorkspaceID(workspaceID); err != nil {
		return err
	}
	if err := s.workspaceRepo.DeleteByIDAndUserID(workspaceID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, workspaceID)
	}
	return nil
}
