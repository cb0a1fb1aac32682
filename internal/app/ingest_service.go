package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"studyrag/internal/config"
	"studyrag/internal/model"
	"studyrag/internal/rag"
	"studyrag/internal/repository"
)

var (
	ErrWorkspaceNotFound   = errors.New("workspace not found")
	ErrNoExtractableText   = errors.New("no text extracted from document")
	ErrIngestNotConfigured = errors.New("ingestion is not configured")
)

// IngestService runs the pipeline for one upload: clean, chunk, embed,
// index-and-persist, record provenance. It holds no per-workspace state;
// the workspace's index is opened by path on every call and an exclusive
// file lock serializes concurrent ingests into the same workspace.
type IngestService struct {
	workspaceRepo *repository.WorkspaceRepository
	uploadRepo    *repository.UploadRepository
	chunker       *rag.Chunker
	embedder      *rag.Embedder
	ragCfg        config.RAGConfig
}

func NewIngestService(
	workspaceRepo *repository.WorkspaceRepository,
	uploadRepo *repository.UploadRepository,
	chunker *rag.Chunker,
	embedder *rag.Embedder,
	ragCfg config.RAGConfig,
) *IngestService {
	return &IngestService{
		workspaceRepo: workspaceRepo,
		uploadRepo:    uploadRepo,
		chunker:       chunker,
		embedder:      embedder,
		ragCfg:        ragCfg,
	}
}

type IngestInput struct {
	UserID      uint
	WorkspaceID uint
	FileName    string
	SourcePath  string
	Category    string
	Text        string
	Title       string
	PageCount   int
}

type IngestResult struct {
	Upload             model.Upload `json:"upload"`
	ChunkCount         int          `json:"chunk_count"`
	DegradedEmbeddings int          `json:"degraded_embeddings"`
}

// Ingest processes one extracted source into the workspace's vector index.
// Zero usable chunks is reported as ErrNoExtractableText so the upload
// endpoint can answer with a plain message instead of a stack trace.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if s.chunker == nil || s.embedder == nil {
		return nil, ErrIngestNotConfigured
	}
	if input.UserID == 0 || input.WorkspaceID == 0 {
		return nil, ErrInvalidInput
	}

	workspace, err := s.workspaceRepo.GetByIDAndUserID(input.WorkspaceID, input.UserID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrWorkspaceNotFound
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = workspace.Category
	}

	cleaned := rag.CleanText(input.Text)
	chunks, err := s.chunker.Chunk(cleaned, s.ragCfg.ChunkSize, s.ragCfg.OverlapPercent)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoExtractableText
	}

	indexPath := workspace.VectorIndexPath
	if indexPath == "" {
		indexPath = filepath.Join(s.ragCfg.VectorsDir, fmt.Sprintf("ws-%d", workspace.ID))
		workspace.VectorIndexPath = indexPath
		if err := s.workspaceRepo.Save(workspace); err != nil {
			return nil, err
		}
	}

	// The lock covers the full load-modify-persist cycle; two uploads into
	// the same workspace would otherwise overwrite each other's vectors.
	index, unlock, err := openIndexLocked(indexPath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	vectors, degraded := s.embedder.EmbedBatch(ctx, chunks, index.Dim())

	metadata := make([]rag.ChunkMetadata, len(chunks))
	for i, chunk := range chunks {
		metadata[i] = rag.ChunkMetadata{
			WorkspaceID: workspace.ID,
			Category:    category,
			Source:      input.FileName,
			SourcePath:  input.SourcePath,
			ChunkIndex:  i,
			Page:        approxPage(i, len(chunks), input.PageCount),
			Text:        chunk,
		}
	}

	if err := index.Add(vectors, metadata); err != nil {
		return nil, fmt.Errorf("index chunks failed: %w", err)
	}

	upload := model.Upload{
		WorkspaceID: workspace.ID,
		FileName:    input.FileName,
		SourcePath:  input.SourcePath,
		Category:    category,
		Title:       input.Title,
		ChunkCount:  len(chunks),
	}
	if err := s.uploadRepo.Create(&upload); err != nil {
		return nil, err
	}

	return &IngestResult{
		Upload:             upload,
		ChunkCount:         len(chunks),
		DegradedEmbeddings: degraded,
	}, nil
}

// ListUploads returns the upload provenance records for a workspace.
func (s *IngestService) ListUploads(userID, workspaceID uint) ([]model.Upload, error) {
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
	return s.uploadRepo.ListByWorkspaceID(workspaceID)
}

func openIndexLocked(path string) (*rag.VectorIndex, func(), error) {
	index, err := rag.OpenIndex(path)
	if err != nil {
		return nil, nil, err
	}
	lock := index.Lock()
	if err := lock.Lock(); err != nil {
		return nil, nil, fmt.Errorf("lock vector index failed: %w", err)
	}
	// Reload under the lock: another ingest may have persisted between the
	// first open and lock acquisition.
	index, err = rag.OpenIndex(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, nil, err
	}
	return index, func() { _ = lock.Unlock() }, nil
}

func approxPage(chunkIndex, chunkCount, pageCount int) string {
	if pageCount <= 0 || chunkCount <= 0 {
		return "?"
	}
	page := chunkIndex*pageCount/chunkCount + 1
	if page > pageCount {
		page = pageCount
	}
	return fmt.Sprintf("%d", page)
}
