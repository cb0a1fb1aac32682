package model

import "time"

// Upload records the provenance of one ingested source: which workspace it
// went into, where it came from and how many chunks it produced.
type Upload struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WorkspaceID uint      `gorm:"not null;index" json:"workspace_id"`
	FileName    string    `gorm:"size:256;not null" json:"file_name"`
	SourcePath  string    `gorm:"size:512" json:"source_path"`
	Category    string    `gorm:"size:32;not null;default:notes" json:"category"`
	Title       string    `gorm:"size:256" json:"title"`
	ChunkCount  int       `gorm:"not null" json:"chunk_count"`
	CreatedAt   time.Time `json:"created_at"`
}
