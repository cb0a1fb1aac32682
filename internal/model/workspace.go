package model

import "time"

// Workspace is one knowledge base: exactly one vector index lives under
// VectorIndexPath, and all uploads and chat history hang off the workspace.
type Workspace struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Name            string    `gorm:"size:128;not null" json:"name"`
	Category        string    `gorm:"size:32;not null;default:notes" json:"category"`
	VectorIndexPath string    `gorm:"size:512" json:"vector_index_path"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
