package models

import (
	"time"

	"github.com/google/uuid"
)

// File is an uploaded study document. The original bytes live on disk; the
// row tracks ownership and extraction state.
type File struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Filename    string    `json:"filename"`
	Extension   string    `json:"extension"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Embedding is one vectorized chunk of a file's markdown rendering.
type Embedding struct {
	ID         uuid.UUID `json:"id"`
	FileID     uuid.UUID `json:"file_id"`
	ChunkIndex int       `json:"chunk_index"`
	ChunkText  string    `json:"chunk_text"`
	Vector     []float32 `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
