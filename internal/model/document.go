package model

import "time"

// Document is the metadata record for a stored file.
// This is a pure domain model with no database-specific dependencies or tags.
// The file bytes themselves live in the blob store under StorageKey; exactly
// one blob exists per metadata record while the record exists.
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	FileName    string `json:"file_name"`
	// StorageKey references the blob store object; never exposed to clients.
	StorageKey string `json:"-"`
	// FileSize is the original byte length before compression.
	FileSize        int64          `json:"file_size"`
	MimeType        string         `json:"mime_type"`
	Status          DocumentStatus `json:"status"`
	DownloadEnabled bool           `json:"download_enabled"`
	UploadedBy      string         `json:"uploaded_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
