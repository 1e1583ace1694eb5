package model

import "time"

// Document represents one uploaded lunch-menu PDF.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID           string         `json:"id"`
	DepartmentID string         `json:"department_id"`
	OriginalName string         `json:"original_name"`
	Filename     string         `json:"filename"`
	FilePath     string         `json:"file_path"`
	StoragePath  string         `json:"storage_path,omitempty"`
	Size         int64          `json:"size"`
	Status       DocumentStatus `json:"status"`
	ErrorMessage *string        `json:"error_message,omitempty"`
	UploadedAt   time.Time      `json:"uploaded_at"`
	ProcessedAt  *time.Time     `json:"processed_at,omitempty"`
}
