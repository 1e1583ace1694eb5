package repository

import (
	"context"
	"time"

	"menuscan/internal/model"
)

// DocumentRepository defines data access for uploaded PDF documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents and total rows count for the given filter.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Delete removes a document by ID; menus, nutrition and menu-recipe links
	// cascade at the database level. Returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error

	// UpdateStatus sets the processing status and (possibly nil) error message.
	UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, errorMessage *string) error

	// MarkDone transitions the document to its terminal done state,
	// recording when processing finished and the aggregated error summary
	// (nil when every page pair succeeded).
	MarkDone(ctx context.Context, id string, errorMessage *string, processedAt time.Time) error

	// SetStoredFile records the final local path and remote storage path of
	// the source PDF after a successful run.
	SetStoredFile(ctx context.Context, id, filePath, storagePath string) error
}
