package repository

import (
	"context"

	"docvault/internal/model"
)

// DocumentQuery filters and paginates document listings.
// A nil Status means no status filter (admin view).
type DocumentQuery struct {
	Status *model.DocumentStatus
	Limit  int
	Offset int
}

// DocumentRepository defines data access for document metadata using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new metadata record.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns documents ordered by created_at descending plus the total
	// row count for the given filter.
	List(ctx context.Context, q DocumentQuery) (*PageResult[model.Document], error)

	// ToggleStatus atomically flips enabled/disabled in a single statement
	// and returns the updated record. sql.ErrNoRows if the id is unknown.
	ToggleStatus(ctx context.Context, id string) (*model.Document, error)

	// ToggleDownloadEnabled atomically flips the download gate and returns
	// the updated record. sql.ErrNoRows if the id is unknown.
	ToggleDownloadEnabled(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
