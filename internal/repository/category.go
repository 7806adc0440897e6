package repository

import (
	"context"

	"docvault/internal/model"
)

// CategoryRepository defines data access for categories.
// Slug uniqueness is enforced by the store; violations surface as ErrDuplicate.
type CategoryRepository interface {
	// Create inserts a new category record.
	Create(ctx context.Context, c *model.Category) (*model.Category, error)

	// FindByID returns a category by its ID.
	FindByID(ctx context.Context, id string) (*model.Category, error)

	// FindBySlug returns a category by its slug.
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)

	// Update replaces name, slug and description and returns the updated
	// record. sql.ErrNoRows if the id is unknown.
	Update(ctx context.Context, c *model.Category) (*model.Category, error)

	// Delete removes a category by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// List returns all categories ordered by name ascending.
	List(ctx context.Context) ([]model.Category, error)
}
