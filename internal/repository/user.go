package repository

import (
	"context"

	"docvault/internal/model"
)

// UserRepository defines data access for user records keyed by the external
// identity id. Favorites and the recently-viewed list use the store's atomic
// primitives so concurrent updates to those fields cannot race.
type UserRepository interface {
	// Create inserts a new user record.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// Upsert inserts the user or refreshes its profile fields if it already
	// exists. Role is never changed by an upsert.
	Upsert(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by external identity id.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List returns users ordered by created_at descending plus a total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error)

	// UpdateRole sets the user's role and returns the updated record.
	// sql.ErrNoRows if the id is unknown.
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error)

	// Delete removes a user by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// ToggleFavorite adds the document to the user's favorites if absent,
	// removes it otherwise. Reports whether the document is a favorite after
	// the call.
	ToggleFavorite(ctx context.Context, userID, documentID string) (bool, error)

	// Favorites returns the user's favorite document ids.
	Favorites(ctx context.Context, userID string) ([]string, error)

	// AddRecent records a view of the document, moving it to the front of
	// the recently-viewed list and trimming the list to its cap.
	AddRecent(ctx context.Context, userID, documentID string) error

	// Recent returns the recently-viewed list, most recent first.
	Recent(ctx context.Context, userID string) ([]model.RecentDoc, error)
}
