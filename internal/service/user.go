package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// UserInput carries the identity profile fields pushed by the identity
// provider. ID is the provider's user id and doubles as the primary key.
type UserInput struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	ImageURL  string
}

// UserListResult is the service-level DTO for paginated users.
type UserListResult struct {
	Items []model.User `json:"users"`
	Total int          `json:"total"`
}

// UserService defines the use cases for identity records, roles and the
// per-user favorites and recently-viewed lists.
type UserService interface {
	// Create inserts a user with the default role. An existing id yields
	// ErrConflict.
	Create(ctx context.Context, in UserInput) (*model.User, error)

	// Sync upserts the user's profile fields, creating the record on first
	// contact. The role survives the upsert untouched.
	Sync(ctx context.Context, in UserInput) (*model.User, error)

	// Get returns a user by id.
	Get(ctx context.Context, id string) (*model.User, error)

	// List returns users, newest first.
	List(ctx context.Context, limit, skip int) (*UserListResult, error)

	// UpdateRole changes a user's role. An admin demoting their own account
	// is rejected with ErrValidation.
	UpdateRole(ctx context.Context, actorID, targetID string, role model.Role) (*model.User, error)

	// Delete removes a user. Returns false (not an error) for an unknown id.
	Delete(ctx context.Context, id string) (bool, error)

	// ToggleFavorite flips the favorite mark on a document and reports the
	// resulting state.
	ToggleFavorite(ctx context.Context, userID, documentID string) (bool, error)

	// Favorites returns the user's favorite document ids.
	Favorites(ctx context.Context, userID string) ([]string, error)

	// AddRecent records a document view at the front of the user's
	// recently-viewed list.
	AddRecent(ctx context.Context, userID, documentID string) error

	// Recent returns the recently-viewed list, most recent first.
	Recent(ctx context.Context, userID string) ([]model.RecentDoc, error)
}

// DefaultUserListLimit applies to user listings when no limit is given.
const DefaultUserListLimit = 100

type userService struct {
	repo repository.UserRepository
}

// NewUserService constructs a new UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func userFromInput(in UserInput) *model.User {
	now := time.Now().UTC()
	return &model.User{
		ID:        in.ID,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		ImageURL:  in.ImageURL,
		Role:      model.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *userService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	u, err := s.repo.Create(ctx, userFromInput(in))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: user %s already exists", ErrConflict, in.ID)
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) Sync(ctx context.Context, in UserInput) (*model.User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.repo.Upsert(ctx, userFromInput(in))
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) List(ctx context.Context, limit, skip int) (*UserListResult, error) {
	if limit <= 0 {
		limit = DefaultUserListLimit
	}
	if skip < 0 {
		skip = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: skip})
	if err != nil {
		return nil, err
	}
	return &UserListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *userService) UpdateRole(ctx context.Context, actorID, targetID string, role model.Role) (*model.User, error) {
	if targetID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	// Admins cannot demote themselves; that would strand a deployment with
	// no admin left to undo it.
	if actorID == targetID && role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: cannot demote your own account", ErrValidation)
	}
	u, err := s.repo.UpdateRole(ctx, targetID, role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, targetID)
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: id is required", ErrValidation)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *userService) ToggleFavorite(ctx context.Context, userID, documentID string) (bool, error) {
	if userID == "" || documentID == "" {
		return false, fmt.Errorf("%w: user id and document id are required", ErrValidation)
	}
	return s.repo.ToggleFavorite(ctx, userID, documentID)
}

func (s *userService) Favorites(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.repo.Favorites(ctx, userID)
}

func (s *userService) AddRecent(ctx context.Context, userID, documentID string) error {
	if userID == "" || documentID == "" {
		return fmt.Errorf("%w: user id and document id are required", ErrValidation)
	}
	return s.repo.AddRecent(ctx, userID, documentID)
}

func (s *userService) Recent(ctx context.Context, userID string) ([]model.RecentDoc, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.repo.Recent(ctx, userID)
}
