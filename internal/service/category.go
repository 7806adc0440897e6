package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
)

// Slugify derives a URL-safe slug from a category name: lowercase, strip
// everything but word characters, spaces and hyphens, collapse runs of
// whitespace, underscores and hyphens into a single hyphen, and trim edge
// hyphens.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CategoryInput carries the editable fields of a category.
type CategoryInput struct {
	Name        string
	Description string
}

// CategoryService defines the use cases for managing document categories.
type CategoryService interface {
	// Create adds a category; the slug is derived from the name and must be
	// unique. A colliding slug yields ErrConflict.
	Create(ctx context.Context, in CategoryInput) (*model.Category, error)

	// Update renames a category, re-deriving the slug. Renaming onto a slug
	// held by a different category yields ErrConflict.
	Update(ctx context.Context, id string, in CategoryInput) (*model.Category, error)

	// Delete removes a category. Returns false (not an error) for an unknown id.
	Delete(ctx context.Context, id string) (bool, error)

	// List returns all categories ordered by name.
	List(ctx context.Context) ([]model.Category, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService constructs a new CategoryService.
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	slug := Slugify(in.Name)
	if slug == "" {
		return nil, fmt.Errorf("%w: name yields an empty slug", ErrValidation)
	}

	if existing, err := s.repo.FindBySlug(ctx, slug); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, slug)
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now().UTC()
	cat := &model.Category{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stored, err := s.repo.Create(ctx, cat)
	if err != nil {
		// The pre-check races with concurrent creates; the unique index is
		// the source of truth.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, slug)
		}
		return nil, err
	}
	return stored, nil
}

func (s *categoryService) Update(ctx context.Context, id string, in CategoryInput) (*model.Category, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	slug := Slugify(in.Name)
	if slug == "" {
		return nil, fmt.Errorf("%w: name yields an empty slug", ErrValidation)
	}

	cat, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return nil, err
	}

	if existing, err := s.repo.FindBySlug(ctx, slug); err == nil && existing != nil && existing.ID != id {
		return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, slug)
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	cat.Name = strings.TrimSpace(in.Name)
	cat.Slug = slug
	cat.Description = in.Description
	cat.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, cat)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, slug)
		}
		return nil, err
	}
	return updated, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) (bool, error) {
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

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}
