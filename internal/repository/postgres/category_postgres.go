package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"docvault/internal/model"
	"docvault/internal/repository"
)

const categoryColumns = `id, name, slug, description, created_at, updated_at`

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// mapDuplicate translates a unique-violation driver error into the
// repository-level ErrDuplicate so callers don't depend on pg error codes.
func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

// CategoryPostgres is a PostgreSQL implementation of repository.CategoryRepository.
type CategoryPostgres struct {
	db *sql.DB
}

// NewCategoryPostgres creates a new CategoryPostgres repository.
func NewCategoryPostgres(db *sql.DB) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

func scanCategory(row interface{ Scan(dest ...any) error }) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category row and returns the stored record.
// A slug collision surfaces as repository.ErrDuplicate.
func (r *CategoryPostgres) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	const q = `
		INSERT INTO categories (id, name, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + categoryColumns
	row := r.db.QueryRowContext(ctx, q,
		c.ID,
		c.Name,
		c.Slug,
		c.Description,
		c.CreatedAt,
		c.UpdatedAt,
	)
	out, err := scanCategory(row)
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return out, nil
}

// FindByID fetches a single category by its ID.
func (r *CategoryPostgres) FindByID(ctx context.Context, id string) (*model.Category, error) {
	const q = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategory(r.db.QueryRowContext(ctx, q, id))
}

// FindBySlug fetches a single category by its slug.
func (r *CategoryPostgres) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	const q = `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	return scanCategory(r.db.QueryRowContext(ctx, q, slug))
}

// Update replaces name, slug and description and returns the updated record.
func (r *CategoryPostgres) Update(ctx context.Context, c *model.Category) (*model.Category, error) {
	const q = `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + categoryColumns
	row := r.db.QueryRowContext(ctx, q, c.ID, c.Name, c.Slug, c.Description)
	out, err := scanCategory(row)
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return out, nil
}

// Delete removes a category by ID. It does not return an error if the row does not exist.
func (r *CategoryPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM categories WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// List returns all categories ordered by name ascending.
func (r *CategoryPostgres) List(ctx context.Context) ([]model.Category, error) {
	const q = `SELECT ` + categoryColumns + ` FROM categories ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}
