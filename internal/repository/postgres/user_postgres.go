package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docvault/internal/model"
	"docvault/internal/repository"
)

const userColumns = `id, email, first_name, last_name, image_url, role, created_at, updated_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, first_name, last_name, image_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.FirstName,
		u.LastName,
		u.ImageURL,
		u.Role,
		u.CreatedAt,
		u.UpdatedAt,
	)
	out, err := scanUser(row)
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return out, nil
}

// Upsert inserts the user or refreshes its profile fields on conflict.
// The stored role is preserved; sign-in sync never changes authorization.
func (r *UserPostgres) Upsert(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, first_name, last_name, image_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			image_url = EXCLUDED.image_url,
			updated_at = now()
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.FirstName,
		u.LastName,
		u.ImageURL,
		u.Role,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return scanUser(row)
}

// FindByID fetches a single user by external identity id.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// List returns users using LIMIT/OFFSET pagination and a total count.
func (r *UserPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	const qCount = `SELECT COUNT(*) FROM users`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

// UpdateRole sets the user's role in a single atomic UPDATE.
func (r *UserPostgres) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	const q = `
		UPDATE users
		SET role = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, q, id, role))
}

// Delete removes a user by ID. It does not return an error if the row does not exist.
// Favorites and recent entries go with it via ON DELETE CASCADE.
func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// ToggleFavorite removes the membership row if present, inserts it otherwise.
// Both branches are single-statement set operations, so two concurrent
// toggles cannot corrupt the membership the way a read-modify-write could.
func (r *UserPostgres) ToggleFavorite(ctx context.Context, userID, documentID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	const qDel = `DELETE FROM user_favorites WHERE user_id = $1 AND document_id = $2`
	res, err := tx.ExecContext(ctx, qDel, userID, documentID)
	if err != nil {
		return false, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	favorited := false
	if removed == 0 {
		const qIns = `
			INSERT INTO user_favorites (user_id, document_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, document_id) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, qIns, userID, documentID); err != nil {
			return false, err
		}
		favorited = true
	}

	const qTouch = `UPDATE users SET updated_at = now() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, qTouch, userID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return favorited, nil
}

// Favorites returns the user's favorite document ids.
func (r *UserPostgres) Favorites(ctx context.Context, userID string) ([]string, error) {
	const q = `
		SELECT document_id FROM user_favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddRecent upserts the view entry (moving an existing one to the front via
// its timestamp) and trims everything beyond the newest RecentDocsLimit rows.
func (r *UserPostgres) AddRecent(ctx context.Context, userID, documentID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const qUpsert = `
		INSERT INTO user_recent_docs (user_id, document_id, viewed_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, document_id) DO UPDATE SET viewed_at = now()
	`
	if _, err := tx.ExecContext(ctx, qUpsert, userID, documentID); err != nil {
		return err
	}

	const qTrim = `
		DELETE FROM user_recent_docs
		WHERE user_id = $1 AND document_id NOT IN (
			SELECT document_id FROM user_recent_docs
			WHERE user_id = $1
			ORDER BY viewed_at DESC
			LIMIT $2
		)
	`
	if _, err := tx.ExecContext(ctx, qTrim, userID, model.RecentDocsLimit); err != nil {
		return fmt.Errorf("trim recent list: %w", err)
	}

	return tx.Commit()
}

// Recent returns the recently-viewed list, most recent first.
func (r *UserPostgres) Recent(ctx context.Context, userID string) ([]model.RecentDoc, error) {
	const q = `
		SELECT document_id, viewed_at FROM user_recent_docs
		WHERE user_id = $1
		ORDER BY viewed_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, userID, model.RecentDocsLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.RecentDoc, 0)
	for rows.Next() {
		var rd model.RecentDoc
		if err := rows.Scan(&rd.DocumentID, &rd.ViewedAt); err != nil {
			return nil, err
		}
		items = append(items, rd)
	}
	return items, rows.Err()
}
