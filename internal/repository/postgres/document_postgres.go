package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

const documentColumns = `id, title, description, category, file_name, storage_key, file_size, mime_type, status, download_enabled, uploaded_by, created_at, updated_at`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

func scanDocument(row interface{ Scan(dest ...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.Category,
		&d.FileName,
		&d.StorageKey,
		&d.FileSize,
		&d.MimeType,
		&d.Status,
		&d.DownloadEnabled,
		&d.UploadedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new metadata row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, description, category, file_name, storage_key, file_size, mime_type, status, download_enabled, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.Category,
		doc.FileName,
		doc.StorageKey,
		doc.FileSize,
		doc.MimeType,
		doc.Status,
		doc.DownloadEnabled,
		doc.UploadedBy,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
// The optional status filter is applied to both queries.
func (r *DocumentPostgres) List(ctx context.Context, q repository.DocumentQuery) (*repository.PageResult[model.Document], error) {
	// NULLable status parameter keeps a single query shape for both the
	// filtered and unfiltered listing.
	var status *string
	if q.Status != nil {
		s := string(*q.Status)
		status = &s
	}

	const qCount = `SELECT COUNT(*) FROM documents WHERE ($1::text IS NULL OR status = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, status).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, status, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// ToggleStatus flips enabled/disabled in a single atomic UPDATE so that
// concurrent toggles serialize in the database rather than racing a
// fetch-then-set cycle.
func (r *DocumentPostgres) ToggleStatus(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET status = CASE WHEN status = 'enabled' THEN 'disabled' ELSE 'enabled' END,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + documentColumns
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// ToggleDownloadEnabled flips the download gate in a single atomic UPDATE.
func (r *DocumentPostgres) ToggleDownloadEnabled(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET download_enabled = NOT download_enabled,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + documentColumns
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
