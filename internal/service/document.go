package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"docvault/internal/compress"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

const (
	// AllowedMimeType is the only accepted upload content type.
	AllowedMimeType = "application/pdf"
	// MaxUploadBytes caps the original (uncompressed) payload at 50 MiB.
	MaxUploadBytes = 50 << 20
	// DefaultListLimit applies when the caller passes no limit.
	DefaultListLimit = 50

	storagePrefix = "documents"
)

// UploadInput carries the metadata fields of a document upload.
type UploadInput struct {
	Title       string
	Description string
	Category    string
	FileName    string
	MimeType    string
	UploadedBy  string
}

// DownloadResult hands the caller a lazy byte stream with the declared
// filename and content type. The stream is already decompressed; the caller
// must Close it.
type DownloadResult struct {
	Stream      io.ReadCloser
	FileName    string
	ContentType string
	Size        int64
}

// ListOptions filters and paginates a document listing. Status is honored
// for admin requesters only; non-admins are always restricted to enabled.
type ListOptions struct {
	Status *model.DocumentStatus
	Limit  int
	Skip   int
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items   []model.Document `json:"documents"`
	Total   int              `json:"total"`
	HasMore bool             `json:"has_more"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload compresses the payload, writes the blob, then inserts the
	// metadata record referencing it. The blob write strictly precedes the
	// metadata insert; a failed insert rolls the blob back.
	Upload(ctx context.Context, data []byte, in UploadInput) (*model.Document, error)

	// Get returns document metadata by ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Download opens a decompressing read stream over the stored blob.
	// Non-admin requesters need status=enabled, and additionally
	// downloadEnabled=true unless inline (view) mode is requested.
	Download(ctx context.Context, id string, requester model.Role, inline bool) (*DownloadResult, error)

	// List returns documents ordered by created_at descending. The
	// effective status filter for non-admins is always enabled.
	List(ctx context.Context, requester model.Role, opts ListOptions) (*DocumentListResult, error)

	// ToggleStatus flips enabled/disabled and returns the updated record.
	ToggleStatus(ctx context.Context, id string) (*model.Document, error)

	// ToggleDownloadEnabled flips the download gate and returns the updated record.
	ToggleDownloadEnabled(ctx context.Context, id string) (*model.Document, error)

	// Delete removes metadata and blob. Returns false (not an error) for an
	// unknown id. A failing blob deletion is logged and swallowed; the
	// metadata deletion is authoritative.
	Delete(ctx context.Context, id string) (bool, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository) DocumentService {
	return &documentService{store: store, repo: repo}
}

func (s *documentService) Upload(ctx context.Context, data []byte, in UploadInput) (*model.Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if int64(len(data)) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, int64(MaxUploadBytes))
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.MimeType != AllowedMimeType {
		return nil, fmt.Errorf("%w: only %s files are allowed", ErrValidation, AllowedMimeType)
	}
	if in.Category == "" {
		in.Category = "Other"
	}

	compressed, err := compress.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}

	// The blob key is allocated before any byte is written, then the blob
	// write happens-before the metadata insert.
	key := storagePrefix + "/" + uuid.New().String() + ".gz"
	_, err = s.store.Put(ctx, key, bytes.NewReader(compressed), storage.PutObjectOptions{
		Size:        int64(len(compressed)),
		ContentType: "application/gzip",
		Metadata: map[string]string{
			storage.MetaOriginalFilename: in.FileName,
			storage.MetaOriginalSize:     strconv.Itoa(len(data)),
			storage.MetaContentType:      in.MimeType,
			storage.MetaCompressed:       "true",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: put object: %v", ErrStorage, err)
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:              uuid.New().String(),
		Title:           in.Title,
		Description:     in.Description,
		Category:        in.Category,
		FileName:        in.FileName,
		StorageKey:      key,
		FileSize:        int64(len(data)),
		MimeType:        in.MimeType,
		Status:          model.StatusEnabled,
		DownloadEnabled: true,
		UploadedBy:      in.UploadedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the blob so no orphan outlives the failed insert.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("%w: metadata insert failed: %v; rollback delete failed: %v", ErrStorage, err, delErr)
		}
		return nil, fmt.Errorf("%w: metadata insert failed: %v", ErrStorage, err)
	}
	return stored, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Download(ctx context.Context, id string, requester model.Role, inline bool) (*DownloadResult, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !requester.IsAdmin() {
		if doc.Status != model.StatusEnabled {
			return nil, fmt.Errorf("%w: document is not available", ErrForbidden)
		}
		if !inline && !doc.DownloadEnabled {
			return nil, fmt.Errorf("%w: downloads are disabled for this document", ErrForbidden)
		}
	}

	rc, info, err := s.store.Get(ctx, doc.StorageKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%w: blob %s", ErrNotFound, doc.StorageKey)
		}
		return nil, fmt.Errorf("%w: get object: %v", ErrStorage, err)
	}

	stream := rc
	if metaValue(info.Metadata, storage.MetaCompressed) == "true" {
		stream, err = compress.NewDecompressor(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: open decompressor: %v", ErrStorage, err)
		}
	}

	return &DownloadResult{
		Stream:      stream,
		FileName:    doc.FileName,
		ContentType: doc.MimeType,
		Size:        doc.FileSize,
	}, nil
}

func (s *documentService) List(ctx context.Context, requester model.Role, opts ListOptions) (*DocumentListResult, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}

	// Access policy: non-admins only ever see enabled documents, whatever
	// filter they asked for.
	status := opts.Status
	if !requester.IsAdmin() {
		enabled := model.StatusEnabled
		status = &enabled
	}

	res, err := s.repo.List(ctx, repository.DocumentQuery{
		Status: status,
		Limit:  opts.Limit,
		Offset: opts.Skip,
	})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{
		Items:   res.Items,
		Total:   res.Total,
		HasMore: opts.Skip+len(res.Items) < res.Total,
	}, nil
}

func (s *documentService) ToggleStatus(ctx context.Context, id string) (*model.Document, error) {
	return s.toggle(ctx, id, s.repo.ToggleStatus)
}

func (s *documentService) ToggleDownloadEnabled(ctx context.Context, id string) (*model.Document, error) {
	return s.toggle(ctx, id, s.repo.ToggleDownloadEnabled)
}

func (s *documentService) toggle(ctx context.Context, id string, flip func(context.Context, string) (*model.Document, error)) (*model.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	doc, err := flip(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: id is required", ErrValidation)
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	// Blob deletion is best-effort: metadata deletion is authoritative and
	// must not be blocked by a failing blob store.
	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		log.Printf("delete blob %s for document %s: %v", doc.StorageKey, id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// metaValue looks up a blob metadata key case-insensitively: S3-compatible
// backends return user metadata with canonicalized header casing.
func metaValue(meta map[string]string, key string) string {
	for k, v := range meta {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
