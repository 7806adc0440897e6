package storage

import (
	"context"
	"io"
	"time"
)

// Package storage contains the blob store abstraction for document bytes.
// Implementations must avoid using local disk and rely on streaming I/O only.
// Object keys are generated by the caller before the write starts, so the
// blob identifier is known before any byte is stored.

// Metadata keys attached to stored blobs.
const (
	MetaOriginalFilename = "original-filename"
	MetaOriginalSize     = "original-size"
	MetaContentType      = "original-content-type"
	MetaCompressed       = "compressed"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable blob store client interface over an S3-compatible
// backend. Methods use context and streaming readers; no local disk is used.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	// Unknown keys fail with an error recognized by IsNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
}
