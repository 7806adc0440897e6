package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Package compress is the codec applied to stored file bytes. Uploads are
// compressed whole-buffer before they reach the blob store; downloads are
// decompressed as a streaming transform over the blob read stream.

// Compress gzips the entire buffer. Empty input yields a valid (empty) gzip
// member so the codec stays symmetric for all inputs.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

// NewDecompressor wraps rc with a streaming gunzip transform. Bytes flow to
// the caller incrementally; nothing is buffered up front. Closing the
// returned reader closes both the transform and the underlying source.
func NewDecompressor(rc io.ReadCloser) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	return &decompressor{zr: zr, src: rc}, nil
}

type decompressor struct {
	zr  *gzip.Reader
	src io.ReadCloser
}

func (d *decompressor) Read(p []byte) (int, error) {
	return d.zr.Read(p)
}

func (d *decompressor) Close() error {
	zErr := d.zr.Close()
	sErr := d.src.Close()
	if zErr != nil {
		return zErr
	}
	return sErr
}
