// Package storage keeps uploaded identification documents.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned for unknown object ids.
	ErrNotFound = errors.New("storage: object not found")
	// ErrTooLarge is returned for uploads above MaxObjectSize.
	ErrTooLarge = errors.New("storage: object exceeds maximum size")
)

// MaxObjectSize caps a single upload (10 MB).
const MaxObjectSize = 10 << 20

// Object describes a stored file.
type Object struct {
	ID          string `json:"id"`
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

// Bucket stores objects under caller-chosen ids.
type Bucket interface {
	Put(ctx context.Context, id, name, contentType string, body io.Reader, size int64) (*Object, error)
	Get(ctx context.Context, id string) (io.ReadCloser, *Object, error)
}
