// Package storage abstracts the blob store holding document bytes. Document
// records point at objects by URL; the store owns the bytes.
package storage

import (
	"context"
	"errors"
)

type Store interface {
	// GetBytes fetches the full object.
	GetBytes(ctx context.Context, key string) ([]byte, error)
	// PutBytes writes the object and returns its URL.
	PutBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var (
	ErrObjectNotFound = errors.New("object_not_found")
	ErrStorage        = errors.New("storage_error")
)
