// Package registry stores uploaded files under flat, validated names.
//
// Two backends share the Registry contract: a local directory (default) and
// an S3-compatible bucket. Both reject unsafe names with
// common.ErrInvalidName, oversized payloads with common.ErrPayloadTooLarge
// (leaving any existing file untouched), missing files with
// common.ErrorNotFound, and wrap I/O failures in *StorageError.
package registry

import (
	"context"
	"time"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/KaityXD/choas-lib/internal/server/models"
)

// Registry is the file table of the CDN.
type Registry interface {
	// List returns every stored file in backend order.
	List(ctx context.Context) ([]models.Entry, error)

	// Store creates or replaces name and returns the number of bytes written.
	Store(ctx context.Context, name string, data []byte) (int64, error)

	// Fetch returns the content of name.
	Fetch(ctx context.Context, name string) (*Object, error)

	// Delete removes name.
	Delete(ctx context.Context, name string) error

	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error
}

// Object is a fetched file.
type Object struct {
	Name        string
	ContentType string
	Data        []byte
	ModTime     time.Time
}

// StorageError reports an I/O failure. Its message carries only the
// operation and the file name; Err holds the cause for server-side logs.
// It matches common.ErrStorageFailure.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Name == "" {
		return "storage failure during " + e.Op
	}
	return "storage failure during " + e.Op + " of " + e.Name
}

func (e *StorageError) Unwrap() []error {
	return []error{common.ErrStorageFailure, e.Err}
}

func storageErr(op, name string, err error) error {
	return &StorageError{Op: op, Name: name, Err: err}
}

func checkSize(data []byte, max int64) error {
	if int64(len(data)) > max {
		return common.ErrPayloadTooLarge
	}
	return nil
}
