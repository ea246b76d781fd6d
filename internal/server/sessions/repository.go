package sessions

import (
	"context"
	"time"

	"github.com/KaityXD/choas-lib/internal/dbx"
	"github.com/KaityXD/choas-lib/internal/server/models"
)

// Repository persists sessions keyed by the token hash.
type Repository interface {
	// Create stores a session row.
	Create(ctx context.Context, key string, issuedAt time.Time) error

	// Find returns the row for key, or common.ErrorNotFound.
	// The returned Session carries the key in its Token field.
	Find(ctx context.Context, key string) (*models.Session, error)

	// Delete removes the row for key. Missing rows are not an error.
	Delete(ctx context.Context, key string) error
}

// RepositoryFactory binds a Repository to a connection or transaction.
type RepositoryFactory func(db dbx.DBTX) Repository
