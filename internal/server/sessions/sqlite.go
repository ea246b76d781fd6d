package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/KaityXD/choas-lib/internal/dbx"
	"github.com/KaityXD/choas-lib/internal/server/models"
)

// SQLiteRepository stores sessions in SQLite. issued_at is kept as unix
// nanoseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) Repository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, key string, issuedAt time.Time) error {
	query := `INSERT INTO sessions (token_hash, issued_at) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, key, issuedAt.UnixNano()); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Find(ctx context.Context, key string) (*models.Session, error) {
	query := `SELECT token_hash, issued_at FROM sessions WHERE token_hash = ?`

	var (
		s  models.Session
		ns int64
	)
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&s.Token, &ns); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.IssuedAt = time.Unix(0, ns)
	return &s, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
