package sessions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/KaityXD/choas-lib/internal/dbx"
	"github.com/KaityXD/choas-lib/internal/logging"
)

// SQLStore keeps sessions in a SQL database so they survive restarts and
// can be shared by several server processes. Only token hashes are stored.
type SQLStore struct {
	db     *sql.DB
	repo   RepositoryFactory
	ttl    time.Duration
	now    func() time.Time
	logger logging.Logger
}

func NewSQLStore(db *sql.DB, repo RepositoryFactory, ttl time.Duration, l logging.Logger, opts ...Option) *SQLStore {
	o := buildOptions(opts)
	return &SQLStore{
		db:     db,
		repo:   repo,
		ttl:    ttl,
		now:    o.now,
		logger: l.With("module", "sessions"),
	}
}

func (s *SQLStore) Create(ctx context.Context) (string, error) {
	token, err := common.MakeRandHexString(common.SessionTokenBytes)
	if err != nil {
		return "", err
	}
	if err := s.repo(s.db).Create(ctx, tokenKey(token), s.now()); err != nil {
		return "", err
	}
	return token, nil
}

// IsValid fails closed: a database error is logged and reported as invalid.
func (s *SQLStore) IsValid(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	key := tokenKey(token)

	var valid bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)

		sess, err := repo.Find(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if sess.Expired(s.now(), s.ttl) {
			return repo.Delete(ctx, key)
		}
		valid = true
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "session lookup failed", "error", err)
		return false
	}
	return valid
}

func (s *SQLStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo(s.db).Delete(ctx, tokenKey(token))
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
