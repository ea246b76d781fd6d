package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/KaityXD/choas-lib/internal/dbx"
	"github.com/KaityXD/choas-lib/internal/logging"
	"github.com/KaityXD/choas-lib/internal/server/config"
	"github.com/KaityXD/choas-lib/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const defaultSQLiteDSN = "file:sessions.db?_pragma=busy_timeout(5000)"

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema for the given goose dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}

// Open builds the Store selected by backend (see config.Sessions*).
// SQL backends are migrated before use; the caller closes them through
// io.Closer.
func Open(ctx context.Context, backend, dsn string, ttl time.Duration, l logging.Logger, opts ...Option) (Store, error) {
	switch backend {
	case config.SessionsMemory:
		return NewMemoryStore(ttl, opts...), nil

	case config.SessionsSQLite:
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		return openSQL(ctx, dbx.DriverSQLite, dsn, "sqlite3", migrations.SQLiteDir, NewSQLiteRepository, ttl, l, opts)

	case config.SessionsPostgres:
		return openSQL(ctx, dbx.DriverPostgres, dsn, "pgx", migrations.PostgresDir, NewPostgresRepository, ttl, l, opts)
	}

	return nil, fmt.Errorf("unknown session backend %q", backend)
}

func openSQL(ctx context.Context, driver, dsn, dialect, dir string, repo RepositoryFactory, ttl time.Duration, l logging.Logger, opts []Option) (Store, error) {
	db, err := dbx.Open(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := RunMigrations(ctx, db, dialect, dir); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewSQLStore(db, repo, ttl, l, opts...), nil
}
