package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/KaityXD/choas-lib/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T, opts ...Option) *SQLStore {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	st, err := Open(context.Background(), config.SessionsSQLite, dsn, ttl, nopLogger{}, opts...)
	require.NoError(t, err)
	s, ok := st.(*SQLStore)
	require.True(t, ok)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	tok, err := s.Create(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsValid(ctx, tok))
	assert.False(t, s.IsValid(ctx, "other"))
	assert.False(t, s.IsValid(ctx, ""))

	require.NoError(t, s.Revoke(ctx, tok))
	assert.False(t, s.IsValid(ctx, tok))
	assert.NoError(t, s.Revoke(ctx, tok))
	assert.NoError(t, s.Ping(ctx))
}

func TestSQLStore_StoresOnlyHashes(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	tok, err := s.Create(ctx)
	require.NoError(t, err)

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE token_hash = ?`, tok).Scan(&n))
	assert.Equal(t, 0, n, "raw token must not be persisted")
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE token_hash = ?`, tokenKey(tok)).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLStore_ExpiryEvicts(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := openSQLite(t, WithClock(clock.Now))

	tok, err := s.Create(ctx)
	require.NoError(t, err)

	clock.Advance(ttl)
	assert.True(t, s.IsValid(ctx, tok))

	clock.Advance(time.Nanosecond)
	assert.False(t, s.IsValid(ctx, tok))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n))
	assert.Equal(t, 0, n, "expired row removed on lookup")
}

func TestSQLStore_FailsClosed(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	tok, err := s.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.False(t, s.IsValid(ctx, tok))
	_, err = s.Create(ctx)
	assert.Error(t, err)
	assert.Error(t, s.Ping(ctx))
}
