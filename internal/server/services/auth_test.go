package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/KaityXD/choas-lib/internal/cryptox"
	"github.com/KaityXD/choas-lib/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T, password string) (*AuthService, *fakeStore, *recLogger) {
	t.Helper()
	store := newFakeStore()
	l := newRecLogger()
	return NewAuthService(store, cryptox.NewSecret([]byte(password)), []byte("jwt-key"), time.Hour, l), store, l
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	s, store, l := newAuth(t, "hunter2")

	tok, err := s.Login(ctx, "hunter2")
	require.NoError(t, err)
	assert.True(t, store.IsValid(ctx, tok))
	assert.True(t, s.Authenticate(ctx, tok))

	_, err = s.Login(ctx, "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Len(t, l.level("warn"), 1)
	assert.Len(t, store.live, 1)
}

func TestAuthService_LoginDisabled(t *testing.T) {
	s, store, _ := newAuth(t, "")

	for _, pw := range []string{"", "anything"} {
		_, err := s.Login(context.Background(), pw)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	}
	assert.Empty(t, store.live)
}

func TestAuthService_LoginShedsExcessConcurrentAttempts(t *testing.T) {
	ctx := context.Background()
	v := &blockingVerifier{started: make(chan struct{}, MaxConcurrentLogins), release: make(chan struct{})}
	store := newFakeStore()
	l := newRecLogger()
	s := NewAuthService(store, v, []byte("jwt-key"), time.Hour, l)

	var wg sync.WaitGroup
	errs := make(chan error, MaxConcurrentLogins)
	for i := 0; i < MaxConcurrentLogins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Login(ctx, "wrong")
			errs <- err
		}()
	}
	for i := 0; i < MaxConcurrentLogins; i++ {
		<-v.started
	}

	_, err := s.Login(ctx, "pw")
	require.ErrorIs(t, err, common.ErrTooManyLogins)
	assert.Len(t, l.level("warn"), 1)

	close(v.release)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	}

	tok, err := s.Login(ctx, "pw")
	require.NoError(t, err)
	assert.True(t, store.IsValid(ctx, tok))
}

func TestAuthService_LoginNilVerifier(t *testing.T) {
	s := NewAuthService(newFakeStore(), nil, []byte("jwt-key"), time.Hour, newRecLogger())

	_, err := s.Login(context.Background(), "anything")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthService_LoginStoreFailure(t *testing.T) {
	s, store, l := newAuth(t, "pw")
	store.createErr = errors.New("db down")

	_, err := s.Login(context.Background(), "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)
	assert.Len(t, l.level("error"), 1)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newAuth(t, "pw")

	tok, err := s.Login(ctx, "pw")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, tok))
	assert.False(t, s.Authenticate(ctx, tok))

	assert.NoError(t, s.Logout(ctx, tok))
	assert.NoError(t, s.Logout(ctx, ""))
	assert.False(t, s.Authenticate(ctx, ""))
}

func TestAuthService_APIToken(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newAuth(t, "pw")

	session, err := s.Login(ctx, "pw")
	require.NoError(t, err)

	api, err := s.IssueAPIToken(session)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), api.ExpiresAt, time.Minute)

	got, err := s.SessionFromAPIToken(ctx, api.Token)
	require.NoError(t, err)
	assert.Equal(t, session, got)

	require.NoError(t, s.Logout(ctx, session))
	_, err = s.SessionFromAPIToken(ctx, api.Token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthService_APITokenRejections(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newAuth(t, "pw")
	store.live["tok-live"] = true

	_, err := s.SessionFromAPIToken(ctx, "garbage")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	foreign, _, err := auth.GenerateToken("tok-live", []byte("other-key"), time.Hour)
	require.NoError(t, err)
	_, err = s.SessionFromAPIToken(ctx, foreign)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	expired, _, err := auth.GenerateToken("tok-live", []byte("jwt-key"), -time.Second)
	require.NoError(t, err)
	_, err = s.SessionFromAPIToken(ctx, expired)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
