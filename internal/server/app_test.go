package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KaityXD/choas-lib/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.GRPCAddr = "127.0.0.1:0"
	c.StorageDir = filepath.Join(dir, "cdn_files")
	c.LogFile = filepath.Join(dir, "logs", "cdn.log")
	c.AdminPassword = "pw"
	return c
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.StorageBackend = "ftp"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "config error")
}

func TestNewApp_LocalStorageMemorySessions(t *testing.T) {
	c := testConfig(t)

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	defer app.close()

	assert.NotNil(t, app.httpServer)
	assert.NotNil(t, app.grpcServer)
	assert.Empty(t, c.AdminPassword, "only the argon2 digest is kept")

	info, err := os.Stat(c.StorageDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(c.LogFile)
	assert.NoError(t, err)
}

func TestNewApp_SQLiteSessionsAndNoGRPC(t *testing.T) {
	c := testConfig(t)
	c.GRPCAddr = ""
	c.SessionBackend = config.SessionsSQLite
	c.DatabaseDSN = "file:" + filepath.Join(t.TempDir(), "sessions.db")

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	defer app.close()

	assert.Nil(t, app.grpcServer)
	assert.Len(t, app.closers, 2)
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
	assert.Nil(t, app.closers)
}

func TestApp_RunStopsWhenServerFails(t *testing.T) {
	c := testConfig(t)
	c.HTTPAddr = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after server failure")
	}
}
