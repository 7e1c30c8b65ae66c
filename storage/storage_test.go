package storage

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	value, err := s.Get(ctx, "city")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, s.Set(ctx, "city", "Tokyo"))
	value, err = s.Get(ctx, "city")
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", value)

	require.NoError(t, s.Set(ctx, "city", "Lima"))
	value, err = s.Get(ctx, "city")
	require.NoError(t, err)
	assert.Equal(t, "Lima", value)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")

	s, err := Open(Config{Driver: DriverFile, Path: path})
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "city: Lima\n", string(data))
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	ctx := context.Background()

	require.NoError(t, NewFile(path).Set(ctx, "city", "Paris"))

	value, err := NewFile(path).Get(ctx, "city")
	require.NoError(t, err)
	assert.Equal(t, "Paris", value)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("city: [unterminated"), 0o644))

	_, err := NewFile(path).Get(context.Background(), "city")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(Config{Driver: DriverSQLite, Path: path})
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	s, err := NewSQLite(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "city", "Oslo"))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path, nil)
	require.NoError(t, err)
	defer s.Close()

	value, err := s.Get(ctx, "city")
	require.NoError(t, err)
	assert.Equal(t, "Oslo", value)
}

func TestSQLiteStoreLogsToGivenLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s, err := Open(Config{Driver: DriverSQLite, Path: path, Logger: logger})
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
	assert.NotContains(t, logs.String(), "WAL")
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("WEATHER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WEATHER_TEST_REDIS_ADDR not set")
	}

	s, err := Open(Config{Driver: DriverRedis, RedisAddr: addr, KeyPrefix: "weatherscreen-test:" + t.Name() + ":"})
	require.NoError(t, err)
	defer s.Close()

	// Leftovers from an earlier run.
	require.NoError(t, s.Set(context.Background(), "city", ""))

	exerciseStore(t, s)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "etcd"})
	assert.ErrorContains(t, err, "etcd")
}
