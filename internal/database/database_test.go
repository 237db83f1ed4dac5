package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franckalain/halalscan/internal/logging"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, found, err := kv.Get(ctx, "halal_scan_history")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "halal_scan_history", `[{"id":"1"}]`))
	value, found, err := kv.Get(ctx, "halal_scan_history")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1"}]`, value)

	require.NoError(t, kv.Set(ctx, "halal_scan_history", `[]`))
	value, _, err = kv.Get(ctx, "halal_scan_history")
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)

	require.NoError(t, kv.Delete(ctx, "halal_scan_history"))
	_, found, err = kv.Get(ctx, "halal_scan_history")
	require.NoError(t, err)
	assert.False(t, found)

	// deleting twice is fine
	require.NoError(t, kv.Delete(ctx, "halal_scan_history"))

	assert.ErrorIs(t, kv.Set(ctx, " ", "v"), ErrEmptyKey)
	_, _, err = kv.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, kv.Delete(ctx, ""), ErrEmptyKey)
}

func TestSQLiteKVInMemory(t *testing.T) {
	kv, err := NewSQLiteKV(":memory:", logging.Discard())
	require.NoError(t, err)
	defer kv.Close()

	exerciseKV(t, kv)
}

func TestSQLiteKVPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halalscan.db")
	ctx := context.Background()

	kv, err := NewSQLiteKV(path, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "k", "persisted"))
	require.NoError(t, kv.Close())

	kv, err = NewSQLiteKV(path, logging.Discard())
	require.NoError(t, err)
	defer kv.Close()

	value, found, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "persisted", value)
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	kv, err := Open(ctx, Options{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteKV{}, kv)
	require.NoError(t, kv.Close())

	_, err = Open(ctx, Options{Driver: "mysql"}, nil)
	assert.Error(t, err)

	_, err = Open(ctx, Options{Driver: "redis"}, nil)
	assert.Error(t, err)
}

func TestRedisKVInProcess(t *testing.T) {
	mr := miniredis.RunT(t)

	kv := NewRedisKVFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer kv.Close()

	exerciseKV(t, kv)

	require.NoError(t, kv.Set(context.Background(), "halal_scan_history", "[]"))
	value, err := mr.Get("halal_scan_history")
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
	assert.Zero(t, mr.TTL("halal_scan_history"))
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	kv, err := Open(ctx, Options{Driver: "redis", RedisAddr: mr.Addr()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisKV{}, kv)
	require.NoError(t, kv.Set(ctx, "k", "v"))
	require.NoError(t, kv.Close())

	_, err = NewRedisKV(ctx, "127.0.0.1:1", 0)
	assert.ErrorContains(t, err, "error connecting to redis")
}

func TestRedisKVServerErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	kv := NewRedisKVFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer kv.Close()
	ctx := context.Background()

	mr.SetError("LOADING")
	_, _, err := kv.Get(ctx, "k")
	assert.ErrorContains(t, err, "get key")
	assert.ErrorContains(t, kv.Set(ctx, "k", "v"), "set key")
	assert.ErrorContains(t, kv.Delete(ctx, "k"), "delete key")
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("HALALSCAN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HALALSCAN_TEST_REDIS_ADDR not set")
	}

	kv, err := NewRedisKV(context.Background(), addr, 15)
	require.NoError(t, err)
	defer kv.Close()

	exerciseKV(t, kv)
}
