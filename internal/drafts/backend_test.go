package drafts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteBackend(t *testing.T) *SQLiteBackend {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	backend, err := NewSQLiteBackend(db)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func newRedisBackend(t *testing.T) *RedisBackend {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisBackend(client, 0)
	t.Cleanup(func() { backend.Close() })
	return backend
}

// runBackendContract exercises the behaviour every Backend must share
func runBackendContract(t *testing.T, backend Backend) {
	ctx := context.Background()

	_, found, err := backend.Get(ctx, "author:missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, backend.Put(ctx, "author:a1", []byte(`{"v":1}`), epoch))
	require.NoError(t, backend.Put(ctx, "author:a1", []byte(`{"v":2}`), epoch.Add(time.Hour)))
	require.NoError(t, backend.Put(ctx, "response:a1", []byte(`{}`), epoch.Add(3*time.Hour)))

	data, found, err := backend.Get(ctx, "author:a1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"v":2}`, string(data))

	// the overwrite moved author:a1 to epoch+1h, so a cutoff of epoch+2h removes it
	n, err := backend.DeleteOlderThan(ctx, epoch.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, found, err = backend.Get(ctx, "author:a1")
	require.NoError(t, err)
	assert.False(t, found)

	n, err = backend.DeleteOlderThan(ctx, epoch.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "cutoff is exclusive")

	require.NoError(t, backend.Delete(ctx, "response:a1"))
	require.NoError(t, backend.Delete(ctx, "response:a1"))
	_, found, err = backend.Get(ctx, "response:a1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryBackend(t *testing.T) {
	runBackendContract(t, NewMemoryBackend())
}

func TestSQLiteBackend(t *testing.T) {
	runBackendContract(t, newSQLiteBackend(t))
}

func TestRedisBackend(t *testing.T) {
	runBackendContract(t, newRedisBackend(t))
}

func TestRedisBackend_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisBackend(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "author:a1", []byte(`{}`), epoch))
	assert.Equal(t, time.Hour, mr.TTL("draft:author:a1"))

	mr.FastForward(2 * time.Hour)
	_, found, err := backend.Get(ctx, "author:a1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisBackend_SweepSkipsExpiredValues(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisBackend(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "author:gone", []byte(`{}`), epoch))
	mr.FastForward(2 * time.Hour)
	require.NoError(t, backend.Put(ctx, "author:kept", []byte(`{}`), epoch.Add(time.Minute)))

	deleted, err := backend.DeleteOlderThan(ctx, epoch.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted, "an expired value is not counted as swept")

	members, err := client.ZRange(ctx, redisIndexKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestRedisBackend_GetMissPrunesIndex(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisBackend(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "response:r1", []byte(`{}`), epoch))
	mr.FastForward(2 * time.Hour)

	_, found, err := backend.Get(ctx, "response:r1")
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := backend.DeleteOlderThan(ctx, epoch.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.False(t, mr.Exists(redisIndexKey))
}

func TestStore_WithSQLiteBackend(t *testing.T) {
	store, clock := newTestStore(newSQLiteBackend(t))
	ctx := context.Background()

	store.ScheduleAuthor(sampleAssessment("persisted"))
	clock.Advance(1500 * time.Millisecond)

	draft := store.LoadAuthor(ctx, "a1")
	require.NotNil(t, draft)
	assert.Equal(t, "persisted", draft.Snapshot.Title)
	assert.Equal(t, []string{"q1"}, draft.Snapshot.Sections[0].QuestionIDs)
}
