package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
	"github.com/jrsteele09/go-enquiry-service/sessions"
)

func newSession(t *testing.T, username string, ttl time.Duration) *sessions.Session {
	t.Helper()
	id, err := sessions.NewID()
	require.NoError(t, err)
	now := time.Now()
	return &sessions.Session{ID: id, Username: username, CreatedAt: now, ExpiresAt: now.Add(ttl)}
}

func TestNewID(t *testing.T) {
	a, err := sessions.NewID()
	require.NoError(t, err)
	b, err := sessions.NewID()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.Len(t, a, 43)
}

func TestExpired(t *testing.T) {
	now := time.Now()
	s := &sessions.Session{ExpiresAt: now}
	require.True(t, s.Expired(now))
	require.False(t, s.Expired(now.Add(-time.Second)))
}

func runRepoTests(t *testing.T, repo sessions.Repo) {
	ctx := context.Background()

	t.Run("upsert and get", func(t *testing.T) {
		s := newSession(t, "alice", time.Minute)
		require.NoError(t, repo.Upsert(ctx, s))
		got, err := repo.Get(ctx, s.ID)
		require.NoError(t, err)
		require.Equal(t, "alice", got.Username)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		require.ErrorIs(t, err, sessions.ErrSessionNotFound)
		require.True(t, apperrors.Is(err, apperrors.ErrUnauthenticated))
	})

	t.Run("delete", func(t *testing.T) {
		s := newSession(t, "bob", time.Minute)
		require.NoError(t, repo.Upsert(ctx, s))
		require.NoError(t, repo.Delete(ctx, s.ID))
		_, err := repo.Get(ctx, s.ID)
		require.ErrorIs(t, err, sessions.ErrSessionNotFound)
	})
}

func TestMemoryRepo(t *testing.T) {
	repo := sessions.NewMemoryRepo()
	runRepoTests(t, repo)

	ctx := context.Background()
	s := newSession(t, "carol", time.Minute)
	require.NoError(t, repo.Upsert(ctx, s))
	removed, err := repo.DeleteExpired(ctx, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	require.GreaterOrEqual(t, removed, 1)
	_, err = repo.Get(ctx, s.ID)
	require.ErrorIs(t, err, sessions.ErrSessionNotFound)
}

func TestRedisRepo(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := sessions.NewRedisRepo(client, "test:")
	runRepoTests(t, repo)

	t.Run("key expires with the session", func(t *testing.T) {
		ctx := context.Background()
		s := newSession(t, "dave", time.Minute)
		require.NoError(t, repo.Upsert(ctx, s))
		require.True(t, mr.Exists("test:session:"+s.ID))

		mr.FastForward(2 * time.Minute)
		_, err := repo.Get(ctx, s.ID)
		require.ErrorIs(t, err, sessions.ErrSessionNotFound)
	})
}
