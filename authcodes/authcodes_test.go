package authcodes_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-enquiry-service/authcodes"
	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
)

const (
	testClientID    = "c1"
	testRedirectURI = "https://cb"
)

func newEntry(now time.Time, ttl time.Duration) *authcodes.Entry {
	return &authcodes.Entry{
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
		Subject:     "alice",
		Scope:       "openid profile",
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
	}
}

func newCode(t *testing.T) string {
	t.Helper()
	code, err := authcodes.NewCode(32)
	require.NoError(t, err)
	return code
}

// runContract exercises the behaviour every driver has to provide.
func runContract(t *testing.T, repo authcodes.Repo) {
	ctx := context.Background()

	t.Run("redeem once", func(t *testing.T) {
		now := time.Now()
		code := newCode(t)
		require.NoError(t, repo.Insert(ctx, code, newEntry(now, time.Minute)))

		e, err := repo.Redeem(ctx, code, testClientID, testRedirectURI, now)
		require.NoError(t, err)
		require.Equal(t, "alice", e.Subject)
		require.Equal(t, "openid profile", e.Scope)

		_, err = repo.Redeem(ctx, code, testClientID, testRedirectURI, now)
		require.ErrorIs(t, err, authcodes.ErrCodeNotFound)
		require.True(t, apperrors.Is(err, apperrors.ErrInvalidGrant))
	})

	t.Run("insert never overwrites", func(t *testing.T) {
		now := time.Now()
		code := newCode(t)
		require.NoError(t, repo.Insert(ctx, code, newEntry(now, time.Minute)))

		other := newEntry(now, time.Minute)
		other.Subject = "mallory"
		err := repo.Insert(ctx, code, other)
		require.ErrorIs(t, err, authcodes.ErrCodeExists)

		e, err := repo.Redeem(ctx, code, testClientID, testRedirectURI, now)
		require.NoError(t, err)
		require.Equal(t, "alice", e.Subject)
	})

	t.Run("mismatch keeps the code", func(t *testing.T) {
		now := time.Now()
		code := newCode(t)
		require.NoError(t, repo.Insert(ctx, code, newEntry(now, time.Minute)))

		_, err := repo.Redeem(ctx, code, "other-client", testRedirectURI, now)
		require.ErrorIs(t, err, authcodes.ErrCodeNotFound)
		_, err = repo.Redeem(ctx, code, testClientID, "https://evil", now)
		require.ErrorIs(t, err, authcodes.ErrCodeNotFound)

		_, err = repo.Redeem(ctx, code, testClientID, testRedirectURI, now)
		require.NoError(t, err)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := repo.Redeem(ctx, "never-issued", testClientID, testRedirectURI, time.Now())
		require.ErrorIs(t, err, authcodes.ErrCodeNotFound)
	})

	t.Run("expired code", func(t *testing.T) {
		now := time.Now()
		code := newCode(t)
		require.NoError(t, repo.Insert(ctx, code, newEntry(now, time.Minute)))

		_, err := repo.Redeem(ctx, code, testClientID, testRedirectURI, now.Add(time.Minute))
		require.ErrorIs(t, err, authcodes.ErrCodeNotFound)
	})

	t.Run("concurrent redemption succeeds once", func(t *testing.T) {
		now := time.Now()
		code := newCode(t)
		require.NoError(t, repo.Insert(ctx, code, newEntry(now, time.Minute)))

		var (
			wg        sync.WaitGroup
			successes atomic.Int32
			failures  atomic.Int32
		)
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Redeem(ctx, code, testClientID, testRedirectURI, now)
				if err == nil {
					successes.Add(1)
				} else if apperrors.Is(err, authcodes.ErrCodeNotFound) {
					failures.Add(1)
				}
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), successes.Load())
		require.Equal(t, int32(31), failures.Load())
	})
}

func TestNewCode(t *testing.T) {
	a := newCode(t)
	b := newCode(t)
	require.NotEqual(t, a, b)
	require.Len(t, a, 43)
	require.NotContains(t, a, "=")

	_, err := authcodes.NewCode(8)
	require.Error(t, err)
}

func TestHashCode(t *testing.T) {
	require.Equal(t, authcodes.HashCode("abc"), authcodes.HashCode("abc"))
	require.NotEqual(t, authcodes.HashCode("abc"), authcodes.HashCode("abd"))
	require.Len(t, authcodes.HashCode("abc"), 64)
}

func TestMemoryRepo(t *testing.T) {
	repo := authcodes.NewMemoryRepo()
	runContract(t, repo)

	t.Run("sweep", func(t *testing.T) {
		ctx := context.Background()
		now := time.Now()
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.Insert(ctx, newCode(t), newEntry(now, time.Minute)))
		}
		live := newCode(t)
		require.NoError(t, repo.Insert(ctx, live, newEntry(now, time.Hour)))

		before := repo.Len()
		removed, err := repo.DeleteExpired(ctx, now.Add(2*time.Minute))
		require.NoError(t, err)
		require.GreaterOrEqual(t, removed, 3)
		require.Equal(t, before-removed, repo.Len())

		_, err = repo.Redeem(ctx, live, testClientID, testRedirectURI, now)
		require.NoError(t, err)
	})
}

func TestRedisRepo(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := authcodes.NewRedisRepo(client, "test:")
	runContract(t, repo)

	t.Run("stores hashed keys with expiry", func(t *testing.T) {
		ctx := context.Background()
		code := newCode(t)
		require.NoError(t, repo.Insert(ctx, code, newEntry(time.Now(), time.Minute)))

		key := "test:authcode:" + authcodes.HashCode(code)
		require.True(t, mr.Exists(key))
		require.False(t, mr.Exists("test:authcode:"+code))
		require.Greater(t, mr.TTL(key), time.Duration(0))
	})
}
