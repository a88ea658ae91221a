package authcodes_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-enquiry-service/authcodes"
	"github.com/jrsteele09/go-enquiry-service/internal/config"
)

func TestFactory(t *testing.T) {
	ctx := context.Background()
	cfg := config.Store{}

	t.Run("memory by default", func(t *testing.T) {
		t.Setenv("CODE_STORE", "")
		repo, err := authcodes.New(ctx, cfg, authcodes.Deps{})
		require.NoError(t, err)
		require.IsType(t, &authcodes.MemoryRepo{}, repo)
	})

	t.Run("redis needs a client", func(t *testing.T) {
		t.Setenv("CODE_STORE", "redis")
		_, err := authcodes.New(ctx, cfg, authcodes.Deps{})
		require.Error(t, err)

		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		repo, err := authcodes.New(ctx, cfg, authcodes.Deps{Redis: client})
		require.NoError(t, err)
		require.IsType(t, &authcodes.RedisRepo{}, repo)
	})

	t.Run("postgres needs a dsn", func(t *testing.T) {
		t.Setenv("CODE_STORE", "postgres")
		t.Setenv("POSTGRES_DSN", "")
		_, err := authcodes.New(ctx, cfg, authcodes.Deps{})
		require.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("CODE_STORE", "etcd")
		_, err := authcodes.New(ctx, cfg, authcodes.Deps{})
		require.Error(t, err)
	})
}
