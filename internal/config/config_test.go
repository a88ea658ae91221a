package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-enquiry-service/internal/config"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"PORT", "ENV", "AUTH_CODE_TTL", "ACCESS_TOKEN_TTL", "SESSION_MAX_AGE", "CODE_STORE", "REQUIRE_CLIENT_SECRET"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, config.EnvDev, c.GetEnv())
	require.Equal(t, 5*time.Minute, c.GetAuthCodeTimeout())
	require.Equal(t, time.Hour, c.GetDefaultAccessTokenExpiry())
	require.Equal(t, 30*time.Minute, c.GetMaxSessionAge())
	require.Equal(t, config.DriverMemory, c.GetCodeStore())
	require.Equal(t, "openid profile", c.GetDefaultScope())
	require.False(t, c.GetRequireClientSecret())
}

func TestAuthCodeTimeoutIsClamped(t *testing.T) {
	c := config.New()

	t.Setenv("AUTH_CODE_TTL", "5s")
	require.Equal(t, config.MinAuthCodeTTL, c.GetAuthCodeTimeout())

	t.Setenv("AUTH_CODE_TTL", "2h")
	require.Equal(t, config.MaxAuthCodeTTL, c.GetAuthCodeTimeout())

	t.Setenv("AUTH_CODE_TTL", "120")
	require.Equal(t, 2*time.Minute, c.GetAuthCodeTimeout())
}

func TestSigningSecret(t *testing.T) {
	c := config.New()

	t.Run("explicit", func(t *testing.T) {
		t.Setenv("OAUTH_SECRET", "top-secret")
		secret, err := c.GetSigningSecret()
		require.NoError(t, err)
		require.Equal(t, "top-secret", secret)
	})

	t.Run("generated in DEV", func(t *testing.T) {
		t.Setenv("OAUTH_SECRET", "")
		t.Setenv("ENV", "DEV")
		first, err := c.GetSigningSecret()
		require.NoError(t, err)
		require.Len(t, first, 64)
		second, err := c.GetSigningSecret()
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("required in PROD", func(t *testing.T) {
		t.Setenv("OAUTH_SECRET", "")
		t.Setenv("ENV", "PROD")
		_, err := c.GetSigningSecret()
		require.Error(t, err)
	})
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	origins := config.New().GetAllowedOrigins()
	require.Len(t, origins, 2)
	require.True(t, origins.IsAllowedOrigin("https://b.example"))
	require.False(t, origins.IsAllowedOrigin("https://c.example"))
}

func TestLoadClientSeeds(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "clients.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
clients:
  - id: c1
    description: Test client
    secret: s1
    redirect_uris:
      - https://cb
`), 0o600))

		seeds, err := config.LoadClientSeeds(path)
		require.NoError(t, err)
		require.Len(t, seeds, 1)
		require.Equal(t, "c1", seeds[0].ID)
		require.Equal(t, []string{"https://cb"}, seeds[0].RedirectURIs)
	})

	t.Run("missing redirect uris", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("clients:\n  - id: c2\n"), 0o600))
		_, err := config.LoadClientSeeds(path)
		require.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		seeds, err := config.LoadClientSeeds("")
		require.NoError(t, err)
		require.Empty(t, seeds)
	})
}
