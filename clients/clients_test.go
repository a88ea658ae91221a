package clients_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-enquiry-service/clients"
	fakeclientrepo "github.com/jrsteele09/go-enquiry-service/clients/fakerepo"
	"github.com/jrsteele09/go-enquiry-service/internal/config"
	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
)

func TestHasRedirectURI(t *testing.T) {
	c := &clients.Client{ID: "c1", RedirectURIs: []string{"https://cb", "https://app.example/callback"}}

	require.True(t, c.HasRedirectURI("https://cb"))
	require.False(t, c.HasRedirectURI("https://cb/"))
	require.False(t, c.HasRedirectURI("https://CB"))
	require.False(t, c.HasRedirectURI("https://cb?x=1"))
	require.False(t, c.HasRedirectURI(""))
}

func TestSecret(t *testing.T) {
	c := &clients.Client{ID: "c1"}
	require.True(t, c.IsPublic())
	require.False(t, c.ValidateSecret(""))

	require.NoError(t, c.SetSecret("s3cret"))
	require.False(t, c.IsPublic())
	require.NotEqual(t, "s3cret", c.SecretHash)
	require.True(t, c.ValidateSecret("s3cret"))
	require.False(t, c.ValidateSecret("wrong"))
	require.False(t, c.ValidateSecret(""))
}

func TestSecretTooLong(t *testing.T) {
	c := &clients.Client{ID: "c1"}
	err := c.SetSecret(strings.Repeat("s", 73))
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))
	require.True(t, c.IsPublic())

	err = clients.Seed(context.Background(), fakeclientrepo.NewFakeClientRepo(), []config.ClientSeed{
		{ID: "c1", Secret: strings.Repeat("s", 73), RedirectURIs: []string{"https://cb"}},
	})
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	repo := fakeclientrepo.NewFakeClientRepo()

	err := clients.Seed(ctx, repo, []config.ClientSeed{
		{ID: "c1", Secret: "s1", RedirectURIs: []string{"https://cb"}},
		{ID: "spa", RedirectURIs: []string{"http://localhost:3000/callback"}},
	})
	require.NoError(t, err)

	c1, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.True(t, c1.ValidateSecret("s1"))

	spa, err := repo.Get(ctx, "spa")
	require.NoError(t, err)
	require.True(t, spa.IsPublic())

	_, err = repo.Get(ctx, "nope")
	require.ErrorIs(t, err, clients.ErrClientNotFound)
}
