package gormdb_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jrsteele09/go-enquiry-service/clients"
	"github.com/jrsteele09/go-enquiry-service/enquiries"
	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
	"github.com/jrsteele09/go-enquiry-service/storage/gormdb"
	"github.com/jrsteele09/go-enquiry-service/users"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gormdb.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = gormdb.Close(db) })
	return db
}

func newUser(t *testing.T, username string) *users.User {
	t.Helper()
	u, err := users.NewUser(users.Registration{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret",
		Name:     "Test User",
		Country:  "UK",
	})
	require.NoError(t, err)
	return u
}

func TestOpenCreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "enquiry.db")
	db, err := gormdb.Open(path)
	require.NoError(t, err)
	require.NoError(t, gormdb.Close(db))
	require.FileExists(t, path)
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := gormdb.NewUserRepo(setupTestDB(t))

	alice := newUser(t, "alice")
	require.NoError(t, repo.Create(ctx, alice))
	require.NotEmpty(t, alice.ID)

	t.Run("duplicate username", func(t *testing.T) {
		err := repo.Create(ctx, newUser(t, "alice"))
		require.ErrorIs(t, err, users.ErrUsernameTaken)
		require.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})

	t.Run("get by id and username", func(t *testing.T) {
		got, err := repo.Get(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, "alice", got.Username)
		require.Equal(t, alice.PasswordHash, got.PasswordHash)

		got, err = repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.ID)

		_, err = repo.Get(ctx, "missing")
		require.ErrorIs(t, err, users.ErrUserNotFound)
	})

	t.Run("update", func(t *testing.T) {
		got, err := repo.Get(ctx, alice.ID)
		require.NoError(t, err)
		got.Country = "FR"
		require.NoError(t, repo.Update(ctx, got))

		got, err = repo.Get(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, "FR", got.Country)

		require.ErrorIs(t, repo.Update(ctx, &users.User{ID: "missing", Username: "x"}), users.ErrUserNotFound)
	})

	t.Run("update to a taken username", func(t *testing.T) {
		bob := newUser(t, "bob")
		require.NoError(t, repo.Create(ctx, bob))
		bob.Username = "alice"
		require.ErrorIs(t, repo.Update(ctx, bob), users.ErrUsernameTaken)
	})

	t.Run("list and delete", func(t *testing.T) {
		list, err := repo.List(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)

		list, err = repo.List(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)

		deleted, err := repo.Delete(ctx, alice.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		deleted, err = repo.Delete(ctx, alice.ID)
		require.NoError(t, err)
		require.False(t, deleted)
	})
}

func TestEnquiryRepo(t *testing.T) {
	ctx := context.Background()
	repo := gormdb.NewEnquiryRepo(setupTestDB(t))

	e := &enquiries.Enquiry{Name: "Bob", Country: "UK", Email: "bob@example.com", Subject: "Hi", Body: "Hello"}
	require.NoError(t, repo.Create(ctx, e))
	require.NotEmpty(t, e.ID)

	got, err := repo.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, "Hello", got.Body)

	got.Subject = "Updated"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, "Updated", got.Subject)

	list, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	deleted, err := repo.Delete(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = repo.Get(ctx, e.ID)
	require.ErrorIs(t, err, enquiries.ErrEnquiryNotFound)
	require.ErrorIs(t, repo.Update(ctx, e), enquiries.ErrEnquiryNotFound)
}

func TestClientRepo(t *testing.T) {
	ctx := context.Background()
	repo := gormdb.NewClientRepo(setupTestDB(t))

	c := &clients.Client{ID: "spa", RedirectURIs: []string{"https://a/cb"}, Scopes: []string{"openid"}}
	require.NoError(t, repo.Upsert(ctx, c))

	c.RedirectURIs = append(c.RedirectURIs, "https://b/cb")
	require.NoError(t, c.SetSecret("secret"))
	require.NoError(t, repo.Upsert(ctx, c))

	got, err := repo.Get(ctx, "spa")
	require.NoError(t, err)
	require.Equal(t, []string{"https://a/cb", "https://b/cb"}, got.RedirectURIs)
	require.True(t, got.ValidateSecret("secret"))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, "spa"))
	_, err = repo.Get(ctx, "spa")
	require.ErrorIs(t, err, clients.ErrClientNotFound)
}
