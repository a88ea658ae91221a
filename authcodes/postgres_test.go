package authcodes_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-enquiry-service/authcodes"
)

var codeColumns = []string{"client_id", "redirect_uri", "subject", "scope", "issued_at", "expires_at"}

func setupPostgres(t *testing.T) (*authcodes.PostgresRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return authcodes.NewPostgresRepo(db), mock
}

func TestPostgresInsert(t *testing.T) {
	repo, mock := setupPostgres(t)
	now := time.Now()

	mock.ExpectExec("insert into oauth_authorization_codes").
		WithArgs(authcodes.HashCode("code-1"), testClientID, testRedirectURI, "alice", "openid profile", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), "code-1", newEntry(now, time.Minute)))
}

func TestPostgresInsertCollision(t *testing.T) {
	repo, mock := setupPostgres(t)

	mock.ExpectExec("insert into oauth_authorization_codes").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := repo.Insert(context.Background(), "code-1", newEntry(time.Now(), time.Minute))
	require.ErrorIs(t, err, authcodes.ErrCodeExists)
}

func TestPostgresRedeem(t *testing.T) {
	repo, mock := setupPostgres(t)
	now := time.Now().UTC()

	mock.ExpectQuery("delete from oauth_authorization_codes").
		WithArgs(authcodes.HashCode("code-1"), testClientID, testRedirectURI, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(codeColumns).
			AddRow(testClientID, testRedirectURI, "alice", "openid profile", now, now.Add(time.Minute)))
	mock.ExpectQuery("delete from oauth_authorization_codes").
		WithArgs(authcodes.HashCode("code-1"), testClientID, testRedirectURI, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(codeColumns))

	e, err := repo.Redeem(context.Background(), "code-1", testClientID, testRedirectURI, now)
	require.NoError(t, err)
	require.Equal(t, "alice", e.Subject)

	_, err = repo.Redeem(context.Background(), "code-1", testClientID, testRedirectURI, now)
	require.ErrorIs(t, err, authcodes.ErrCodeNotFound)
}

func TestPostgresDeleteExpired(t *testing.T) {
	repo, mock := setupPostgres(t)

	mock.ExpectExec("delete from oauth_authorization_codes where expires_at <=").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestPostgresMigrate(t *testing.T) {
	repo, mock := setupPostgres(t)
	mock.ExpectExec("create table if not exists oauth_authorization_codes").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.Migrate(context.Background()))
}
