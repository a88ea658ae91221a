package authcodes

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
)

var _ Repo = (*PostgresRepo)(nil)

const uniqueViolation = "23505"

const schema = `
create table if not exists oauth_authorization_codes (
	code_hash    text primary key,
	client_id    text not null,
	redirect_uri text not null,
	subject      text not null,
	scope        text not null,
	issued_at    timestamptz not null,
	expires_at   timestamptz not null
);
create index if not exists oauth_authorization_codes_expires_at_idx
	on oauth_authorization_codes (expires_at);
`

// PostgresRepo shares codes between replicas through a single table. Redeem
// is one conditional DELETE ... RETURNING, so two concurrent redemptions of
// the same code can't both see a row.
type PostgresRepo struct {
	db     *sql.DB
	ownsDB bool
}

// OpenPostgres connects through the pgx stdlib driver and creates the table.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepo, error) {
	if dsn == "" {
		return nil, errors.New("postgres code store: POSTGRES_DSN is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	r := &PostgresRepo{db: db, ownsDB: true}
	if err := r.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// NewPostgresRepo wraps an existing pool. The caller keeps ownership.
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "migrate oauth_authorization_codes")
	}
	return nil
}

func (r *PostgresRepo) Insert(ctx context.Context, code string, entry *Entry) error {
	_, err := r.db.ExecContext(ctx, `
		insert into oauth_authorization_codes
			(code_hash, client_id, redirect_uri, subject, scope, issued_at, expires_at)
		values ($1, $2, $3, $4, $5, $6, $7)`,
		HashCode(code), entry.ClientID, entry.RedirectURI, entry.Subject, entry.Scope,
		entry.IssuedAt.UTC(), entry.ExpiresAt.UTC(),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrCodeExists
	}
	if err != nil {
		return errors.Wrap(err, "insert authorization code")
	}
	return nil
}

// Redeem doesn't delete expired rows; DeleteExpired does that.
func (r *PostgresRepo) Redeem(ctx context.Context, code, clientID, redirectURI string, now time.Time) (*Entry, error) {
	var e Entry
	err := r.db.QueryRowContext(ctx, `
		delete from oauth_authorization_codes
		where code_hash = $1 and client_id = $2 and redirect_uri = $3 and expires_at > $4
		returning client_id, redirect_uri, subject, scope, issued_at, expires_at`,
		HashCode(code), clientID, redirectURI, now.UTC(),
	).Scan(&e.ClientID, &e.RedirectURI, &e.Subject, &e.Scope, &e.IssuedAt, &e.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redeem authorization code")
	}
	return &e, nil
}

func (r *PostgresRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `delete from oauth_authorization_codes where expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "delete expired authorization codes")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	return int(n), nil
}

func (r *PostgresRepo) Close() error {
	if r.ownsDB {
		return r.db.Close()
	}
	return nil
}
