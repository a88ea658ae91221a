package authcodes

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ Repo = (*RedisRepo)(nil)

// KEYS[1] = code key
// ARGV    = client_id, redirect_uri, subject, scope, issued_at ms, expires_at ms
//
// Returns 1 when stored, 0 when the key already exists.
var insertCodeLua = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1],
  'client_id', ARGV[1],
  'redirect_uri', ARGV[2],
  'subject', ARGV[3],
  'scope', ARGV[4],
  'issued_at', ARGV[5],
  'expires_at', ARGV[6])
redis.call('PEXPIREAT', KEYS[1], ARGV[6])
return 1
`)

// KEYS[1] = code key
// ARGV    = client_id, redirect_uri, now ms
//
// Returns the stored fields when the code matched and was deleted, nil
// otherwise. A mismatch leaves the key alone; an expired key is removed.
var redeemCodeLua = redis.NewScript(`
local v = redis.call('HMGET', KEYS[1], 'client_id', 'redirect_uri', 'subject', 'scope', 'issued_at', 'expires_at')
if not v[1] then
  return false
end
if tonumber(v[6]) <= tonumber(ARGV[3]) then
  redis.call('DEL', KEYS[1])
  return false
end
if v[1] ~= ARGV[1] or v[2] ~= ARGV[2] then
  return false
end
redis.call('DEL', KEYS[1])
return v
`)

// RedisRepo shares codes between replicas. Each code is a hash keyed by the
// code's SHA-256 with a PEXPIREAT matching the entry, so redis evicts
// unredeemed codes on its own.
type RedisRepo struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRepo(client redis.UniversalClient, prefix string) *RedisRepo {
	return &RedisRepo{client: client, prefix: prefix + "authcode:"}
}

func (r *RedisRepo) key(code string) string {
	return r.prefix + HashCode(code)
}

func (r *RedisRepo) Insert(ctx context.Context, code string, entry *Entry) error {
	stored, err := insertCodeLua.Run(ctx, r.client, []string{r.key(code)},
		entry.ClientID,
		entry.RedirectURI,
		entry.Subject,
		entry.Scope,
		entry.IssuedAt.UnixMilli(),
		entry.ExpiresAt.UnixMilli(),
	).Int()
	if err != nil {
		return errors.Wrap(err, "redis insert authorization code")
	}
	if stored == 0 {
		return ErrCodeExists
	}
	return nil
}

func (r *RedisRepo) Redeem(ctx context.Context, code, clientID, redirectURI string, now time.Time) (*Entry, error) {
	vals, err := redeemCodeLua.Run(ctx, r.client, []string{r.key(code)},
		clientID, redirectURI, now.UnixMilli(),
	).StringSlice()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis redeem authorization code")
	}
	if len(vals) != 6 {
		return nil, errors.Errorf("redis redeem authorization code: unexpected reply length %d", len(vals))
	}
	issued, err := strconv.ParseInt(vals[4], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse issued_at")
	}
	expires, err := strconv.ParseInt(vals[5], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse expires_at")
	}
	return &Entry{
		ClientID:    vals[0],
		RedirectURI: vals[1],
		Subject:     vals[2],
		Scope:       vals[3],
		IssuedAt:    time.UnixMilli(issued).UTC(),
		ExpiresAt:   time.UnixMilli(expires).UTC(),
	}, nil
}

// DeleteExpired is a no-op; keys carry their own expiry.
func (r *RedisRepo) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

// Close leaves the client open; it is owned by the caller.
func (r *RedisRepo) Close() error { return nil }
