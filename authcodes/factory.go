package authcodes

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/jrsteele09/go-enquiry-service/internal/config"
)

// Deps are shared connections a driver may need.
type Deps struct {
	Redis redis.UniversalClient
}

// New builds the code store selected by CODE_STORE.
func New(ctx context.Context, cfg config.StoreConfig, deps Deps) (Repo, error) {
	switch driver := cfg.GetCodeStore(); driver {
	case "", config.DriverMemory:
		return NewMemoryRepo(), nil
	case config.DriverRedis:
		if deps.Redis == nil {
			return nil, errors.New("redis code store: no redis client configured")
		}
		return NewRedisRepo(deps.Redis, cfg.GetRedisPrefix()), nil
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.GetPostgresDSN())
	default:
		return nil, errors.Errorf("unknown code store driver %q", driver)
	}
}
