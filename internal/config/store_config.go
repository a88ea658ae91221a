package config

import "strings"

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type StoreConfig interface {
	GetDBDriver() string
	GetDBPath() string
	GetCodeStore() string
	GetSessionStore() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
	GetPostgresDSN() string
	GetClientsFile() string
}

type Store struct{}

var _ StoreConfig = Store{}

// GetDBDriver selects the backing store for users, enquiries and clients.
func (Store) GetDBDriver() string {
	return strings.ToLower(GetEnv("DB_DRIVER", DriverSQLite))
}

func (Store) GetDBPath() string {
	return GetEnv("DB_PATH", "./data/enquiry.db")
}

// GetCodeStore selects where authorization codes live. Use redis or postgres
// when running more than one replica.
func (Store) GetCodeStore() string {
	return strings.ToLower(GetEnv("CODE_STORE", DriverMemory))
}

func (Store) GetSessionStore() string {
	return strings.ToLower(GetEnv("SESSION_STORE", DriverMemory))
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetInt("REDIS_DB", 0)
}

func (Store) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "enquiry:")
}

func (Store) GetPostgresDSN() string {
	return GetEnv("POSTGRES_DSN", "")
}

func (Store) GetClientsFile() string {
	return GetEnv("CLIENTS_FILE", "")
}
