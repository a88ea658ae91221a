// Package gormdb persists users, enquiries and clients in SQLite through gorm.
package gormdb

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jrsteele09/go-enquiry-service/clients"
	"github.com/jrsteele09/go-enquiry-service/enquiries"
	"github.com/jrsteele09/go-enquiry-service/users"
)

// Open opens (creating if needed) the SQLite database at path and migrates
// the schema. Paths starting with "file:" are passed through untouched so
// in-memory DSNs work.
func Open(path string) (*gorm.DB, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "[Open] create data directory")
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Open] gorm.Open")
	}

	// SQLite allows a single writer.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "[Open] db.DB")
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&users.User{}, &enquiries.Enquiry{}, &clients.Client{}); err != nil {
		return errors.Wrap(err, "[Migrate] AutoMigrate")
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// page applies offset/limit. A non-positive limit means no limit.
func page(tx *gorm.DB, offset, limit int) *gorm.DB {
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	return tx
}
