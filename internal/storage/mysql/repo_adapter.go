// Package mysql provides the MySQL-backed storage.Repository implementation.
// This adapter wires the backend into the storage-agnostic factory.
package mysql

import (
	"context"

	"datapipeline/internal/storage"
)

// newRepository is a test hook pointing at NewRepository by default.
var newRepository = NewRepository

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		dsn := cfg.DSN
		if dsn == "" {
			dsn = BuildDSN(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.Charset)
		}
		r, err := newRepository(ctx, dsn, cfg.Charset)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
}
