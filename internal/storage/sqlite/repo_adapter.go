package sqlite

import (
	"context"

	"datapipeline/internal/storage"
)

// newRepository is a test hook pointing at NewRepository by default.
var newRepository = NewRepository

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.Database
		}
		r, err := newRepository(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
}
