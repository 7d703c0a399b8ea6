// Package storage contains the backend-agnostic repository contract and the
// factory registry that concrete backends hook into at init time.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"datapipeline/internal/ddl"
)

// Repository is the capability set a loader needs from a destination
// database. Implementations live under storage/<backend> and register
// themselves with the factory; callers stay backend-agnostic.
type Repository interface {
	// Exec runs a statement that returns no rows (DDL, DROP, ...).
	Exec(ctx context.Context, sql string) error

	// TableExists reports whether the destination table already exists.
	TableExists(ctx context.Context, table string) (bool, error)

	// Columns returns the destination table's column names in order.
	Columns(ctx context.Context, table string) ([]string, error)

	// CreateTable creates the table from a dialect-mapped definition.
	CreateTable(ctx context.Context, def ddl.TableDef) error

	// DropTable drops the table if it exists.
	DropTable(ctx context.Context, table string) error

	// InsertRows bulk-inserts rows aligned to columns order and returns the
	// number of rows written. A failed insert leaves the table unchanged.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Count returns the row count of the destination table.
	Count(ctx context.Context, table string) (int64, error)

	Close()
}

// Config carries the connection parameters a factory needs to open a
// Repository. DSN, when set, wins over the discrete fields.
type Config struct {
	Kind     string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Charset  string
	DSN      string
}

// Factory opens a Repository for a Config. Factories must fail fast on
// unreachable databases rather than defer errors to the first statement.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a factory for a backend kind. Re-registering a kind
// overrides the previous factory; tests rely on this.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind using the registered factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered backend kinds.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
