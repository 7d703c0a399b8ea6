// Package loader writes datasets into a destination table through the
// backend-agnostic storage.Repository. The destination table is created on
// demand; behavior when it already exists is driven by the if_exists policy.
package loader

import (
	"context"
	"log"
	"sort"
	"strings"

	"datapipeline/internal/config"
	"datapipeline/internal/ddl"
	"datapipeline/internal/fault"
	"datapipeline/internal/storage"
	"datapipeline/pkg/records"
)

// Policy controls what happens when the destination table already exists.
type Policy string

const (
	// PolicyFail aborts the load when the table exists.
	PolicyFail Policy = "fail"
	// PolicyReplace drops and recreates the table before loading.
	PolicyReplace Policy = "replace"
	// PolicyAppend keeps the table and adds rows; the incoming columns must
	// match the existing ones.
	PolicyAppend Policy = "append"
)

// ParsePolicy normalizes and validates an if_exists policy string. Empty
// input resolves to PolicyFail.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFail:
		return PolicyFail, nil
	case PolicyReplace:
		return PolicyReplace, nil
	case PolicyAppend:
		return PolicyAppend, nil
	default:
		return "", fault.Wrapf(fault.Load, "unsupported if_exists policy %q", s)
	}
}

// Loader persists a dataset into a named destination table and reports the
// number of rows written.
type Loader interface {
	Load(ctx context.Context, ds *records.Dataset, destination string) (int64, error)
}

// SQLLoader loads datasets into a relational backend selected by kind. The
// connection is opened at the start of each load and released when the load
// finishes, success or not.
type SQLLoader struct {
	cfg    storage.Config
	policy Policy

	// openRepo is a seam for tests; defaults to storage.New.
	openRepo func(ctx context.Context, cfg storage.Config) (storage.Repository, error)
}

// New builds the loader selected by kind. Unknown kinds are rejected at
// construction so that misconfiguration surfaces before any work happens.
func New(kind string, cfg config.Pipeline) (Loader, error) {
	switch kind {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fault.Wrapf(fault.Load, "unsupported loader kind %q", kind)
	}

	policy, err := ParsePolicy(cfg.Loader.Options.String("if_exists", ""))
	if err != nil {
		return nil, err
	}

	charset := cfg.Loader.Options.String("charset", cfg.Database.Charset)

	return &SQLLoader{
		cfg: storage.Config{
			Kind:     kind,
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
			Charset:  charset,
			DSN:      cfg.Loader.Options.String("dsn", ""),
		},
		policy:   policy,
		openRepo: storage.New,
	}, nil
}

// Load connects, applies the if_exists policy, inserts the rows, and returns
// the inserted count. Connection failures and load failures carry distinct
// error kinds so callers can tell them apart.
func (l *SQLLoader) Load(ctx context.Context, ds *records.Dataset, destination string) (int64, error) {
	if ds == nil {
		return 0, fault.Wrapf(fault.Load, "nil dataset")
	}
	if strings.TrimSpace(destination) == "" {
		return 0, fault.Wrapf(fault.Load, "destination table must not be empty")
	}
	if len(ds.Columns) == 0 {
		return 0, fault.Wrapf(fault.Load, "dataset has no columns")
	}

	repo, err := l.openRepo(ctx, l.cfg)
	if err != nil {
		return 0, fault.Wrap(fault.Connection, err)
	}
	defer repo.Close()

	if err := l.prepareTable(ctx, repo, ds, destination); err != nil {
		return 0, err
	}

	n, err := repo.InsertRows(ctx, destination, ds.Columns, ds.Values())
	if err != nil {
		return 0, fault.Wrap(fault.Load, err)
	}
	log.Printf("loader: table=%s policy=%s inserted=%d", destination, l.policy, n)
	return n, nil
}

// prepareTable brings the destination table into a loadable state per policy.
func (l *SQLLoader) prepareTable(ctx context.Context, repo storage.Repository, ds *records.Dataset, destination string) error {
	exists, err := repo.TableExists(ctx, destination)
	if err != nil {
		return fault.Wrap(fault.Load, err)
	}

	def := ddl.TextTable(destination, ds.Columns)

	switch l.policy {
	case PolicyFail:
		if exists {
			return fault.Wrapf(fault.Load, "table %q already exists", destination)
		}
		if err := repo.CreateTable(ctx, def); err != nil {
			return fault.Wrap(fault.Load, err)
		}

	case PolicyReplace:
		if exists {
			if err := repo.DropTable(ctx, destination); err != nil {
				return fault.Wrap(fault.Load, err)
			}
		}
		if err := repo.CreateTable(ctx, def); err != nil {
			return fault.Wrap(fault.Load, err)
		}

	case PolicyAppend:
		if !exists {
			if err := repo.CreateTable(ctx, def); err != nil {
				return fault.Wrap(fault.Load, err)
			}
			return nil
		}
		have, err := repo.Columns(ctx, destination)
		if err != nil {
			return fault.Wrap(fault.Load, err)
		}
		if !sameColumns(have, ds.Columns) {
			return fault.Wrapf(fault.Load,
				"table %q columns %v do not match dataset columns %v",
				destination, have, ds.Columns)
		}

	default:
		return fault.Wrapf(fault.Load, "unsupported if_exists policy %q", l.policy)
	}
	return nil
}

// sameColumns compares two column sets ignoring order and case.
func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	na := normalized(a)
	nb := normalized(b)
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

func normalized(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.ToLower(strings.TrimSpace(c))
	}
	sort.Strings(out)
	return out
}
