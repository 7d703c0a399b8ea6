// Package postgres implements a Postgres-backed storage.Repository using
// pgx v5. Bulk inserts go through the COPY protocol, which is the fastest
// write path Postgres offers.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	gddl "datapipeline/internal/ddl"
	pgddl "datapipeline/internal/storage/postgres/ddl"
)

// Repository is a Postgres-backed storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository opens a pgx pool for the DSN and pings it to fail fast on an
// unreachable server.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// BuildDSN assembles a pgx connection string from discrete parameters.
func BuildDSN(host string, port int, user, password, database string) string {
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s",
		user, password, net.JoinHostPort(host, strconv.Itoa(port)), database,
	)
}

// Exec executes an arbitrary statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// TableExists checks information_schema for the table. A dotted name is
// matched against its schema; otherwise the search is schema-agnostic.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	schema, name := splitName(table)
	var n int
	var err error
	if schema != "" {
		const q = `SELECT COUNT(*) FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2`
		err = r.pool.QueryRow(ctx, q, schema, name).Scan(&n)
	} else {
		const q = `SELECT COUNT(*) FROM information_schema.tables WHERE table_name = $1`
		err = r.pool.QueryRow(ctx, q, name).Scan(&n)
	}
	if err != nil {
		return false, fmt.Errorf("postgres: table exists: %w", err)
	}
	return n > 0, nil
}

// Columns returns the table's column names in ordinal order.
func (r *Repository) Columns(ctx context.Context, table string) ([]string, error) {
	schema, name := splitName(table)
	var (
		rows pgx.Rows
		err  error
	)
	if schema != "" {
		const q = `SELECT column_name FROM information_schema.columns
			WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position`
		rows, err = r.pool.Query(ctx, q, schema, name)
	} else {
		const q = `SELECT column_name FROM information_schema.columns
			WHERE table_name = $1 ORDER BY ordinal_position`
		rows, err = r.pool.Query(ctx, q, name)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: columns: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("postgres: columns scan: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: columns rows: %w", err)
	}
	return cols, nil
}

// CreateTable renders and executes the dialect CREATE TABLE statement.
func (r *Repository) CreateTable(ctx context.Context, def gddl.TableDef) error {
	stmt, err := pgddl.BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return r.Exec(ctx, stmt)
}

// DropTable drops the table if it exists.
func (r *Repository) DropTable(ctx context.Context, table string) error {
	return r.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", pgddl.QuoteFQN(table)))
}

// InsertRows streams all rows via COPY. COPY is atomic: a failure inserts
// nothing.
func (r *Repository) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: insert: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := r.pool.CopyFrom(ctx, splitFQN(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return 0, fmt.Errorf("postgres: copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return 0, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// Count returns the table's row count.
func (r *Repository) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgddl.QuoteFQN(table))
	if err := r.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

// Close closes the pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

// splitName separates an optional schema qualifier from the table name.
func splitName(table string) (schema, name string) {
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}
