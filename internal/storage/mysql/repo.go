// Package mysql implements a MySQL-backed storage.Repository using
// database/sql with the go-sql-driver. Inserts run inside a single
// transaction with a prepared statement; a failed batch rolls back entirely.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	gddl "datapipeline/internal/ddl"
	myddl "datapipeline/internal/storage/mysql/ddl"
)

// Repository is a MySQL-backed storage.Repository.
type Repository struct {
	db      *sql.DB
	charset string
}

// BuildDSN assembles a driver DSN from discrete parameters using the driver's
// own Config type, which handles escaping and parameter formatting.
func BuildDSN(host string, port int, user, password, database, charset string) string {
	if port == 0 {
		port = 3306
	}
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = database
	cfg.ParseTime = true
	if charset != "" {
		cfg.Params = map[string]string{"charset": charset}
	}
	return cfg.FormatDSN()
}

// NewRepository opens a connection pool for the DSN and pings it to fail fast
// on an unreachable server.
func NewRepository(ctx context.Context, dsn, charset string) (*Repository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &Repository{db: db, charset: charset}, nil
}

// Exec executes an arbitrary statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// TableExists checks information_schema for the table in the current schema.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	const q = `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, baseName(table)).Scan(&n); err != nil {
		return false, fmt.Errorf("mysql: table exists: %w", err)
	}
	return n > 0, nil
}

// Columns returns the table's column names in ordinal order.
func (r *Repository) Columns(ctx context.Context, table string) ([]string, error) {
	const q = `SELECT column_name FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position`
	rows, err := r.db.QueryContext(ctx, q, baseName(table))
	if err != nil {
		return nil, fmt.Errorf("mysql: columns: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("mysql: columns scan: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: columns rows: %w", err)
	}
	return cols, nil
}

// CreateTable renders and executes the dialect CREATE TABLE statement.
func (r *Repository) CreateTable(ctx context.Context, def gddl.TableDef) error {
	stmt, err := myddl.BuildCreateTableSQL(def, r.charset)
	if err != nil {
		return err
	}
	return r.Exec(ctx, stmt)
}

// DropTable drops the table if it exists.
func (r *Repository) DropTable(ctx context.Context, table string) error {
	return r.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", myddl.QuoteFQN(table)))
}

// InsertRows inserts all rows in one transaction with a prepared statement.
func (r *Repository) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: insert: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myddl.QuoteIdent(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		myddl.QuoteFQN(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mysql: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

// Count returns the table's row count.
func (r *Repository) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", myddl.QuoteFQN(table))
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("mysql: count: %w", err)
	}
	return n, nil
}

// Close closes the connection pool.
func (r *Repository) Close() {
	_ = r.db.Close()
}

// baseName strips an optional schema qualifier.
func baseName(table string) string {
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		return table[i+1:]
	}
	return table
}
