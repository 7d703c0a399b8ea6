// Package ddl models destination tables independently of any SQL dialect and
// renders a baseline CREATE TABLE statement from that model.
//
// The package never quotes identifiers and never emits dialect clauses such as
// IF NOT EXISTS; backend packages (internal/storage/<backend>/ddl) adapt the
// model to their dialect.
package ddl

import (
	"fmt"
	"strings"
)

// ColumnDef describes one destination column.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name, optionally dotted ("schema.table"), and the
// ordered column list.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// TextTable builds a TableDef where every column is nullable TEXT. Extracted
// CSV data carries no type information, so the destination defaults to text
// and backends map TEXT to their native equivalent.
func TextTable(fqn string, columns []string) TableDef {
	t := TableDef{FQN: fqn, Columns: make([]ColumnDef, 0, len(columns))}
	for _, c := range columns {
		t.Columns = append(t.Columns, ColumnDef{Name: c, SQLType: "TEXT", Nullable: true})
	}
	return t
}

// BuildCreateTableSQL renders a generic CREATE TABLE statement. Each column is
// emitted as "<Name> <SQLType> [NOT NULL] [DEFAULT <expr>]"; primary key
// columns are collected into a trailing PRIMARY KEY clause. Default is raw SQL
// and emitted verbatim.
func BuildCreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(name)
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, name)
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", fqn, strings.Join(cols, ",\n  ")), nil
}
