package ddl

import (
	"strings"
	"testing"
)

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	def := TableDef{
		FQN: "public.items",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "BIGINT", PrimaryKey: true},
			{Name: "name", SQLType: "TEXT", Nullable: true},
			{Name: "kind", SQLType: "TEXT", Default: "'misc'"},
		},
	}

	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	for _, want := range []string{
		"CREATE TABLE public.items",
		"id BIGINT NOT NULL",
		"name TEXT,",
		"kind TEXT NOT NULL DEFAULT 'misc'",
		"PRIMARY KEY (id)",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("statement missing %q:\n%s", want, sql)
		}
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  TableDef
	}{
		{"empty fqn", TableDef{Columns: []ColumnDef{{Name: "a", SQLType: "TEXT"}}}},
		{"no columns", TableDef{FQN: "t"}},
		{"empty column name", TableDef{FQN: "t", Columns: []ColumnDef{{SQLType: "TEXT"}}}},
		{"empty sql type", TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a"}}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := BuildCreateTableSQL(tt.def); err == nil {
				t.Fatalf("BuildCreateTableSQL() expected error")
			}
		})
	}
}

func TestTextTable(t *testing.T) {
	t.Parallel()

	def := TextTable("items", []string{"id", "name"})
	if len(def.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(def.Columns))
	}
	for _, c := range def.Columns {
		if c.SQLType != "TEXT" || !c.Nullable {
			t.Fatalf("column %+v, want nullable TEXT", c)
		}
	}
}
