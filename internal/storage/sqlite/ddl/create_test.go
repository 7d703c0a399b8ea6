package ddl

import (
	"strings"
	"testing"

	gddl "datapipeline/internal/ddl"
)

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN: "main.items",
		Columns: []gddl.ColumnDef{
			{Name: "id", SQLType: "integer", PrimaryKey: true},
			{Name: "name", SQLType: "text", Nullable: true},
		},
	}

	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "main"."items"`,
		`"id" INTEGER NOT NULL`,
		`"name" TEXT`,
		`PRIMARY KEY ("id")`,
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("statement missing %q:\n%s", want, sql)
		}
	}
}

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"integer", "INTEGER"},
		{"bool", "INTEGER"},
		{"float", "REAL"},
		{"blob", "BLOB"},
		{"text", "TEXT"},
		{"TIMESTAMP", "TEXT"},
		{"", "TEXT"},
	}
	for _, tt := range tests {
		if got := MapType(tt.in); got != tt.want {
			t.Fatalf("MapType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuoteIdentEscapesQuotes(t *testing.T) {
	t.Parallel()

	if got, want := QuoteIdent(`we"ird`), `"we""ird"`; got != want {
		t.Fatalf("QuoteIdent() = %q, want %q", got, want)
	}
}
