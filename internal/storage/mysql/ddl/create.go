// Package ddl renders MySQL CREATE TABLE statements from the generic
// ddl.TableDef model. Identifiers are backtick-quoted.
package ddl

import (
	"fmt"
	"strings"

	gddl "datapipeline/internal/ddl"
)

// MapType maps a logical column type to a MySQL type. Unknown types fall back
// to TEXT.
func MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case "int", "integer":
		return "INT"
	case "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "TINYINT(1)"
	case "float", "double", "real", "numeric":
		return "DOUBLE"
	case "date":
		return "DATE"
	case "timestamp", "datetime":
		return "DATETIME"
	case "bytes", "blob":
		return "BLOB"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL returns a MySQL CREATE TABLE IF NOT EXISTS statement for
// the given definition. Charset, when non-empty, is emitted as a DEFAULT
// CHARSET table option.
func BuildCreateTableSQL(t gddl.TableDef, charset string) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("mysql ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("mysql ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("mysql ddl: column with empty name in table %s", fqn)
		}
		typ := MapType(c.SQLType)

		var sb strings.Builder
		sb.WriteString(QuoteIdent(name))
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
			pks = append(pks, QuoteIdent(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	suffix := ""
	if cs := strings.TrimSpace(charset); cs != "" {
		suffix = " DEFAULT CHARSET=" + cs
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n)%s;",
		QuoteFQN(fqn),
		strings.Join(cols, ",\n  "),
		suffix,
	), nil
}

// QuoteIdent backtick-quotes a single identifier segment.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// QuoteFQN quotes each dot-separated segment of a table name.
func QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, QuoteIdent(p))
	}
	return strings.Join(out, ".")
}
