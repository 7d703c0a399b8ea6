// Static validation for resolved Pipeline values. It performs checks over a
// Pipeline and returns a list of issues (errors and warnings) that callers
// can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced to users but does
	// not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "loader.kind",
// "database.host"). Message is human-readable and never contains credential
// values.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Component kinds with a matching implementation. Unrecognized kinds are
// rejected at resolve time.
var (
	knownExtractors   = map[string]struct{}{"csv": {}}
	knownTransformers = map[string]struct{}{
		"passthrough": {},
		"normalize":   {},
		"require":     {},
		"dedup":       {},
	}
	knownLoaders = map[string]struct{}{
		"mysql":    {},
		"postgres": {},
		"sqlite":   {},
	}
	knownPolicies = map[string]struct{}{"fail": {}, "replace": {}, "append": {}}
)

// Validate performs static validation of a Pipeline. It does not mutate the
// pipeline; it returns a slice of Issue values. Callers may decide whether to
// treat warnings as fatal.
func Validate(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Name) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "name",
			Message:  "pipeline name must not be empty; it labels runs in logs and metrics",
		})
	}

	issues = append(issues, validateKind("extractor.kind", p.Extractor.Kind, knownExtractors)...)
	issues = append(issues, validateKind("transformer.kind", p.Transformer.Kind, knownTransformers)...)
	issues = append(issues, validateKind("loader.kind", p.Loader.Kind, knownLoaders)...)

	if pol := p.Loader.Options.String("if_exists", ""); pol != "" {
		if _, ok := knownPolicies[pol]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "loader.options.if_exists",
				Message:  fmt.Sprintf("unknown table-exists policy %q; expected fail, replace, or append", pol),
			})
		}
	}

	if n := p.Extractor.Options.Int("skip_rows", 0); n < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "extractor.options.skip_rows",
			Message:  "skip_rows must not be negative",
		})
	}
	if n := p.Extractor.Options.Int("max_rows", 0); n < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "extractor.options.max_rows",
			Message:  "max_rows must not be negative",
		})
	}

	issues = append(issues, validateDatabase(p)...)

	return issues
}

// validateDatabase checks connection parameters. The sqlite backend resolves
// its database file locally and needs no host or credentials.
func validateDatabase(p Pipeline) []Issue {
	var issues []Issue

	db := p.Database
	if strings.TrimSpace(db.Database) == "" && p.Loader.Options.String("dsn", "") == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database.name",
			Message:  "database name must not be empty",
		})
	}

	if p.Loader.Kind == "sqlite" {
		return issues
	}

	if strings.TrimSpace(db.Host) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database.host",
			Message:  "database host must not be empty",
		})
	}
	if strings.TrimSpace(db.User) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database.user",
			Message:  "database user must not be empty",
		})
	}
	if db.Port < 1 || db.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database.port",
			Message:  fmt.Sprintf("port %d out of range 1-65535", db.Port),
		})
	}
	if strings.TrimSpace(db.Password) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "database.password",
			Message:  "password is empty; the server may reject the connection",
		})
	}

	return issues
}

func validateKind(path, kind string, known map[string]struct{}) []Issue {
	if strings.TrimSpace(kind) == "" {
		return []Issue{{
			Severity: SeverityError,
			Path:     path,
			Message:  "kind must not be empty",
		}}
	}
	if _, ok := known[kind]; !ok {
		return []Issue{{
			Severity: SeverityError,
			Path:     path,
			Message:  fmt.Sprintf("unknown kind %q; no matching implementation exists", kind),
		}}
	}
	return nil
}

// FirstError returns the first error-severity issue, or nil when the issue
// list carries only warnings.
func FirstError(issues []Issue) error {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return iss
		}
	}
	return nil
}
