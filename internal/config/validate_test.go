package config

import (
	"strings"
	"testing"
)

func validPipeline() Pipeline {
	return Pipeline{
		Name:        "p",
		Extractor:   Component{Kind: "csv", Options: Options{}},
		Transformer: Component{Kind: "passthrough", Options: Options{}},
		Loader:      Component{Kind: "mysql", Options: Options{}},
		Database: Database{
			Host: "h", Port: 3306, User: "u", Password: "pw", Database: "d",
		},
	}
}

func hasErrorAt(issues []Issue, path string) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError && iss.Path == path {
			return true
		}
	}
	return false
}

func TestValidateAccepts(t *testing.T) {
	t.Parallel()

	if err := FirstError(Validate(validPipeline())); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Pipeline)
		path   string
	}{
		{"empty name", func(p *Pipeline) { p.Name = " " }, "name"},
		{"unknown extractor", func(p *Pipeline) { p.Extractor.Kind = "parquet" }, "extractor.kind"},
		{"unknown transformer", func(p *Pipeline) { p.Transformer.Kind = "upper" }, "transformer.kind"},
		{"unknown loader", func(p *Pipeline) { p.Loader.Kind = "mongo" }, "loader.kind"},
		{"empty loader kind", func(p *Pipeline) { p.Loader.Kind = "" }, "loader.kind"},
		{"bad policy", func(p *Pipeline) { p.Loader.Options["if_exists"] = "truncate" }, "loader.options.if_exists"},
		{"negative skip_rows", func(p *Pipeline) { p.Extractor.Options["skip_rows"] = "-1" }, "extractor.options.skip_rows"},
		{"negative max_rows", func(p *Pipeline) { p.Extractor.Options["max_rows"] = "-5" }, "extractor.options.max_rows"},
		{"missing host", func(p *Pipeline) { p.Database.Host = "" }, "database.host"},
		{"missing user", func(p *Pipeline) { p.Database.User = "" }, "database.user"},
		{"missing database", func(p *Pipeline) { p.Database.Database = "" }, "database.name"},
		{"port out of range", func(p *Pipeline) { p.Database.Port = 70000 }, "database.port"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validPipeline()
			tt.mutate(&p)
			issues := Validate(p)
			if !hasErrorAt(issues, tt.path) {
				t.Fatalf("Validate() issues %v missing error at %s", issues, tt.path)
			}
		})
	}
}

func TestValidateEmptyPasswordIsWarning(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Database.Password = ""
	issues := Validate(p)

	if err := FirstError(issues); err != nil {
		t.Fatalf("empty password must not block execution: %v", err)
	}
	found := false
	for _, iss := range issues {
		if iss.Severity == SeverityWarning && iss.Path == "database.password" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Validate() issues %v missing password warning", issues)
	}
}

func TestValidateSQLiteSkipsServerChecks(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Loader.Kind = "sqlite"
	p.Database = Database{Database: "pipeline.db"}

	if err := FirstError(Validate(p)); err != nil {
		t.Fatalf("Validate() unexpected error for sqlite: %v", err)
	}
}

func TestValidateMessagesNeverContainPassword(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Database.Password = "hunter2"
	p.Database.Host = ""
	for _, iss := range Validate(p) {
		if strings.Contains(iss.Message, "hunter2") {
			t.Fatalf("issue message leaked the password: %s", iss.Message)
		}
	}
}
