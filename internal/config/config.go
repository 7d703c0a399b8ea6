// Package config defines the canonical configuration model for the pipeline.
// It is intentionally small, explicit, and dependency-free so that a pipeline
// can be resolved from environment variables, an explicit override structure,
// or both, and passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names mirror the environment variable surface
//     (DB_HOST, CSV_DELIMITER, MYSQL_IF_EXISTS, ...).
//  3. Minimalism: no third-party config libraries; resolution is plain env
//     access with a light Options helper for typed access.
//
// Resolution order is env first, explicit overrides second; overrides always
// win. The resolved Pipeline is validated once and treated as immutable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Database holds connection parameters for the destination database.
type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// Charset is the connection character set (default utf8mb4).
	Charset string
}

// Component selects one pipeline component implementation by kind plus its
// free-form options bag. The options shape is defined by the implementation.
type Component struct {
	Kind    string
	Options Options
}

// Pipeline is the fully resolved configuration consumed by the orchestrator.
type Pipeline struct {
	// Name identifies the pipeline in logs and metrics labels.
	Name        string
	Description string

	Extractor   Component
	Transformer Component
	Loader      Component

	Database Database
}

// Environment variable names. They match the original deployment surface so
// existing .env files keep working.
const (
	EnvPipelineName        = "PIPELINE_NAME"
	EnvPipelineDescription = "PIPELINE_DESCRIPTION"

	EnvDBHost     = "DB_HOST"
	EnvDBPort     = "DB_PORT"
	EnvDBUser     = "DB_USER"
	EnvDBPassword = "DB_PASSWORD"
	EnvDBName     = "DB_NAME"
	EnvDBCharset  = "DB_CHARSET"

	EnvExtractorType   = "EXTRACTOR_TYPE"
	EnvTransformerType = "TRANSFORMER_TYPE"
	EnvLoaderType      = "LOADER_TYPE"

	EnvCSVEncoding  = "CSV_ENCODING"
	EnvCSVDelimiter = "CSV_DELIMITER"
	EnvCSVSkipRows  = "CSV_SKIP_ROWS"
	EnvCSVMaxRows   = "CSV_MAX_ROWS"

	EnvTransformerLogDetails = "TRANSFORMER_LOG_DETAILS"

	EnvMySQLIfExists = "MYSQL_IF_EXISTS"
	EnvMySQLCharset  = "MYSQL_CHARSET"
)

// Defaults applied when neither environment nor overrides provide a value.
const (
	DefaultName            = "data_pipeline"
	DefaultExtractorKind   = "csv"
	DefaultTransformerKind = "passthrough"
	DefaultLoaderKind      = "mysql"
	DefaultCharset         = "utf8mb4"
)

// FromEnv builds a Pipeline from the process environment. Missing variables
// leave zero values (or documented defaults) in place; validation is a
// separate step so callers can merge overrides first.
func FromEnv() Pipeline {
	p := Pipeline{
		Name:        getenvDefault(EnvPipelineName, DefaultName),
		Description: os.Getenv(EnvPipelineDescription),
		Extractor: Component{
			Kind:    getenvDefault(EnvExtractorType, DefaultExtractorKind),
			Options: Options{},
		},
		Transformer: Component{
			Kind:    getenvDefault(EnvTransformerType, DefaultTransformerKind),
			Options: Options{},
		},
		Loader: Component{
			Kind:    getenvDefault(EnvLoaderType, DefaultLoaderKind),
			Options: Options{},
		},
		Database: Database{
			Host:     os.Getenv(EnvDBHost),
			User:     os.Getenv(EnvDBUser),
			Password: os.Getenv(EnvDBPassword),
			Database: os.Getenv(EnvDBName),
			Charset:  getenvDefault(EnvDBCharset, DefaultCharset),
		},
	}

	if s := os.Getenv(EnvDBPort); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			p.Database.Port = n
		}
	}

	setIfEnv(p.Extractor.Options, "encoding", EnvCSVEncoding)
	setIfEnv(p.Extractor.Options, "delimiter", EnvCSVDelimiter)
	setIfEnv(p.Extractor.Options, "skip_rows", EnvCSVSkipRows)
	setIfEnv(p.Extractor.Options, "max_rows", EnvCSVMaxRows)

	setIfEnv(p.Transformer.Options, "log_details", EnvTransformerLogDetails)

	setIfEnv(p.Loader.Options, "if_exists", EnvMySQLIfExists)
	setIfEnv(p.Loader.Options, "charset", EnvMySQLCharset)

	return p
}

// Merge overlays o onto p and returns the result. Non-zero fields of o take
// precedence; option bags are merged key by key with o winning.
func (p Pipeline) Merge(o Pipeline) Pipeline {
	out := p

	if o.Name != "" {
		out.Name = o.Name
	}
	if o.Description != "" {
		out.Description = o.Description
	}
	out.Extractor = mergeComponent(p.Extractor, o.Extractor)
	out.Transformer = mergeComponent(p.Transformer, o.Transformer)
	out.Loader = mergeComponent(p.Loader, o.Loader)

	if o.Database.Host != "" {
		out.Database.Host = o.Database.Host
	}
	if o.Database.Port != 0 {
		out.Database.Port = o.Database.Port
	}
	if o.Database.User != "" {
		out.Database.User = o.Database.User
	}
	if o.Database.Password != "" {
		out.Database.Password = o.Database.Password
	}
	if o.Database.Database != "" {
		out.Database.Database = o.Database.Database
	}
	if o.Database.Charset != "" {
		out.Database.Charset = o.Database.Charset
	}
	return out
}

func mergeComponent(base, over Component) Component {
	out := Component{Kind: base.Kind, Options: Options{}}
	for k, v := range base.Options {
		out.Options[k] = v
	}
	if over.Kind != "" {
		out.Kind = over.Kind
	}
	for k, v := range over.Options {
		out.Options[k] = v
	}
	return out
}

// Resolve builds the effective configuration: environment values overlaid
// with the optional explicit override. The result is validated; any
// error-severity issue fails resolution.
func Resolve(override *Pipeline) (Pipeline, error) {
	p := FromEnv()
	if override != nil {
		p = p.Merge(*override)
	}
	if err := FirstError(Validate(p)); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}

// Redacted returns a one-line description of the pipeline safe for logging.
// The database password is never included, present or not.
func (p Pipeline) Redacted() string {
	return fmt.Sprintf(
		"pipeline=%s extractor=%s transformer=%s loader=%s db=%s@%s:%d/%s password=<redacted>",
		p.Name,
		p.Extractor.Kind,
		p.Transformer.Kind,
		p.Loader.Kind,
		p.Database.User,
		p.Database.Host,
		p.Database.Port,
		p.Database.Database,
	)
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func setIfEnv(o Options, key, envKey string) {
	if v := os.Getenv(envKey); v != "" {
		o[key] = v
	}
}
