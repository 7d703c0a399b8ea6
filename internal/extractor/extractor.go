// Package extractor defines the source-reading capability of the pipeline
// and the factory that selects a concrete implementation by configured kind.
package extractor

import (
	"context"

	"datapipeline/internal/config"
	"datapipeline/internal/extractor/csv"
	"datapipeline/internal/fault"
	"datapipeline/pkg/records"
)

// Extractor reads a source into an in-memory Dataset. Implementations are
// read-only with respect to the source and return no partial dataset on
// failure.
type Extractor interface {
	Extract(ctx context.Context, source string) (*records.Dataset, error)
}

// New builds the extractor selected by kind. Unknown kinds are rejected.
func New(kind string, opt config.Options) (Extractor, error) {
	switch kind {
	case "csv":
		return csv.NewExtractor(csv.Options{
			Encoding:  opt.String("encoding", ""),
			Delimiter: opt.Rune("delimiter", ','),
			SkipRows:  opt.Int("skip_rows", 0),
			MaxRows:   opt.Int("max_rows", 0),
		}), nil
	default:
		return nil, fault.Wrapf(fault.Extraction, "unsupported extractor kind %q", kind)
	}
}
