// Package transformer defines the transformation capability of the pipeline
// and the factory that selects a concrete implementation by configured kind.
package transformer

import (
	"datapipeline/internal/config"
	"datapipeline/internal/fault"
	"datapipeline/internal/transformer/builtin"
	"datapipeline/pkg/records"
)

// Transformer rewrites a Dataset. The identity variant returns its input
// unchanged; a failing variant aborts the whole run (no partial load).
type Transformer interface {
	Transform(ds *records.Dataset) (*records.Dataset, error)
}

// Chain is an ordered list of transformers applied left to right.
type Chain []Transformer

// Transform applies every transformer in order, stopping at the first error.
func (c Chain) Transform(ds *records.Dataset) (*records.Dataset, error) {
	out := ds
	var err error
	for _, t := range c {
		out, err = t.Transform(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// New builds the transformer selected by kind. Unknown kinds are rejected.
func New(kind string, opt config.Options) (Transformer, error) {
	switch kind {
	case "passthrough":
		return builtin.Passthrough{LogDetails: opt.Bool("log_details", false)}, nil
	case "normalize":
		return builtin.Normalize{}, nil
	case "require":
		return builtin.Require{Fields: opt.StringSlice("fields")}, nil
	case "dedup":
		return builtin.DeDup{
			Keys:   opt.StringSlice("keys"),
			Policy: opt.String("policy", "keep-last"),
		}, nil
	default:
		return nil, fault.Wrapf(fault.Transformation, "unsupported transformer kind %q", kind)
	}
}
