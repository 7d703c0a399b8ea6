// Package builtin contains the reusable transformers selectable by kind.
package builtin

import (
	"log"

	"datapipeline/pkg/records"
)

// Passthrough is the identity transform: output equals input, same row count,
// same columns, values unchanged. It exists to prove the seam between
// extraction and loading is substitutable.
type Passthrough struct {
	// LogDetails emits a shape summary on each invocation.
	LogDetails bool
}

// Transform returns ds unchanged.
func (p Passthrough) Transform(ds *records.Dataset) (*records.Dataset, error) {
	if p.LogDetails && ds != nil {
		log.Printf("passthrough: rows=%d columns=%d", ds.Len(), len(ds.Columns))
	}
	return ds, nil
}
