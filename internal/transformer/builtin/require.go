package builtin

import (
	"datapipeline/internal/fault"
	"datapipeline/pkg/records"
)

// Require fails the run when any record is missing a value for one of the
// configured fields. A nil value or empty string counts as missing. Unlike a
// filtering transform, a single bad row aborts the whole run so that no
// partial load can happen.
type Require struct {
	Fields []string
}

// Transform validates every record against the required field list.
func (r Require) Transform(ds *records.Dataset) (*records.Dataset, error) {
	if ds == nil || len(r.Fields) == 0 {
		return ds, nil
	}
	for i, rec := range ds.Rows {
		for _, f := range r.Fields {
			v, ok := rec[f]
			if !ok || v == nil {
				return nil, fault.Wrapf(fault.Transformation, "row %d: required field %q is empty", i+1, f)
			}
			if s, isStr := v.(string); isStr && s == "" {
				return nil, fault.Wrapf(fault.Transformation, "row %d: required field %q is empty", i+1, f)
			}
		}
	}
	return ds, nil
}
