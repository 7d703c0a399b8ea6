package builtin

import (
	"strings"

	"datapipeline/pkg/records"
)

// Normalize trims surrounding whitespace from string values and converts
// values that become empty to nil. Row count and column set are preserved;
// records are rewritten in place.
type Normalize struct{}

// Transform normalizes every record and never fails.
func (Normalize) Transform(ds *records.Dataset) (*records.Dataset, error) {
	if ds == nil {
		return nil, nil
	}
	for _, rec := range ds.Rows {
		for k, v := range rec {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				rec[k] = nil
			} else {
				rec[k] = s
			}
		}
	}
	return ds, nil
}
