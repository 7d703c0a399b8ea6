package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"datapipeline/pkg/records"
)

// DeDup collapses records that share the same business key before they reach
// the database. The key is built from the configured fields; the policy picks
// the winner among duplicates:
//
//   - "keep-first": keep the earliest occurrence in the batch
//   - "keep-last":  keep the latest occurrence in the batch (default)
//
// Records missing one of the key fields are not part of the de-dup domain and
// pass through unchanged, after the keyed winners.
type DeDup struct {
	Keys   []string
	Policy string
}

// Transform returns a dataset containing only the winning record per key.
func (d DeDup) Transform(ds *records.Dataset) (*records.Dataset, error) {
	if ds == nil || ds.Len() == 0 || len(d.Keys) == 0 {
		return ds, nil
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	type slot struct {
		rec   records.Record
		index int
	}

	winners := make(map[uint64]slot, ds.Len())

	keyOf := func(r records.Record) (uint64, bool) {
		var b strings.Builder
		for _, k := range d.Keys {
			v, ok := r[k]
			if !ok {
				return 0, false
			}
			if b.Len() > 0 {
				b.WriteByte('\x1f')
			}
			switch t := v.(type) {
			case nil:
				b.WriteByte('\x00')
			case string:
				b.WriteString(t)
			default:
				b.WriteString(fmt.Sprint(t))
			}
		}
		return xxh3.HashString(b.String()), true
	}

	for i, r := range ds.Rows {
		key, ok := keyOf(r)
		if !ok {
			continue
		}
		switch policy {
		case "keep-first":
			if _, exists := winners[key]; !exists {
				winners[key] = slot{rec: r, index: i}
			}
		default: // keep-last
			winners[key] = slot{rec: r, index: i}
		}
	}

	out := records.New(ds.Columns)
	indexes := make([]int, 0, len(winners))
	byIndex := make(map[int]records.Record, len(winners))
	for _, s := range winners {
		indexes = append(indexes, s.index)
		byIndex[s.index] = s.rec
	}
	sort.Ints(indexes)
	for _, idx := range indexes {
		out.Append(byIndex[idx])
	}

	for _, r := range ds.Rows {
		if _, ok := keyOf(r); !ok {
			out.Append(r)
		}
	}
	return out, nil
}
