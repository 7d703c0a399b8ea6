package builtin

import (
	"testing"

	"datapipeline/internal/fault"
	"datapipeline/pkg/records"
)

func dataset(columns []string, rows ...records.Record) *records.Dataset {
	ds := records.New(columns)
	for _, r := range rows {
		ds.Append(r)
	}
	return ds
}

func TestPassthroughIsIdentity(t *testing.T) {
	t.Parallel()

	in := dataset([]string{"id", "name"},
		records.Record{"id": "1", "name": "alpha"},
		records.Record{"id": "2", "name": "beta"},
	)

	out, err := Passthrough{}.Transform(in)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if out != in {
		t.Fatalf("Transform() returned a different dataset")
	}
	if out.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", out.Len())
	}
	if out.Rows[0]["name"] != "alpha" {
		t.Fatalf("Rows[0][name] = %v, want alpha", out.Rows[0]["name"])
	}
}

func TestNormalizeTrimsAndNils(t *testing.T) {
	t.Parallel()

	in := dataset([]string{"a", "b", "c"},
		records.Record{"a": "  x  ", "b": "   ", "c": 7},
	)

	out, err := Normalize{}.Transform(in)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	r := out.Rows[0]
	if r["a"] != "x" {
		t.Fatalf("a = %v, want x", r["a"])
	}
	if r["b"] != nil {
		t.Fatalf("b = %v, want nil", r["b"])
	}
	if r["c"] != 7 {
		t.Fatalf("c = %v, want 7", r["c"])
	}
}

func TestRequireRejectsMissingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fields  []string
		row     records.Record
		wantErr bool
	}{
		{"all present", []string{"id"}, records.Record{"id": "1"}, false},
		{"missing key", []string{"id"}, records.Record{"name": "x"}, true},
		{"nil value", []string{"id"}, records.Record{"id": nil}, true},
		{"empty string", []string{"id"}, records.Record{"id": ""}, true},
		{"no fields configured", nil, records.Record{}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := dataset([]string{"id", "name"}, tt.row)
			_, err := Require{Fields: tt.fields}.Transform(in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Transform() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !fault.IsKind(err, fault.Transformation) {
				t.Fatalf("error kind = %v, want transformation", err)
			}
		})
	}
}

func TestDeDupPolicies(t *testing.T) {
	t.Parallel()

	rows := []records.Record{
		{"pcv": "a", "v": "1"},
		{"pcv": "b", "v": "2"},
		{"pcv": "a", "v": "3"},
	}

	t.Run("keep-last", func(t *testing.T) {
		t.Parallel()
		in := dataset([]string{"pcv", "v"}, rows...)
		out, err := DeDup{Keys: []string{"pcv"}, Policy: "keep-last"}.Transform(in)
		if err != nil {
			t.Fatalf("Transform() error = %v", err)
		}
		if out.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", out.Len())
		}
		got := map[string]string{}
		for _, r := range out.Rows {
			got[r["pcv"].(string)] = r["v"].(string)
		}
		if got["a"] != "3" || got["b"] != "2" {
			t.Fatalf("winners = %v, want a=3 b=2", got)
		}
	})

	t.Run("keep-first", func(t *testing.T) {
		t.Parallel()
		in := dataset([]string{"pcv", "v"}, rows...)
		out, err := DeDup{Keys: []string{"pcv"}, Policy: "keep-first"}.Transform(in)
		if err != nil {
			t.Fatalf("Transform() error = %v", err)
		}
		if out.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", out.Len())
		}
		if out.Rows[0]["v"] != "1" {
			t.Fatalf("first winner v = %v, want 1", out.Rows[0]["v"])
		}
	})

	t.Run("missing key passes through", func(t *testing.T) {
		t.Parallel()
		in := dataset([]string{"pcv", "v"},
			records.Record{"pcv": "a", "v": "1"},
			records.Record{"v": "orphan"},
		)
		out, err := DeDup{Keys: []string{"pcv"}}.Transform(in)
		if err != nil {
			t.Fatalf("Transform() error = %v", err)
		}
		if out.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", out.Len())
		}
	})

	t.Run("no keys is a no-op", func(t *testing.T) {
		t.Parallel()
		in := dataset([]string{"pcv", "v"}, rows...)
		out, err := DeDup{}.Transform(in)
		if err != nil {
			t.Fatalf("Transform() error = %v", err)
		}
		if out != in {
			t.Fatalf("expected input returned unchanged")
		}
	})
}
