package loader

import (
	"context"
	"errors"
	"testing"

	"datapipeline/internal/config"
	"datapipeline/internal/ddl"
	"datapipeline/internal/fault"
	"datapipeline/internal/storage"
	"datapipeline/pkg/records"
)

// memRepo is an in-memory Repository that records the calls a load makes.
type memRepo struct {
	exists  bool
	columns []string

	created bool
	dropped bool

	inserted [][]any
	insertAt []string

	insertErr error
	closed    bool
}

func (m *memRepo) Exec(ctx context.Context, sql string) error { return nil }
func (m *memRepo) TableExists(ctx context.Context, table string) (bool, error) {
	return m.exists, nil
}
func (m *memRepo) Columns(ctx context.Context, table string) ([]string, error) {
	return m.columns, nil
}
func (m *memRepo) CreateTable(ctx context.Context, def ddl.TableDef) error {
	m.created = true
	return nil
}
func (m *memRepo) DropTable(ctx context.Context, table string) error {
	m.dropped = true
	m.exists = false
	return nil
}
func (m *memRepo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.insertAt = append(m.insertAt, table)
	m.inserted = append(m.inserted, rows...)
	return int64(len(rows)), nil
}
func (m *memRepo) Count(ctx context.Context, table string) (int64, error) {
	return int64(len(m.inserted)), nil
}
func (m *memRepo) Close() { m.closed = true }

func testLoader(t *testing.T, repo *memRepo, policy Policy) *SQLLoader {
	t.Helper()
	return &SQLLoader{
		cfg:    storage.Config{Kind: "sqlite"},
		policy: policy,
		openRepo: func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
			return repo, nil
		},
	}
}

func testDataset() *records.Dataset {
	ds := records.New([]string{"id", "name"})
	ds.Append(records.Record{"id": "1", "name": "alpha"})
	ds.Append(records.Record{"id": "2", "name": "beta"})
	return ds
}

func TestLoadCreatesMissingTable(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	l := testLoader(t, repo, PolicyFail)

	n, err := l.Load(context.Background(), testDataset(), "items")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Load() = %d, want 2", n)
	}
	if !repo.created {
		t.Fatalf("table was not created")
	}
	if !repo.closed {
		t.Fatalf("repository was not released")
	}
}

func TestLoadFailPolicyRejectsExistingTable(t *testing.T) {
	t.Parallel()

	repo := &memRepo{exists: true}
	l := testLoader(t, repo, PolicyFail)

	_, err := l.Load(context.Background(), testDataset(), "items")
	if err == nil {
		t.Fatalf("Load() expected error for existing table")
	}
	if !fault.IsKind(err, fault.Load) {
		t.Fatalf("error kind = %v, want load", err)
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("rows were inserted despite policy failure")
	}
	if !repo.closed {
		t.Fatalf("repository was not released on failure")
	}
}

func TestLoadReplaceDropsAndRecreates(t *testing.T) {
	t.Parallel()

	repo := &memRepo{exists: true}
	l := testLoader(t, repo, PolicyReplace)

	n, err := l.Load(context.Background(), testDataset(), "items")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Load() = %d, want 2", n)
	}
	if !repo.dropped || !repo.created {
		t.Fatalf("dropped=%v created=%v, want both", repo.dropped, repo.created)
	}
}

func TestLoadAppend(t *testing.T) {
	t.Parallel()

	t.Run("matching columns", func(t *testing.T) {
		t.Parallel()
		repo := &memRepo{exists: true, columns: []string{"NAME", "id"}}
		l := testLoader(t, repo, PolicyAppend)

		n, err := l.Load(context.Background(), testDataset(), "items")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if n != 2 {
			t.Fatalf("Load() = %d, want 2", n)
		}
		if repo.created || repo.dropped {
			t.Fatalf("append must not recreate an existing table")
		}
	})

	t.Run("mismatched columns", func(t *testing.T) {
		t.Parallel()
		repo := &memRepo{exists: true, columns: []string{"id", "label"}}
		l := testLoader(t, repo, PolicyAppend)

		_, err := l.Load(context.Background(), testDataset(), "items")
		if err == nil {
			t.Fatalf("Load() expected column mismatch error")
		}
		if !fault.IsKind(err, fault.Load) {
			t.Fatalf("error kind = %v, want load", err)
		}
	})

	t.Run("missing table is created", func(t *testing.T) {
		t.Parallel()
		repo := &memRepo{}
		l := testLoader(t, repo, PolicyAppend)

		if _, err := l.Load(context.Background(), testDataset(), "items"); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !repo.created {
			t.Fatalf("table was not created")
		}
	})
}

func TestLoadConnectionFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	l := &SQLLoader{
		cfg:    storage.Config{Kind: "mysql"},
		policy: PolicyFail,
		openRepo: func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
			return nil, boom
		},
	}

	_, err := l.Load(context.Background(), testDataset(), "items")
	if !errors.Is(err, boom) {
		t.Fatalf("Load() error = %v, want wrapped %v", err, boom)
	}
	if !fault.IsKind(err, fault.Connection) {
		t.Fatalf("error kind = %v, want connection", err)
	}
}

func TestLoadInsertFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("constraint violated")
	repo := &memRepo{insertErr: boom}
	l := testLoader(t, repo, PolicyFail)

	_, err := l.Load(context.Background(), testDataset(), "items")
	if !errors.Is(err, boom) {
		t.Fatalf("Load() error = %v, want wrapped %v", err, boom)
	}
	if !fault.IsKind(err, fault.Load) {
		t.Fatalf("error kind = %v, want load", err)
	}
	if !repo.closed {
		t.Fatalf("repository was not released on failure")
	}
}

func TestLoadEmptyDataset(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	l := testLoader(t, repo, PolicyFail)

	n, err := l.Load(context.Background(), records.New([]string{"id"}), "items")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 0 {
		t.Fatalf("Load() = %d, want 0", n)
	}
	if !repo.created {
		t.Fatalf("empty load must still create the table")
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyFail, false},
		{"fail", PolicyFail, false},
		{"Replace", PolicyReplace, false},
		{" APPEND ", PolicyAppend, false},
		{"upsert", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := New("mongodb", config.Pipeline{})
	if err == nil {
		t.Fatalf("New(mongodb) expected error")
	}
	if !fault.IsKind(err, fault.Load) {
		t.Fatalf("error kind = %v, want load", err)
	}
}

func TestNewRejectsBadPolicy(t *testing.T) {
	t.Parallel()

	cfg := config.Pipeline{
		Loader: config.Component{
			Kind:    "sqlite",
			Options: config.Options{"if_exists": "truncate"},
		},
	}
	if _, err := New("sqlite", cfg); err == nil {
		t.Fatalf("New() expected policy error")
	}
}
