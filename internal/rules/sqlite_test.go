package rules

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hurttlocker/wastesort/internal/waste"
)

func newTestSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	b, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestOpenSQLiteCreatesTable(t *testing.T) {
	b := newTestSQLite(t)
	var name string
	err := b.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='rules'").Scan(&name)
	if err != nil {
		t.Fatalf("rules table not found: %v", err)
	}
}

func TestSQLiteEmptyIsColdStart(t *testing.T) {
	b := newTestSQLite(t)
	got, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no rules, got %d", len(got))
	}
}

func TestSQLiteSaveReplacesAndKeepsOrder(t *testing.T) {
	b := newTestSQLite(t)
	ctx := context.Background()

	first := []Rule{
		{ItemName: "z", Category: waste.Other, Reason: "1"},
		{ItemName: "a", Category: waste.Kitchen, Reason: "2"},
	}
	if err := b.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := []Rule{
		{ItemName: "m", Category: waste.Hazardous, Reason: "3"},
		{ItemName: "z", Category: waste.Other, Reason: "1"},
	}
	if err := b.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].ItemName != "m" || got[1].ItemName != "z" {
		t.Fatalf("unexpected rules: %+v", got)
	}
}

func TestSQLiteFileBackedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "rules.db")
	ctx := context.Background()

	b, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	s := NewStore(b)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Add(ctx, "电池", waste.Hazardous, "含重金属"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	b.Close()

	b2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b2.Close()
	s2 := NewStore(b2)
	if err := s2.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if r, ok := s2.Get("电池"); !ok || r.Category != waste.Hazardous {
		t.Fatalf("rule not persisted: %+v ok=%v", r, ok)
	}
}
