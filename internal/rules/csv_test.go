package rules

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hurttlocker/wastesort/internal/waste"
)

func TestReadCSVChineseHeaders(t *testing.T) {
	input := "物品名称,垃圾类型,分类依据\n" +
		"塑料瓶,可回收垃圾,可回收材料\n" +
		" 电池 , 有害垃圾 , 含重金属 \n" +
		"半行,其他垃圾,\n"

	got, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rules (incomplete row skipped), got %d: %+v", len(got), got)
	}
	if got[1].ItemName != "电池" || got[1].Category != waste.Hazardous || got[1].Reason != "含重金属" {
		t.Fatalf("fields not trimmed: %+v", got[1])
	}
}

func TestReadCSVEnglishHeadersAndBOM(t *testing.T) {
	input := "\ufeffitem_name,category,reason\nbanana peel,kitchen,organic\n"
	got, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got) != 1 || got[0].Category != waste.Kitchen {
		t.Fatalf("unexpected rules: %+v", got)
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("物品名称,垃圾类型\n a,b\n"))
	if err == nil {
		t.Fatal("expected error for missing reason column")
	}
}

func TestCSVBackendMissingFile(t *testing.T) {
	b := NewCSVBackend(filepath.Join(t.TempDir(), "nope.csv"))
	_, err := b.Load(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestCSVBackendRoundTripPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "rules.csv")
	b := NewCSVBackend(path)
	ctx := context.Background()

	in := []Rule{
		{ItemName: "香蕉皮", Category: waste.Kitchen, Reason: "易腐, 有机"},
		{ItemName: "旧报纸", Category: waste.Recyclable, Reason: `纸类 "可回收"`},
		{ItemName: "灯管", Category: waste.Hazardous, Reason: "含汞"},
	}
	if err := b.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d rules, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("rule %d = %+v, want %+v", i, out[i], in[i])
		}
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestStoreWithCSVBackendWritesThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.csv")
	ctx := context.Background()

	s := NewStore(NewCSVBackend(path))
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Add(ctx, "塑料瓶", waste.Recyclable, "可回收材料"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reopened := NewStore(NewCSVBackend(path))
	if err := reopened.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	r, ok := reopened.Get("塑料瓶")
	if !ok || r.Reason != "可回收材料" {
		t.Fatalf("rule not persisted: %+v ok=%v", r, ok)
	}
}
