package predict

import (
	"testing"

	"github.com/hurttlocker/wastesort/internal/waste"
)

func TestLabelTableLookup(t *testing.T) {
	table := DefaultLabelTable()

	tests := []struct {
		label string
		want  waste.Category
		ok    bool
	}{
		{"塑料瓶", waste.Recyclable, true},
		{" 香蕉 ", waste.Kitchen, true},
		{"水银温度计", waste.Hazardous, true},
		{"口香糖", waste.Other, true},
		{"一只香蕉皮", waste.Kitchen, true}, // contains 香蕉
		{"瓶", waste.Recyclable, true},    // first label containing 瓶 is 塑料瓶
		{"宇宙飞船", waste.Unknown, false},
		{"", waste.Unknown, false},
		{"   ", waste.Unknown, false},
	}
	for _, tt := range tests {
		got, ok := table.Lookup(tt.label)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.label, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewLabelTableKeepsFirstDuplicate(t *testing.T) {
	table := NewLabelTable([]LabelGroup{
		{Category: waste.Other, Labels: []string{"x", "y", ""}},
		{Category: waste.Kitchen, Labels: []string{"x", "z"}},
	})
	if table.Len() != 3 {
		t.Fatalf("Len = %d, want 3", table.Len())
	}
	if c, _ := table.Lookup("x"); c != waste.Other {
		t.Fatalf("duplicate label changed category to %q", c)
	}
	labels := table.Labels()
	if labels[0] != "x" || labels[1] != "y" || labels[2] != "z" {
		t.Fatalf("unexpected order: %v", labels)
	}
}

func TestDefaultLabelTableSize(t *testing.T) {
	want := 0
	for _, g := range DefaultLabelGroups() {
		if !g.Category.Valid() {
			t.Fatalf("group has invalid category %q", g.Category)
		}
		want += len(g.Labels)
	}
	if got := DefaultLabelTable().Len(); got != want {
		t.Fatalf("Len = %d, want %d (no duplicate labels expected)", got, want)
	}
}
