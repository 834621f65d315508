package rules

import (
	"testing"

	"github.com/hurttlocker/wastesort/internal/waste"
)

func TestBreakdown(t *testing.T) {
	got := Breakdown(map[waste.Category]int{
		waste.Other:      1,
		waste.Recyclable: 2,
		"旧分类":            1,
		waste.Kitchen:    0,
		"杂项":             2,
	})

	want := []CategoryCount{
		{waste.Recyclable, 2, 33.3},
		{waste.Other, 1, 16.7},
		{"旧分类", 1, 16.7},
		{"杂项", 2, 33.3},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBreakdownEmpty(t *testing.T) {
	if got := Breakdown(nil); len(got) != 0 {
		t.Fatalf("expected no rows, got %+v", got)
	}
}
