package classify

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hurttlocker/wastesort/internal/rules"
	"github.com/hurttlocker/wastesort/internal/waste"
)

// sliceRules is an ordered in-memory RuleSource.
type sliceRules []rules.Rule

func (s sliceRules) Get(name string) (rules.Rule, bool) {
	for _, r := range s {
		if r.ItemName == name {
			return r, true
		}
	}
	return rules.Rule{}, false
}

func (s sliceRules) All() []rules.Rule { return append([]rules.Rule(nil), s...) }

// countingRules counts store accesses.
type countingRules struct {
	sliceRules
	calls int
}

func (c *countingRules) Get(name string) (rules.Rule, bool) {
	c.calls++
	return c.sliceRules.Get(name)
}

func (c *countingRules) All() []rules.Rule {
	c.calls++
	return c.sliceRules.All()
}

var bottleRules = sliceRules{
	{ItemName: "塑料瓶", Category: waste.Recyclable, Reason: "可回收材料"},
}

func TestClassifyExactMatchIsVerbatim(t *testing.T) {
	r := NewResolver(bottleRules)
	got := r.Classify("塑料瓶")
	if !got.Matched || got.Category != waste.Recyclable || got.Reason != "可回收材料" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Source != waste.SourceExact {
		t.Fatalf("source = %q, want exact", got.Source)
	}
	if got.Suggestion != waste.Suggestion(waste.Recyclable) {
		t.Fatalf("suggestion = %q", got.Suggestion)
	}
}

func TestClassifyTrimsBeforeExactLookup(t *testing.T) {
	got := NewResolver(bottleRules).Classify("  塑料瓶\t")
	if got.Source != waste.SourceExact {
		t.Fatalf("expected exact match after trimming, got %+v", got)
	}
}

func TestClassifyFuzzyBothDirections(t *testing.T) {
	r := NewResolver(bottleRules)

	// Stored key inside the input.
	got := r.Classify("旧塑料瓶盖")
	if !got.Matched || got.Source != waste.SourceSimilar || got.Category != waste.Recyclable {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !strings.Contains(got.Reason, "塑料瓶") || !strings.Contains(got.Reason, "可回收材料") {
		t.Fatalf("reason should name the matched key and its reason: %q", got.Reason)
	}

	// Input inside the stored key.
	got = r.Classify("塑料")
	if got.Source != waste.SourceSimilar {
		t.Fatalf("expected similar match for substring of key, got %+v", got)
	}
}

func TestClassifyFuzzyFirstInsertionOrderWins(t *testing.T) {
	r := NewResolver(sliceRules{
		{ItemName: "电池", Category: waste.Hazardous, Reason: "first"},
		{ItemName: "电池壳", Category: waste.Other, Reason: "second"},
	})
	got := r.Classify("旧电池壳子")
	if got.Category != waste.Hazardous || !strings.Contains(got.Reason, "first") {
		t.Fatalf("first rule in order should win, got %+v", got)
	}
}

func TestClassifyKeywordFallback(t *testing.T) {
	got := NewResolver(sliceRules{}).Classify("电池")
	if !got.Matched || got.Category != waste.Hazardous || got.Source != waste.SourceKeyword {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !strings.HasPrefix(got.Reason, "predicted: ") || !strings.Contains(got.Reason, "电池") {
		t.Fatalf("reason should be wrapped and name the keyword: %q", got.Reason)
	}
}

func TestClassifyKeywordPrecedence(t *testing.T) {
	// 药 is hazardous, 菜 is kitchen; hazardous is checked first.
	got := NewResolver(sliceRules{}).Classify("过期药菜汤")
	if got.Category != waste.Hazardous {
		t.Fatalf("hazardous keyword must win, got %+v", got)
	}
	// 果 (kitchen) before 瓶 (recyclable).
	got = NewResolver(sliceRules{}).Classify("果汁瓶")
	if got.Category != waste.Kitchen {
		t.Fatalf("kitchen keyword must beat recyclable, got %+v", got)
	}
}

func TestClassifyNoMatch(t *testing.T) {
	got := NewResolver(bottleRules).Classify(" xyz-42 ")
	if got.Matched || got.Category != waste.Unknown || got.Source != waste.SourceNone {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !strings.Contains(got.Reason, "' xyz-42 '") {
		t.Fatalf("reason should echo the input name: %q", got.Reason)
	}
	if got.Suggestion != SuggestionNotFound {
		t.Fatalf("suggestion = %q", got.Suggestion)
	}
}

func TestClassifyEmptyNameSkipsStore(t *testing.T) {
	src := &countingRules{sliceRules: bottleRules}
	r := NewResolver(src)
	for _, in := range []string{"", "   ", "\t\n"} {
		got := r.Classify(in)
		if got.Matched || got.Reason != ReasonMissingName {
			t.Fatalf("Classify(%q) = %+v", in, got)
		}
	}
	if src.calls != 0 {
		t.Fatalf("store accessed %d times for empty input", src.calls)
	}
}

func TestClassifyWithCustomKeywordTables(t *testing.T) {
	r := NewResolver(sliceRules{}, WithKeywordTables([]KeywordTable{
		{Category: waste.Other, Keywords: []string{"widget"}, Explanation: "test"},
	}))
	if got := r.Classify("blue widget"); got.Category != waste.Other {
		t.Fatalf("custom table not used: %+v", got)
	}
	if got := r.Classify("电池"); got.Matched {
		t.Fatalf("default tables should be replaced: %+v", got)
	}
}

func TestBatchClassifyPreservesOrder(t *testing.T) {
	r := NewResolver(bottleRules, WithBatchConcurrency(3))
	var names []string
	for i := 0; i < 50; i++ {
		switch i % 3 {
		case 0:
			names = append(names, "塑料瓶")
		case 1:
			names = append(names, fmt.Sprintf("unknown-%d", i))
		default:
			names = append(names, "")
		}
	}

	got := r.BatchClassify(context.Background(), names)
	if len(got) != len(names) {
		t.Fatalf("got %d results, want %d", len(got), len(names))
	}
	for i, item := range got {
		if item.ItemName != names[i] {
			t.Fatalf("result %d is for %q, want %q", i, item.ItemName, names[i])
		}
		want := r.Classify(names[i])
		if item.Result != want {
			t.Fatalf("result %d = %+v, want %+v", i, item.Result, want)
		}
	}
}

func TestBatchClassifyEmpty(t *testing.T) {
	got := NewResolver(bottleRules).BatchClassify(context.Background(), nil)
	if len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}

func TestBatchClassifyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := NewResolver(bottleRules).BatchClassify(ctx, []string{"塑料瓶", "电池"})
	if len(got) != 2 {
		t.Fatalf("expected one entry per input, got %d", len(got))
	}
	for _, item := range got {
		if item.Result.Matched {
			t.Fatalf("cancelled batch should not classify: %+v", item)
		}
	}
}

func TestSimilarItems(t *testing.T) {
	r := NewResolver(sliceRules{
		{ItemName: "塑料瓶", Category: waste.Recyclable, Reason: "r"},
		{ItemName: "玻璃瓶", Category: waste.Recyclable, Reason: "r"},
		{ItemName: "香蕉皮", Category: waste.Kitchen, Reason: "r"},
		{ItemName: "Battery", Category: waste.Hazardous, Reason: "r"},
	})

	got := r.SimilarItems("瓶子", 5)
	if len(got) != 2 || got[0] != "塑料瓶" || got[1] != "玻璃瓶" {
		t.Fatalf("unexpected similar items: %v", got)
	}

	if got := r.SimilarItems("瓶", 1); len(got) != 1 || got[0] != "塑料瓶" {
		t.Fatalf("limit not applied: %v", got)
	}

	if got := r.SimilarItems("B", 5); len(got) != 1 || got[0] != "Battery" {
		t.Fatalf("match should be case-insensitive: %v", got)
	}

	if got := r.SimilarItems("!!! ", 5); len(got) != 0 {
		t.Fatalf("punctuation-only input should match nothing: %v", got)
	}
	if got := r.SimilarItems("瓶", 0); got != nil {
		t.Fatalf("zero limit should return nil: %v", got)
	}
}

func TestResolverOverLiveStore(t *testing.T) {
	s := rules.NewStore(noopBackend{})
	ctx := context.Background()
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := NewResolver(s)

	if got := r.Classify("旧报纸"); got.Source != waste.SourceKeyword {
		t.Fatalf("expected keyword tier before rule exists, got %+v", got)
	}
	if err := s.Add(ctx, "旧报纸", waste.Recyclable, "纸类可回收"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := r.Classify("旧报纸"); got.Source != waste.SourceExact || got.Reason != "纸类可回收" {
		t.Fatalf("expected exact match after Add, got %+v", got)
	}
	if err := s.Delete(ctx, "旧报纸"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := r.Classify("旧报纸"); got.Source == waste.SourceExact {
		t.Fatalf("deleted rule still matched: %+v", got)
	}
}

type noopBackend struct{}

func (noopBackend) Name() string { return "noop" }

func (noopBackend) Load(context.Context) ([]rules.Rule, error) { return nil, nil }

func (noopBackend) Save(context.Context, []rules.Rule) error { return nil }
