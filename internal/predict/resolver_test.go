package predict

import (
	"strings"
	"testing"

	"github.com/hurttlocker/wastesort/internal/waste"
)

func TestResolveEmpty(t *testing.T) {
	res, details := Resolve(nil, DefaultLabelTable(), 0.1)
	if res.Matched || res.Category != waste.Unknown || res.Reason != ReasonNothingRecognized {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(details) != 0 {
		t.Fatalf("expected no details, got %+v", details)
	}
}

func TestResolveSortedOrderDrivesSelection(t *testing.T) {
	preds := []Prediction{{"塑料瓶", 0.9}, {"香蕉", 0.95}}
	SortByConfidence(preds)
	if preds[0].Label != "香蕉" {
		t.Fatalf("sort did not put the most confident first: %+v", preds)
	}

	res, details := Resolve(preds, DefaultLabelTable(), 0.5)
	if !res.Matched || res.Category != waste.Kitchen || res.Source != waste.SourceImage {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(res.Reason, "香蕉") || !strings.Contains(res.Reason, "95%") {
		t.Fatalf("reason should name label and percent: %q", res.Reason)
	}
	if len(details) != 2 || details[1].Category != waste.Recyclable || !details[1].Mappable {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestResolveThresholdIsStrictFloor(t *testing.T) {
	preds := []Prediction{{"电池", 0.99}, {"香蕉", 0.01}}
	res, details := Resolve(preds, DefaultLabelTable(), 1.0)
	if res.Matched {
		t.Fatalf("threshold 1.0 must not match: %+v", res)
	}
	if !strings.Contains(res.Reason, "'电池'") {
		t.Fatalf("fallback reason should name the top label: %q", res.Reason)
	}
	if len(details) != 2 || !details[0].Mappable {
		t.Fatalf("details still report mappability: %+v", details)
	}
}

func TestResolveComparesUnroundedConfidence(t *testing.T) {
	// 0.099996 rounds to 10% but is below a 0.1 floor.
	preds := []Prediction{{"电池", 0.099996}}
	res, details := Resolve(preds, DefaultLabelTable(), 0.1)
	if res.Matched {
		t.Fatalf("unrounded confidence below floor must not match: %+v", res)
	}
	if details[0].Confidence != 10 {
		t.Fatalf("detail percent = %v, want 10", details[0].Confidence)
	}
}

func TestResolveSkipsUnmappableAboveThreshold(t *testing.T) {
	preds := []Prediction{{"宇宙飞船", 0.8}, {"废旧纽扣电池组", 0.15}}
	res, details := Resolve(preds, DefaultLabelTable(), 0.1)
	if !res.Matched || res.Category != waste.Hazardous {
		t.Fatalf("expected hazardous via fuzzy label, got %+v", res)
	}
	if details[0].Mappable || details[0].Category != waste.Unknown {
		t.Fatalf("unknown label should not be mappable: %+v", details[0])
	}
	if details[0].Confidence != 80 || details[1].Confidence != 15 {
		t.Fatalf("unexpected percents: %+v", details)
	}
}

func TestResolveNothingMappable(t *testing.T) {
	res, _ := Resolve([]Prediction{{"宇宙飞船", 0.7}}, DefaultLabelTable(), 0.1)
	if res.Matched || res.Category != waste.Unknown {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(res.Reason, "宇宙飞船") {
		t.Fatalf("reason should name the top label: %q", res.Reason)
	}
}

func TestSortByConfidenceIsStable(t *testing.T) {
	preds := []Prediction{{"a", 0.5}, {"b", 0.9}, {"c", 0.5}, {"d", 0.1}}
	SortByConfidence(preds)
	want := []string{"b", "a", "c", "d"}
	for i, w := range want {
		if preds[i].Label != w {
			t.Fatalf("position %d = %q, want %q (%+v)", i, preds[i].Label, w, preds)
		}
	}
}
