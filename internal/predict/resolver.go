package predict

import (
	"fmt"
	"strconv"

	"github.com/hurttlocker/wastesort/internal/waste"
)

// Reasons for unmatched image results.
const (
	ReasonNothingRecognized = "no content recognized"
	SuggestionRetryImage    = "try a clearer photo or classify the item by name"
)

// Resolve picks a category from preds, which must already be sorted by
// descending confidence. The first prediction that maps to a category and
// whose confidence is at least threshold wins. threshold is a fraction and is
// compared against the unrounded confidence.
//
// The returned details have one entry per prediction, in input order.
func Resolve(preds []Prediction, table *LabelTable, threshold float64) (waste.Result, []Detail) {
	details := make([]Detail, len(preds))
	for i, p := range preds {
		cat, ok := table.Lookup(p.Label)
		details[i] = Detail{
			Label:      p.Label,
			Confidence: percent(p.Confidence),
			Category:   cat,
			Mappable:   ok,
		}
	}

	for i, d := range details {
		if d.Mappable && preds[i].Confidence >= threshold {
			reason := fmt.Sprintf("image recognition: %s (confidence %s%%)", d.Label, formatPercent(d.Confidence))
			return waste.MatchedResult(d.Category, reason, waste.SourceImage), details
		}
	}

	if len(details) == 0 {
		return waste.Unmatched(ReasonNothingRecognized, SuggestionRetryImage), details
	}
	return waste.Unmatched(
		fmt.Sprintf("recognized '%s' but could not determine its waste category", details[0].Label),
		SuggestionRetryImage,
	), details
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
