// Package predict turns image-recognition output into waste classifications.
//
// A Predictor produces ranked (label, confidence) pairs for an image. Resolve
// maps those labels through a LabelTable and picks the first confident,
// mappable one. Service ties the two together for the boundary layers.
package predict

import (
	"math"
	"slices"
	"strings"

	"github.com/hurttlocker/wastesort/internal/waste"
)

// Prediction is one label proposed by a predictor. Confidence is a fraction in [0,1].
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Detail is the per-prediction diagnostic record shown next to a result.
type Detail struct {
	Label string `json:"object_name"`
	// Confidence is a percentage rounded to two decimals.
	Confidence float64        `json:"confidence"`
	Category   waste.Category `json:"garbage_type"`
	Mappable   bool           `json:"can_classify"`
}

// SortByConfidence orders preds by descending confidence in place. Equal
// confidences keep their relative order.
func SortByConfidence(preds []Prediction) {
	slices.SortStableFunc(preds, func(a, b Prediction) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})
}

func percent(fraction float64) float64 {
	return math.Round(fraction*100*100) / 100
}

func cleanLabel(s string) string { return strings.TrimSpace(s) }
