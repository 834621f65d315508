package rules

import (
	"math"
	"slices"

	"github.com/hurttlocker/wastesort/internal/waste"
)

// CategoryCount is one row of a statistics breakdown.
type CategoryCount struct {
	Category   waste.Category `json:"garbage_type"`
	Count      int            `json:"count"`
	Percentage float64        `json:"percentage"` // share of all rules, one decimal
}

// Breakdown orders per-category counts for display: the fixed categories that
// have rules, in display order, then any other labels sorted. Categories with
// no rules are omitted.
func Breakdown(stats map[waste.Category]int) []CategoryCount {
	total := 0
	for _, n := range stats {
		total += n
	}

	var order []waste.Category
	for _, c := range waste.Categories() {
		if stats[c] > 0 {
			order = append(order, c)
		}
	}
	var extra []waste.Category
	for c, n := range stats {
		if !c.Valid() && n > 0 {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	order = append(order, extra...)

	out := make([]CategoryCount, 0, len(order))
	for _, c := range order {
		out = append(out, CategoryCount{
			Category:   c,
			Count:      stats[c],
			Percentage: math.Round(float64(stats[c])/float64(total)*1000) / 10,
		})
	}
	return out
}
