package waste

// Source records which resolution tier produced a Result.
type Source string

const (
	SourceExact   Source = "exact"
	SourceSimilar Source = "similar"
	SourceKeyword Source = "keyword"
	SourceImage   Source = "image"
	SourceNone    Source = "none"
)

// Result is the outcome of classifying one item name or one image.
// Results are values; nothing mutates them after construction.
type Result struct {
	Matched    bool     `json:"success"`
	Category   Category `json:"garbage_type"`
	Reason     string   `json:"reason"`
	Suggestion string   `json:"suggestion"`
	Source     Source   `json:"source"`

	// Failed is set when an external collaborator (the image predictor) broke,
	// as opposed to the input simply not being classifiable.
	Failed bool `json:"failed,omitempty"`
}

// MatchedResult builds a successful result whose suggestion is the category's
// disposal instructions.
func MatchedResult(c Category, reason string, src Source) Result {
	return Result{
		Matched:    true,
		Category:   c,
		Reason:     reason,
		Suggestion: Suggestion(c),
		Source:     src,
	}
}

// Unmatched builds a result for input no tier could classify.
func Unmatched(reason, suggestion string) Result {
	return Result{
		Category:   Unknown,
		Reason:     reason,
		Suggestion: suggestion,
		Source:     SourceNone,
	}
}
