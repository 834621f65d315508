// Package classify resolves free-text item names to waste categories.
//
// Resolution is tiered and the first tier that succeeds wins:
//  1. exact match against the rule table
//  2. substring match in either direction, scanning rules in insertion order
//  3. the keyword heuristic
//
// A Resolver never mutates the rule table.
package classify

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/hurttlocker/wastesort/internal/rules"
	"github.com/hurttlocker/wastesort/internal/waste"
)

// Reason and suggestion texts for results no tier produced.
const (
	ReasonMissingName  = "missing item name"
	SuggestionNotFound = "consult the local sanitation authority or add a rule for this item"
)

// DefaultBatchConcurrency bounds BatchClassify fan-out.
const DefaultBatchConcurrency = 8

// RuleSource is the read side of the rule table.
type RuleSource interface {
	Get(itemName string) (rules.Rule, bool)
	All() []rules.Rule
}

// Resolver classifies item names against a rule table.
type Resolver struct {
	rules       RuleSource
	keywords    *KeywordHeuristic
	concurrency int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithKeywordTables replaces the built-in keyword tables.
func WithKeywordTables(tables []KeywordTable) Option {
	return func(r *Resolver) { r.keywords = NewKeywordHeuristic(tables) }
}

// WithBatchConcurrency sets how many names BatchClassify resolves at once.
func WithBatchConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewResolver returns a Resolver reading from src.
func NewResolver(src RuleSource, opts ...Option) *Resolver {
	r := &Resolver{
		rules:       src,
		keywords:    NewKeywordHeuristic(DefaultKeywordTables()),
		concurrency: DefaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify resolves one item name.
func (r *Resolver) Classify(itemName string) waste.Result {
	name := strings.TrimSpace(itemName)
	if name == "" {
		return waste.Unmatched(ReasonMissingName, "")
	}

	if rule, ok := r.rules.Get(name); ok {
		return waste.MatchedResult(rule.Category, rule.Reason, waste.SourceExact)
	}

	for _, rule := range r.rules.All() {
		if strings.Contains(rule.ItemName, name) || strings.Contains(name, rule.ItemName) {
			reason := fmt.Sprintf("classified by similarity to '%s': %s", rule.ItemName, rule.Reason)
			return waste.MatchedResult(rule.Category, reason, waste.SourceSimilar)
		}
	}

	if cat, reason, ok := r.keywords.Match(itemName); ok {
		return waste.MatchedResult(cat, "predicted: "+reason, waste.SourceKeyword)
	}

	return waste.Unmatched(
		fmt.Sprintf("no classification rule found for '%s'", itemName),
		SuggestionNotFound,
	)
}

// BatchItem pairs an input name with its result.
type BatchItem struct {
	ItemName string       `json:"item_name"`
	Result   waste.Result `json:"result"`
}

// BatchClassify classifies every name independently. The output has one entry
// per input, in input order. ctx only stops scheduling of names not yet
// started; those entries are left unmatched with ctx's error as the reason.
func (r *Resolver) BatchClassify(ctx context.Context, names []string) []BatchItem {
	out := make([]BatchItem, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, name := range names {
		out[i].ItemName = name
		if gctx.Err() != nil {
			out[i].Result = waste.Unmatched(gctx.Err().Error(), "")
			continue
		}
		g.Go(func() error {
			out[i].Result = r.Classify(name)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// SimilarItems returns up to limit stored item names that share at least one
// letter or digit with name, in rule-table order. It is a suggestion aid and
// plays no part in classification.
func (r *Resolver) SimilarItems(name string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	var wanted []rune
	for _, ch := range strings.ToLower(name) {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			wanted = append(wanted, ch)
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	var out []string
	for _, rule := range r.rules.All() {
		stored := strings.ToLower(rule.ItemName)
		for _, ch := range wanted {
			if strings.ContainsRune(stored, ch) {
				out = append(out, rule.ItemName)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}
