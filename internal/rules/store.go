// Package rules owns the authoritative item-name -> category table.
//
// A Store keeps rules in insertion order and writes the whole table through
// to its Backend after every mutation. Readers share a read lock; writers hold
// the write lock across mutate-then-persist, so a reader never observes a
// half-applied change and two persists never interleave.
package rules

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/hurttlocker/wastesort/internal/waste"
)

// Rule maps one item name to its category and the justification for it.
type Rule struct {
	ItemName string         `json:"item_name"`
	Category waste.Category `json:"garbage_type"`
	Reason   string         `json:"reason"`
}

// Backend is the durable source a Store loads from and overwrites.
// Load returns (nil, nil) or an error wrapping fs.ErrNotExist when the
// source does not exist yet.
type Backend interface {
	Load(ctx context.Context) ([]Rule, error)
	Save(ctx context.Context, rules []Rule) error
	Name() string
}

// Store is an insertion-ordered, write-through rule table.
type Store struct {
	backend Backend

	mu    sync.RWMutex
	order []string
	rules map[string]Rule
}

// NewStore returns an empty store bound to backend. Call Load to populate it.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		rules:   make(map[string]Rule),
	}
}

// Load replaces the in-memory table with the backend contents. A missing
// source leaves the store empty and is not an error.
func (s *Store) Load(ctx context.Context) error {
	loaded, err := s.backend.Load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("rule source missing, starting with empty rules", "backend", s.backend.Name())
		loaded, err = nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.rules = make(map[string]Rule, len(loaded))

	if err != nil {
		return fmt.Errorf("loading rules from %s: %w", s.backend.Name(), err)
	}
	for _, r := range loaded {
		s.put(r)
	}
	slog.Info("rules loaded", "backend", s.backend.Name(), "count", len(s.order))
	return nil
}

// Get is an exact-key lookup.
func (s *Store) Get(itemName string) (Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[strings.TrimSpace(itemName)]
	return r, ok
}

// All returns a snapshot of every rule in insertion order.
func (s *Store) All() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Len returns the number of rules.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Statistics counts rules per category. The counts sum to Len.
func (s *Store) Statistics() map[waste.Category]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := make(map[waste.Category]int)
	for _, name := range s.order {
		stats[s.rules[name].Category]++
	}
	return stats
}

// Add upserts a rule and persists the table.
func (s *Store) Add(ctx context.Context, itemName string, category waste.Category, reason string) error {
	r, err := NormalizeRule(itemName, string(category), reason)
	if err != nil {
		return err
	}
	return s.mutate(ctx, func() error {
		s.put(r)
		return nil
	})
}

// Update has the same full-upsert semantics as Add.
func (s *Store) Update(ctx context.Context, itemName string, category waste.Category, reason string) error {
	return s.Add(ctx, itemName, category, reason)
}

// Delete removes a rule and persists the table. It returns ErrNotFound
// without touching the backend when the rule does not exist.
func (s *Store) Delete(ctx context.Context, itemName string) error {
	name := strings.TrimSpace(itemName)
	return s.mutate(ctx, func() error {
		if _, ok := s.rules[name]; !ok {
			return ErrNotFound
		}
		delete(s.rules, name)
		for i, n := range s.order {
			if n == name {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return nil
	})
}

// Import validates every rule first, then upserts them all with a single
// persist. Nothing is applied if any rule is invalid.
func (s *Store) Import(ctx context.Context, incoming []Rule) (int, error) {
	normalized := make([]Rule, 0, len(incoming))
	for i, r := range incoming {
		n, err := NormalizeRule(r.ItemName, string(r.Category), r.Reason)
		if err != nil {
			return 0, fmt.Errorf("rule %d: %w", i+1, err)
		}
		normalized = append(normalized, n)
	}
	if len(normalized) == 0 {
		return 0, nil
	}
	err := s.mutate(ctx, func() error {
		for _, r := range normalized {
			s.put(r)
		}
		return nil
	})
	return len(normalized), err
}

// mutate is the single write path: apply under the write lock, then persist
// the full table before releasing it. A failed persist does not roll back.
func (s *Store) mutate(ctx context.Context, apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := apply(); err != nil {
		return err
	}
	if err := s.backend.Save(ctx, s.snapshot()); err != nil {
		slog.Error("persisting rules failed", "backend", s.backend.Name(), "error", err)
		return &PersistenceError{Backend: s.backend.Name(), Err: err}
	}
	return nil
}

// put inserts or replaces r. A replaced key keeps its position. Caller holds mu.
func (s *Store) put(r Rule) {
	if _, exists := s.rules[r.ItemName]; !exists {
		s.order = append(s.order, r.ItemName)
	}
	s.rules[r.ItemName] = r
}

// snapshot copies the table in order. Caller holds mu.
func (s *Store) snapshot() []Rule {
	out := make([]Rule, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.rules[name])
	}
	return out
}

// NormalizeRule trims all three fields and validates them.
func NormalizeRule(itemName, category, reason string) (Rule, error) {
	itemName = strings.TrimSpace(itemName)
	category = strings.TrimSpace(category)
	reason = strings.TrimSpace(reason)

	switch {
	case itemName == "":
		return Rule{}, &ValidationError{Field: "item_name", Message: "must not be empty"}
	case category == "":
		return Rule{}, &ValidationError{Field: "garbage_type", Message: "must not be empty"}
	case reason == "":
		return Rule{}, &ValidationError{Field: "reason", Message: "must not be empty"}
	}

	c, ok := waste.ParseCategory(category)
	if !ok {
		return Rule{}, &ValidationError{
			Field:   "garbage_type",
			Message: fmt.Sprintf("%q is not one of %s", category, categoryList()),
		}
	}
	return Rule{ItemName: itemName, Category: c, Reason: reason}, nil
}

func categoryList() string {
	names := make([]string, 0, 4)
	for _, c := range waste.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
