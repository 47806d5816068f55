// Package session keeps the results generated during one process run: the
// latest result of each generator plus a bounded history. Nothing is
// persisted.
package session

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/germanamz/ideaforge/pkg/generators"
)

// DefaultHistoryLimit is the number of results kept when no limit is set.
const DefaultHistoryLimit = 10

// Store is a thread-safe result store. The zero value is ready to use and
// keeps DefaultHistoryLimit results.
type Store struct {
	mu      sync.RWMutex
	once    sync.Once
	limit   int
	last    map[generators.Kind]generators.Result
	prev    map[generators.Kind]generators.Result
	history []generators.Result
}

// New returns a Store keeping at most limit results in its history. A
// non-positive limit selects DefaultHistoryLimit.
func New(limit int) *Store {
	s := &Store{limit: limit}
	s.init()

	return s
}

// init ensures internal structures are allocated.
func (s *Store) init() {
	s.once.Do(func() {
		if s.limit <= 0 {
			s.limit = DefaultHistoryLimit
		}
		s.last = make(map[generators.Kind]generators.Result)
		s.prev = make(map[generators.Kind]generators.Result)
	})
}

// Add records r as the latest result of its kind.
func (s *Store) Add(r generators.Result) {
	s.init()
	r = copyResult(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.last[r.Kind]; ok {
		s.prev[r.Kind] = old
	}
	s.last[r.Kind] = r

	s.history = append(s.history, r)
	if over := len(s.history) - s.limit; over > 0 {
		s.history = slices.Delete(s.history, 0, over)
	}
}

// Last returns the latest result of kind.
func (s *Store) Last(kind generators.Kind) (generators.Result, bool) {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.last[kind]
	if !ok {
		return r, false
	}

	return copyResult(r), true
}

// Latest returns the most recent result of any kind.
func (s *Store) Latest() (generators.Result, bool) {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.history) == 0 {
		return generators.Result{}, false
	}

	return copyResult(s.history[len(s.history)-1]), true
}

// History returns the retained results, oldest first.
func (s *Store) History() []generators.Result {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]generators.Result, len(s.history))
	for i, r := range s.history {
		out[i] = copyResult(r)
	}

	return out
}

// Kinds returns the sorted generator kinds that have a latest result.
func (s *Store) Kinds() []generators.Kind {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	kinds := make([]generators.Kind, 0, len(s.last))
	for k := range s.last {
		kinds = append(kinds, k)
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

// Diff returns a unified diff of the Markdown of the two most recent results
// of kind. The bool is false when fewer than two results of kind exist.
func (s *Store) Diff(kind generators.Kind) (string, bool, error) {
	s.init()
	s.mu.RLock()
	prev, okPrev := s.prev[kind]
	last, okLast := s.last[kind]
	s.mu.RUnlock()

	if !okPrev || !okLast {
		return "", false, nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(prev.ToMarkdown()),
		B:        difflib.SplitLines(last.ToMarkdown()),
		FromFile: "previous",
		FromDate: prev.GeneratedAt.Format("2006-01-02 15:04:05"),
		ToFile:   "latest",
		ToDate:   last.GeneratedAt.Format("2006-01-02 15:04:05"),
		Context:  3,
	})
	if err != nil {
		return "", false, fmt.Errorf("session: diff %s: %w", kind, err)
	}

	return diff, true, nil
}

// Clear drops every stored result.
func (s *Store) Clear() {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.last)
	clear(s.prev)
	s.history = nil
}

// copyResult detaches the metadata slice so callers cannot mutate stored
// results.
func copyResult(r generators.Result) generators.Result {
	r.Metadata = slices.Clone(r.Metadata)
	return r
}
