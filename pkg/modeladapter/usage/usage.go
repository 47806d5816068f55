// Package usage records token counts reported by the model servers.
package usage

import (
	"sort"
	"sync"
	"time"
)

// TokenCount holds the token counts of a single call. Estimated is set when
// the server reported nothing and the counts come from Estimate.
type TokenCount struct {
	InputTokens  int
	OutputTokens int
	Estimated    bool
}

// Total returns the sum of input and output tokens.
func (tc TokenCount) Total() int {
	return tc.InputTokens + tc.OutputTokens
}

// Entry is one recorded generation call.
type Entry struct {
	Provider string
	Model    string
	Tokens   TokenCount
	Elapsed  time.Duration
}

// Tracker accumulates usage across generation calls.
// It is safe for concurrent use; the zero value is ready to use.
type Tracker struct {
	mu      sync.Mutex
	entries []Entry
}

// Add records an entry.
func (t *Tracker) Add(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, e)
}

// Last returns the most recent entry.
// The bool is false when the tracker has no entries.
func (t *Tracker) Last() (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) == 0 {
		return Entry{}, false
	}

	return t.entries[len(t.entries)-1], true
}

// Total returns the aggregate token count across all entries.
func (t *Tracker) Total() TokenCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total TokenCount
	for _, e := range t.entries {
		total.InputTokens += e.Tokens.InputTokens
		total.OutputTokens += e.Tokens.OutputTokens
		total.Estimated = total.Estimated || e.Tokens.Estimated
	}

	return total
}

// ByProvider returns aggregate token counts keyed by provider name.
func (t *Tracker) ByProvider() map[string]TokenCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]TokenCount)
	for _, e := range t.entries {
		tc := out[e.Provider]
		tc.InputTokens += e.Tokens.InputTokens
		tc.OutputTokens += e.Tokens.OutputTokens
		tc.Estimated = tc.Estimated || e.Tokens.Estimated
		out[e.Provider] = tc
	}

	return out
}

// Providers returns the sorted names of providers that have entries.
func (t *Tracker) Providers() []string {
	byProvider := t.ByProvider()

	names := make([]string, 0, len(byProvider))
	for name := range byProvider {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Count returns the number of recorded entries.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

// Reset clears all recorded entries.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = nil
}
