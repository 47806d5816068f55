package usage_test

import (
	"sync"
	"testing"
	"time"

	"github.com/germanamz/ideaforge/pkg/modeladapter/usage"
	"github.com/stretchr/testify/assert"
)

func entry(provider string, in, out int) usage.Entry {
	return usage.Entry{
		Provider: provider,
		Model:    "m",
		Tokens:   usage.TokenCount{InputTokens: in, OutputTokens: out},
		Elapsed:  time.Second,
	}
}

func TestTokenCount_Total(t *testing.T) {
	tc := usage.TokenCount{InputTokens: 100, OutputTokens: 50}
	assert.Equal(t, 150, tc.Total())
	assert.Equal(t, 0, usage.TokenCount{}.Total())
}

func TestTracker_Last(t *testing.T) {
	var tr usage.Tracker

	_, ok := tr.Last()
	assert.False(t, ok)

	tr.Add(entry("ollama", 10, 5))
	tr.Add(entry("lm_studio", 20, 10))

	last, ok := tr.Last()
	assert.True(t, ok)
	assert.Equal(t, "lm_studio", last.Provider)
	assert.Equal(t, 30, last.Tokens.Total())
}

func TestTracker_Total(t *testing.T) {
	var tr usage.Tracker

	assert.Equal(t, usage.TokenCount{}, tr.Total())

	tr.Add(entry("ollama", 10, 5))
	tr.Add(entry("ollama", 20, 10))

	total := tr.Total()
	assert.Equal(t, 30, total.InputTokens)
	assert.Equal(t, 15, total.OutputTokens)
}

func TestTracker_ByProvider(t *testing.T) {
	var tr usage.Tracker

	tr.Add(entry("ollama", 10, 5))
	tr.Add(entry("lm_studio", 1, 2))
	tr.Add(entry("ollama", 20, 10))

	by := tr.ByProvider()
	assert.Equal(t, usage.TokenCount{InputTokens: 30, OutputTokens: 15}, by["ollama"])
	assert.Equal(t, usage.TokenCount{InputTokens: 1, OutputTokens: 2}, by["lm_studio"])
	assert.Equal(t, []string{"lm_studio", "ollama"}, tr.Providers())
}

func TestTracker_Reset(t *testing.T) {
	var tr usage.Tracker

	tr.Add(entry("ollama", 10, 5))
	assert.Equal(t, 1, tr.Count())

	tr.Reset()
	assert.Equal(t, 0, tr.Count())
	assert.Empty(t, tr.Providers())
}

func TestTracker_Concurrent_Add(t *testing.T) {
	var tr usage.Tracker

	const goroutines = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for range goroutines {
		go func() {
			defer wg.Done()
			tr.Add(entry("ollama", 1, 1))
		}()
	}

	wg.Wait()

	assert.Equal(t, goroutines, tr.Count())
	assert.Equal(t, goroutines, tr.Total().InputTokens)
}
