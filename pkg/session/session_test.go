package session_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/germanamz/ideaforge/pkg/generators"
	"github.com/germanamz/ideaforge/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(kind generators.Kind, subject, content string) generators.Result {
	return generators.Result{
		Kind:        kind,
		Subject:     subject,
		Content:     content,
		Metadata:    generators.Metadata{{Key: "model", Value: "llama3.2"}},
		GeneratedAt: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestStore_ZeroValue(t *testing.T) {
	var s session.Store

	_, ok := s.Latest()
	assert.False(t, ok)
	assert.Empty(t, s.History())
	assert.Empty(t, s.Kinds())

	s.Add(result(generators.Blog, "Go", "one"))

	r, ok := s.Last(generators.Blog)
	require.True(t, ok)
	assert.Equal(t, "one", r.Content)
}

func TestStore_LastPerKind(t *testing.T) {
	s := session.New(0)

	s.Add(result(generators.Blog, "Go", "blog 1"))
	s.Add(result(generators.Social, "AI", "social 1"))
	s.Add(result(generators.Blog, "Rust", "blog 2"))

	r, ok := s.Last(generators.Blog)
	require.True(t, ok)
	assert.Equal(t, "blog 2", r.Content)

	r, ok = s.Last(generators.Social)
	require.True(t, ok)
	assert.Equal(t, "social 1", r.Content)

	_, ok = s.Last(generators.Writing)
	assert.False(t, ok)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "Rust", latest.Subject)

	assert.Equal(t, []generators.Kind{generators.Blog, generators.Social}, s.Kinds())
}

func TestStore_HistoryBounded(t *testing.T) {
	s := session.New(3)

	for i := range 5 {
		s.Add(result(generators.Writing, "sci-fi", fmt.Sprintf("v%d", i)))
	}

	h := s.History()
	require.Len(t, h, 3)
	assert.Equal(t, "v2", h[0].Content)
	assert.Equal(t, "v4", h[2].Content)
}

func TestStore_DefaultLimit(t *testing.T) {
	var s session.Store
	for i := range session.DefaultHistoryLimit + 4 {
		s.Add(result(generators.Blog, "Go", fmt.Sprint(i)))
	}

	assert.Len(t, s.History(), session.DefaultHistoryLimit)
}

func TestStore_ResultsAreCopies(t *testing.T) {
	s := session.New(0)

	in := result(generators.Blog, "Go", "x")
	s.Add(in)
	in.Metadata[0].Value = "mutated"

	got, _ := s.Last(generators.Blog)
	assert.Equal(t, "llama3.2", got.Metadata[0].Value)

	got.Metadata[0].Value = "mutated again"
	again, _ := s.Last(generators.Blog)
	assert.Equal(t, "llama3.2", again.Metadata[0].Value)
}

func TestStore_Diff(t *testing.T) {
	s := session.New(0)

	_, ok, err := s.Diff(generators.Blog)
	require.NoError(t, err)
	assert.False(t, ok)

	s.Add(result(generators.Blog, "Go", "line a\nline b\n"))

	_, ok, err = s.Diff(generators.Blog)
	require.NoError(t, err)
	assert.False(t, ok, "one result is not enough")

	s.Add(result(generators.Social, "AI", "unrelated"))
	s.Add(result(generators.Blog, "Go", "line a\nline c\n"))

	diff, ok, err := s.Diff(generators.Blog)
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, strings.HasPrefix(diff, "--- previous"))
	assert.Contains(t, diff, "+++ latest")
	assert.Contains(t, diff, "-line b\n")
	assert.Contains(t, diff, "+line c\n")
	assert.NotContains(t, diff, "unrelated")
}

func TestStore_Clear(t *testing.T) {
	s := session.New(0)
	s.Add(result(generators.Blog, "Go", "x"))
	s.Add(result(generators.Blog, "Go", "y"))

	s.Clear()

	assert.Empty(t, s.History())
	_, ok := s.Last(generators.Blog)
	assert.False(t, ok)
	_, ok, _ = s.Diff(generators.Blog)
	assert.False(t, ok)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := session.New(0)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Add(result(generators.Kinds()[i%3], "s", fmt.Sprint(i)))
		}()
		go func() {
			defer wg.Done()
			_ = s.History()
			_, _, _ = s.Diff(generators.Blog)
		}()
	}
	wg.Wait()

	assert.Len(t, s.History(), session.DefaultHistoryLimit)
}
