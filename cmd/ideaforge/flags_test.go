package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/ideaforge/pkg/export"
	"github.com/germanamz/ideaforge/pkg/generators"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
)

func parseGenerate(t *testing.T, kind generators.Kind, args ...string) (*generateFlags, error) {
	t.Helper()

	fs := flag.NewFlagSet(string(kind), flag.ContinueOnError)
	f := bindGenerateFlags(fs, kind)
	require.NoError(t, fs.Parse(args))

	return f, f.finish(fs)
}

func TestGenerateFlags_OnlyExplicitOverrides(t *testing.T) {
	f, err := parseGenerate(t, generators.Blog, "--audience", "experts", "Go generics")
	require.NoError(t, err)

	assert.Equal(t, "Go generics", f.req.blog.Topic)
	assert.Equal(t, "experts", f.req.blog.Audience)

	o := f.req.overrides()
	assert.Nil(t, o.Provider)
	assert.Nil(t, o.Model)
	assert.Nil(t, o.Temperature)
	assert.Nil(t, o.MaxTokens)
}

func TestGenerateFlags_Overrides(t *testing.T) {
	f, err := parseGenerate(t, generators.Writing,
		"--provider", "lm_studio", "--model", "qwen", "--temperature", "0", "--max-tokens", "50", "--genre", "horror")
	require.NoError(t, err)

	o := f.req.overrides()
	require.NotNil(t, o.Provider)
	assert.Equal(t, provider.LMStudio, *o.Provider)
	assert.Equal(t, "qwen", *o.Model)
	assert.Equal(t, 0.0, *o.Temperature)
	assert.Equal(t, 50, *o.MaxTokens)
	assert.Equal(t, "horror", f.req.writing.Genre)
}

func TestGenerateFlags_FlagBeatsArgument(t *testing.T) {
	f, err := parseGenerate(t, generators.Social, "--theme", "Coffee", "--dates", "Tea")
	require.NoError(t, err)

	assert.Equal(t, "Coffee", f.req.social.Theme)
	assert.True(t, f.req.social.IncludeDates)
}

func TestGenerateFlags_ContextFileAndFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("Generics landed in Go 1.18."), 0o600))

	f, err := parseGenerate(t, generators.Blog, "--context-file", path, "--out", "html", "Go")
	require.NoError(t, err)

	assert.Equal(t, "Generics landed in Go 1.18.", f.req.blog.CustomContext)
	assert.Equal(t, export.FormatHTML, f.format)
}

func TestGenerateFlags_Errors(t *testing.T) {
	_, err := parseGenerate(t, generators.Blog, "--out", "pdf", "Go")
	assert.ErrorContains(t, err, "unknown format")

	_, err = parseGenerate(t, generators.Blog, "--context-file", filepath.Join(t.TempDir(), "missing"), "Go")
	assert.ErrorContains(t, err, "read context file")
}
