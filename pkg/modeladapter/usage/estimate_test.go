package usage_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/germanamz/ideaforge/pkg/modeladapter/usage"
)

func TestEstimateText(t *testing.T) {
	assert.Equal(t, 0, usage.EstimateText(""))
	// 1 char rounds up to 1 token, plus overhead.
	assert.Equal(t, 5, usage.EstimateText("a"))
	// 400 chars -> 100 tokens, plus overhead.
	assert.Equal(t, 104, usage.EstimateText(strings.Repeat("x", 400)))
}

func TestEstimate(t *testing.T) {
	tc := usage.Estimate("", strings.Repeat("p", 40), strings.Repeat("r", 80))

	assert.True(t, tc.Estimated)
	assert.Equal(t, 14, tc.InputTokens)
	assert.Equal(t, 24, tc.OutputTokens)

	withSystem := usage.Estimate("be brief", strings.Repeat("p", 40), "")
	assert.Equal(t, 14+6, withSystem.InputTokens)
	assert.Equal(t, 0, withSystem.OutputTokens)
}

func TestTracker_EstimatedPropagates(t *testing.T) {
	var tr usage.Tracker
	tr.Add(usage.Entry{Provider: "ollama", Tokens: usage.TokenCount{InputTokens: 1, OutputTokens: 2}})
	assert.False(t, tr.Total().Estimated)

	tr.Add(usage.Entry{Provider: "lm_studio", Tokens: usage.Estimate("", "p", "r")})
	assert.True(t, tr.Total().Estimated)
	assert.False(t, tr.ByProvider()["ollama"].Estimated)
	assert.True(t, tr.ByProvider()["lm_studio"].Estimated)
}
