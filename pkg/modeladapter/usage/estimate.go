package usage

// perMessageOverhead is the estimated token overhead of each message (role,
// structure delimiters, etc.).
const perMessageOverhead = 4

// charsToTokens converts a character count to an estimated token count using
// the 1-token-per-4-characters heuristic.
func charsToTokens(chars int) int {
	return (chars + 3) / 4 // round up
}

// EstimateText estimates the tokens of one message. Empty text costs nothing.
func EstimateText(text string) int {
	if text == "" {
		return 0
	}

	return charsToTokens(len(text)) + perMessageOverhead
}

// Estimate approximates the counts of a call whose server reported none. The
// system prompt and prompt are input; the reply is output.
func Estimate(systemPrompt, prompt, reply string) TokenCount {
	return TokenCount{
		InputTokens:  EstimateText(systemPrompt) + EstimateText(prompt),
		OutputTokens: EstimateText(reply),
		Estimated:    true,
	}
}
