package words

import "strings"

// Tokenize splits text on runs of whitespace. Empty or whitespace-only
// text yields an empty slice.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	if fields == nil {
		return []string{}
	}
	return fields
}

// ParseText is Tokenize for callers that only need a word count or a
// preview without starting playback.
func ParseText(text string) []string {
	return Tokenize(text)
}

// Count returns the number of words in text.
func Count(text string) int {
	return len(Tokenize(text))
}
