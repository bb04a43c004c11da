// Package text provides the whitespace normalizer and word-boundary chunker
// shared by every ingestion path.
package text

import "strings"

// Normalize replaces line breaks with spaces, collapses whitespace runs to a
// single space and trims the result.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// EstimateTokens approximates the token count of s as its word count.
func EstimateTokens(s string) int {
	return len(strings.Fields(s))
}
