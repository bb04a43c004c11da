package text

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the segment size used when ingesting content sources.
const DefaultChunkSize = 1000

// Chunk splits s into segments of at most maxChars characters, breaking only
// on word boundaries. Words are accumulated greedily; a word longer than
// maxChars is emitted on its own rather than truncated. A non-positive
// maxChars disables splitting.
func Chunk(s string, maxChars int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	if maxChars <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var chunks []string
	var buf []string
	bufLen := 0

	for _, w := range words {
		n := utf8.RuneCountInString(w)
		// Rendered length of buf plus a separator plus w.
		if len(buf) > 0 && bufLen+1+n > maxChars {
			chunks = append(chunks, strings.Join(buf, " "))
			buf = buf[:0]
			bufLen = 0
		}
		if len(buf) > 0 {
			bufLen++
		}
		buf = append(buf, w)
		bufLen += n
	}
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}
	return chunks
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
