package llm

import (
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("```json\\n?")
	fenceClose = regexp.MustCompile("```\\n?")

	// Greedy: spans from the first '[' to the last ']'.
	bracketedArray = regexp.MustCompile(`(?s)\[.*\]`)
)

// StripCodeFences removes markdown code fence markers (```json and ```)
// wherever they occur and trims surrounding whitespace.
func StripCodeFences(s string) string {
	s = fenceOpen.ReplaceAllString(s, "")
	s = fenceClose.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// FirstBracketedArray returns the substring from the first '[' to the last
// ']' in s, or "" if there is none.
func FirstBracketedArray(s string) string {
	return bracketedArray.FindString(s)
}
