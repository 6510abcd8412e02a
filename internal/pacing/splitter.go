package pacing

import (
	"strings"
	"unicode"
)

// SplitSentences splits text into sentences at boundaries where a
// sentence-ending mark (. ! ?) is immediately followed by whitespace. The
// terminator stays attached to its sentence. There is no abbreviation
// handling, so "Dr. Smith" splits after "Dr." — acceptable for the short
// conversational completions this service paces.
//
// Empty or whitespace-only input yields nil; no returned sentence is empty
// after trimming.
func SplitSentences(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var sentences []string
	runes := []rune(trimmed)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		// Skip the whitespace run separating sentences.
		i++
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
		}
		start = i + 1
	}

	if start < len(runes) {
		if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
			sentences = append(sentences, tail)
		}
	}

	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
