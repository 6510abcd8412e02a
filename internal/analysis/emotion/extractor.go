// Package emotion derives a primary emotion and intensity from a check-in
// transcript using keyword heuristics over the user's own words.
package emotion

import (
	"strings"

	"github.com/potentiacredential-cmd/listentbh/internal/model/journal"
)

// Signal pairs an emotion label with a default intensity on the 1-10 scale.
type Signal struct {
	Emotion   string
	Intensity int
}

var keywordSignals = []struct {
	keyword string
	signal  Signal
}{
	{"anxious", Signal{"anxiety", 7}},
	{"anxiety", Signal{"anxiety", 7}},
	{"worried", Signal{"anxiety", 6}},
	{"stressed", Signal{"stress", 7}},
	{"stress", Signal{"stress", 7}},
	{"overwhelmed", Signal{"overwhelm", 8}},
	{"sad", Signal{"sadness", 6}},
	{"sadness", Signal{"sadness", 6}},
	{"depressed", Signal{"sadness", 8}},
	{"angry", Signal{"anger", 7}},
	{"anger", Signal{"anger", 7}},
	{"frustrated", Signal{"frustration", 6}},
	{"happy", Signal{"joy", 7}},
	{"joy", Signal{"joy", 8}},
	{"excited", Signal{"excitement", 8}},
	{"calm", Signal{"calm", 5}},
	{"peaceful", Signal{"calm", 6}},
	{"lonely", Signal{"loneliness", 7}},
}

// Extract scans user-role messages in conversation order and returns the
// first emotion signal found. The bool result is false when no keyword
// matched.
func Extract(messages []journal.Message) (Signal, bool) {
	for _, msg := range messages {
		if msg.Role != journal.RoleUser {
			continue
		}
		lowered := strings.ToLower(msg.Content)
		for _, entry := range keywordSignals {
			if strings.Contains(lowered, entry.keyword) {
				return entry.signal, true
			}
		}
	}
	return Signal{}, false
}
