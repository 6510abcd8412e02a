// Package safety flags messages that warrant a crisis escalation. The check
// is a deliberate over-inclusive substring net: false positives are
// acceptable, missed signals are not.
package safety

import "strings"

var crisisKeywords = []string{
	"suicide", "kill myself", "end it all", "not worth living", "want to die",
	"self harm", "cut myself", "hurt myself", "self injury",
	"overdose", "end my life", "better off dead", "no reason to live",
	"can't go on", "no hope", "hopeless", "worthless",
}

// IsCrisis reports whether text contains any crisis keyword,
// case-insensitively. Pure and total.
func IsCrisis(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range crisisKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
