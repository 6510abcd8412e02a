// Package phase detects completion signals inside a memory-reprocessing
// phase from agent text. Detection never advances the phase itself; forward
// transitions are always explicit client requests.
package phase

import "strings"

// Detector is the pluggable strategy for phase completion signals. The
// default implementation is crude substring matching; a real classifier can
// replace it without touching the session state machine.
type Detector interface {
	// ExternalizeComplete reports whether the agent text signals that the
	// externalize phase has run its course.
	ExternalizeComplete(agentText string) bool
	// NarrativeAccepted reports whether the agent text signals that the
	// reframed narrative landed.
	NarrativeAccepted(agentText string) bool
}

// KeywordDetector matches fixed completion-signal phrases.
type KeywordDetector struct{}

var externalizeSignals = []string{
	"is there anything else",
	"take a breath",
	"where do you feel",
}

func (KeywordDetector) ExternalizeComplete(agentText string) bool {
	lowered := strings.ToLower(agentText)
	for _, signal := range externalizeSignals {
		if strings.Contains(lowered, signal) {
			return true
		}
	}
	return false
}

func (KeywordDetector) NarrativeAccepted(agentText string) bool {
	lowered := strings.ToLower(agentText)
	return strings.Contains(lowered, "old story") && strings.Contains(lowered, "new story")
}
