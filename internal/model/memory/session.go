package memory

import (
	"time"

	"github.com/potentiacredential-cmd/listentbh/internal/model/journal"
)

// Phase is one of the four ordered stages of a guided memory-reprocessing
// conversation. Phases only ever advance forward.
type Phase string

const (
	PhaseExternalize Phase = "externalize"
	PhaseReframe     Phase = "reframe"
	PhaseDistance    Phase = "distance"
	PhaseRelease     Phase = "release"
)

var phaseOrder = []Phase{PhaseExternalize, PhaseReframe, PhaseDistance, PhaseRelease}

// Valid reports whether p is one of the four named phases.
func (p Phase) Valid() bool {
	for _, candidate := range phaseOrder {
		if p == candidate {
			return true
		}
	}
	return false
}

// Index returns the position of p in the phase sequence, or -1.
func (p Phase) Index() int {
	for i, candidate := range phaseOrder {
		if p == candidate {
			return i
		}
	}
	return -1
}

// After reports whether p comes strictly later than other in the sequence.
func (p Phase) After(other Phase) bool {
	return p.Index() > other.Index()
}

// ProcessingSession is a guided memory-reprocessing conversation.
type ProcessingSession struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	MemoryTopic string            `json:"memory_topic"`
	Phase       Phase             `json:"phase"`
	Messages    []journal.Message `json:"messages"`

	// Externalize phase.
	ExternalizeComplete bool     `json:"externalize_complete"`
	WordCount           int      `json:"word_count"`
	TechniquesUsed      []string `json:"techniques_used,omitempty"`

	// Reframe phase.
	OldNarrative      string `json:"old_narrative,omitempty"`
	NewNarrative      string `json:"new_narrative,omitempty"`
	NarrativeAccepted bool   `json:"narrative_accepted"`

	// Distance phase.
	DistanceTechnique string `json:"distance_technique,omitempty"`
	DistanceAchieved  bool   `json:"distance_achieved"`

	// Release phase.
	RitualChosen         string `json:"ritual_chosen,omitempty"`
	RitualCompleted      bool   `json:"ritual_completed"`
	BehavioralCommitment string `json:"behavioral_commitment,omitempty"`
	ArchivalChoice       string `json:"archival_choice,omitempty"`
	WeightBefore         *int   `json:"weight_before,omitempty"`
	WeightAfter          *int   `json:"weight_after,omitempty"`
	ReliefAchieved       bool   `json:"relief_achieved"`
	ClosureAchieved      bool   `json:"closure_achieved"`

	ProcessingEffectiveness *int       `json:"processing_effectiveness,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	CompletedAt             *time.Time `json:"completed_at,omitempty"`
}

// PhaseUpdate carries an explicit phase-data update request. Nil fields are
// left untouched; the zero-value distinction matters for booleans, so those
// are pointers too.
type PhaseUpdate struct {
	Phase                   *Phase   `json:"phase,omitempty"`
	TechniquesUsed          []string `json:"techniques_used,omitempty"`
	OldNarrative            *string  `json:"old_narrative,omitempty"`
	NewNarrative            *string  `json:"new_narrative,omitempty"`
	NarrativeAccepted       *bool    `json:"narrative_accepted,omitempty"`
	DistanceTechnique       *string  `json:"distance_technique,omitempty"`
	DistanceAchieved        *bool    `json:"distance_achieved,omitempty"`
	RitualChosen            *string  `json:"ritual_chosen,omitempty"`
	RitualCompleted         *bool    `json:"ritual_completed,omitempty"`
	BehavioralCommitment    *string  `json:"behavioral_commitment,omitempty"`
	ArchivalChoice          *string  `json:"archival_choice,omitempty"`
	WeightBefore            *int     `json:"weight_before,omitempty"`
	WeightAfter             *int     `json:"weight_after,omitempty"`
	ReliefAchieved          *bool    `json:"relief_achieved,omitempty"`
	ClosureAchieved         *bool    `json:"closure_achieved,omitempty"`
	ProcessingEffectiveness *int     `json:"processing_effectiveness,omitempty"`
}
