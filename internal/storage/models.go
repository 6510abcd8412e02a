package storage

import "time"

// SessionRecord is the persisted form of a daily check-in session. The
// transcript lives in MessageRecord rows so message appends are plain
// inserts rather than read-modify-write of a session document.
type SessionRecord struct {
	ID             string `gorm:"primaryKey"`
	UserID         string `gorm:"index"`
	Date           string
	PrimaryEmotion string
	Intensity      *int
	Summary        string
	CrisisDetected bool
	Completed      bool `gorm:"index"`
	CreatedAt      time.Time
}

// MessageRecord is one transcript turn, shared by check-in and memory
// sessions (session ids are uuids, so they never collide across kinds).
// The auto-increment key preserves append order.
type MessageRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"index"`
	Role      string
	Content   string
	CreatedAt time.Time
}

// EmotionRecord is one append-only emotion history row.
type EmotionRecord struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	Date      string
	Emotion   string
	Intensity int
	SessionID string
}

// MemorySessionRecord is the persisted form of a memory-reprocessing
// session. Phase flags are mutated under the owning service's per-session
// lock, so a whole-record save is safe here.
type MemorySessionRecord struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"index"`
	MemoryTopic string
	Phase       string

	ExternalizeComplete bool
	WordCount           int
	TechniquesUsed      []string `gorm:"serializer:json"`

	OldNarrative      string
	NewNarrative      string
	NarrativeAccepted bool

	DistanceTechnique string
	DistanceAchieved  bool

	RitualChosen         string
	RitualCompleted      bool
	BehavioralCommitment string
	ArchivalChoice       string
	WeightBefore         *int
	WeightAfter          *int
	ReliefAchieved       bool
	ClosureAchieved      bool

	ProcessingEffectiveness *int
	CreatedAt               time.Time
	CompletedAt             *time.Time
}
