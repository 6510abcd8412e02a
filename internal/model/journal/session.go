package journal

import "time"

// Session is a daily check-in conversation. The message log is append-only;
// CrisisDetected is never unset once raised; completion happens exactly once.
type Session struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Date           string    `json:"date"`
	Messages       []Message `json:"messages"`
	PrimaryEmotion string    `json:"primary_emotion,omitempty"`
	Intensity      *int      `json:"intensity,omitempty"`
	Summary        string    `json:"summary,omitempty"`
	CrisisDetected bool      `json:"crisis_detected"`
	Completed      bool      `json:"completed"`
	CreatedAt      time.Time `json:"created_at"`
}

// Summary of a completed session as returned to the client.
type SessionSummary struct {
	SessionID      string `json:"session_id"`
	Summary        string `json:"summary"`
	PrimaryEmotion string `json:"primary_emotion,omitempty"`
	Intensity      *int   `json:"intensity,omitempty"`
	Date           string `json:"date"`
}

// EmotionEntry is one append-only emotion history row, logged when a
// completed session carries a primary emotion.
type EmotionEntry struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	Emotion   string `json:"emotion"`
	Intensity int    `json:"intensity"`
	SessionID string `json:"session_id"`
}
