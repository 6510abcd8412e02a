package journal

import (
	"strings"
	"time"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable turn in a session transcript. Messages are
// appended in conversation order and never reordered or deduplicated.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// WordCount returns the number of whitespace-delimited tokens in the content.
func (m Message) WordCount() int {
	return len(strings.Fields(m.Content))
}
