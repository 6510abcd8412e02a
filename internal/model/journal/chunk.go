package journal

// Chunk is one simulated text-message fragment derived from a single LLM
// completion. TypingDelay is how long the client should show a typing
// indicator before rendering the content; PauseAfter is the silence before
// the next chunk. Chunks are view artifacts: they are regenerated from the
// stored completion and never persisted themselves.
type Chunk struct {
	Content     string `json:"content"`
	TypingDelay int    `json:"typing_delay"`
	PauseAfter  int    `json:"pause_after"`
}
