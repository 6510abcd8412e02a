package pacing

import (
	"strings"

	"github.com/potentiacredential-cmd/listentbh/internal/model/journal"
)

// Timing constants for the human-pacing simulation. 150ms per word tracks
// average human typing speed; the jitter and pause bounds model natural
// variance between messages.
const (
	msPerWord      = 150
	minTypingDelay = 500
	jitterMin      = -200
	jitterMax      = 500
	pauseMin       = 500
	pauseMax       = 1500

	sentencesPerChunk = 2
)

// Chunker converts one raw LLM completion into the ordered sequence of
// text-message chunks a client renders with human-like cadence. Content
// splitting is deterministic for a given input; the attached timing values
// come from the injected Sampler.
type Chunker struct {
	sampler Sampler
}

// NewChunker returns a Chunker drawing timing values from sampler.
func NewChunker(sampler Sampler) *Chunker {
	return &Chunker{sampler: sampler}
}

// TypingTime estimates how long a human would take to type text: 150ms per
// word plus bounded jitter, floored at 500ms.
func (c *Chunker) TypingTime(text string) int {
	words := len(strings.Fields(text))
	delay := words*msPerWord + c.sampler.IntBetween(jitterMin, jitterMax)
	if delay < minTypingDelay {
		delay = minTypingDelay
	}
	return delay
}

// Chunk splits response into message chunks. Responses of at most two
// sentences pass through as a single chunk; longer responses are grouped
// sentence pairs, each with its own typing delay and a randomized pause,
// except the last chunk, whose pause is always zero. Joining the chunk
// contents with single spaces reconstructs the whitespace-normalized
// response. Empty input yields no chunks.
func (c *Chunker) Chunk(response string) []journal.Chunk {
	sentences := SplitSentences(response)
	if len(sentences) == 0 {
		return nil
	}

	if len(sentences) <= sentencesPerChunk {
		content := strings.TrimSpace(response)
		return []journal.Chunk{{
			Content:     content,
			TypingDelay: c.TypingTime(content),
			PauseAfter:  0,
		}}
	}

	var chunks []journal.Chunk
	group := make([]string, 0, sentencesPerChunk)
	for _, sentence := range sentences {
		group = append(group, sentence)
		if len(group) < sentencesPerChunk {
			continue
		}
		content := strings.Join(group, " ")
		chunks = append(chunks, journal.Chunk{
			Content:     content,
			TypingDelay: c.TypingTime(content),
			PauseAfter:  c.sampler.IntBetween(pauseMin, pauseMax),
		})
		group = group[:0]
	}

	if len(group) > 0 {
		content := strings.Join(group, " ")
		chunks = append(chunks, journal.Chunk{
			Content:     content,
			TypingDelay: c.TypingTime(content),
			PauseAfter:  0,
		})
	}

	// The final chunk never carries a trailing pause, whichever path
	// produced it.
	chunks[len(chunks)-1].PauseAfter = 0
	return chunks
}
