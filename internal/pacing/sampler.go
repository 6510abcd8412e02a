package pacing

import (
	"math/rand"
	"sync"
	"time"
)

// Sampler draws uniform integers for the simulated timing values. Injecting
// it keeps the chunking logic deterministic under test while production use
// gets real jitter.
type Sampler interface {
	// IntBetween returns a uniform integer in [min, max], inclusive.
	IntBetween(min, max int) int
}

type randSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler returns a time-seeded Sampler safe for concurrent use.
func NewSampler() Sampler {
	return &randSampler{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *randSampler) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rng.Intn(max-min+1)
}
