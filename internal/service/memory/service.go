// Package memory implements the guided memory-reprocessing flow: a four
// phase conversation (externalize, reframe, distance, release) with
// heuristic completion detection and explicit phase-data updates.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/potentiacredential-cmd/listentbh/internal/analysis/phase"
	agentmodel "github.com/potentiacredential-cmd/listentbh/internal/model/agent"
	journalmodel "github.com/potentiacredential-cmd/listentbh/internal/model/journal"
	memorymodel "github.com/potentiacredential-cmd/listentbh/internal/model/memory"
	"github.com/potentiacredential-cmd/listentbh/internal/pacing"
	"github.com/potentiacredential-cmd/listentbh/internal/safety"
	"github.com/potentiacredential-cmd/listentbh/internal/storage"
)

var (
	ErrSessionNotFound = errors.New("memory session not found")
	ErrTopicRequired   = errors.New("memory topic is required")
	ErrInvalidPhase    = errors.New("invalid phase value")
	ErrAIUnavailable   = errors.New("ai service unavailable")
)

// Responder produces one raw agent completion. Satisfied by ai.Service.
type Responder interface {
	Reply(ctx context.Context, sessionID, agentID string, history []journalmodel.Message, userMessage string) (string, error)
}

// Service coordinates memory-reprocessing sessions. Phase flags on one
// session are read-modify-write, so updates against the same session id are
// serialized through a per-key mutex.
type Service struct {
	store    *storage.Store
	ai       Responder
	chunker  *pacing.Chunker
	detector phase.Detector

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires the memory-reprocessing service.
func NewService(store *storage.Store, ai Responder, sampler pacing.Sampler, detector phase.Detector) *Service {
	if detector == nil {
		detector = phase.KeywordDetector{}
	}
	return &Service{
		store:    store,
		ai:       ai,
		chunker:  pacing.NewChunker(sampler),
		detector: detector,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *Service) sessionLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// StartResult is the payload of a freshly started memory session.
type StartResult struct {
	SessionID string            `json:"session_id"`
	Phase     memorymodel.Phase `json:"phase"`
	Greeting  string            `json:"greeting"`
}

// Start provisions a memory-reprocessing session in the externalize phase.
func (s *Service) Start(ctx context.Context, userID, topic string) (StartResult, error) {
	if topic == "" {
		return StartResult{}, ErrTopicRequired
	}

	session := memorymodel.ProcessingSession{
		ID:          uuid.NewString(),
		UserID:      userID,
		MemoryTopic: topic,
		Phase:       memorymodel.PhaseExternalize,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateMemorySession(ctx, session); err != nil {
		return StartResult{}, err
	}

	log.Printf("[memory] started session=%s user=%s topic=%q", session.ID, userID, topic)
	return StartResult{
		SessionID: session.ID,
		Phase:     session.Phase,
		Greeting: fmt.Sprintf("We'll take this one step at a time. Tell me about %q - "+
			"whatever comes up first.", topic),
	}, nil
}

// ChatResult carries the paced reply plus the session's phase state after
// one exchange with the Memory Guide.
type ChatResult struct {
	Chunks              []journalmodel.Chunk `json:"messages"`
	Phase               memorymodel.Phase    `json:"phase"`
	ExternalizeComplete bool                 `json:"externalize_complete"`
	NarrativeAccepted   bool                 `json:"narrative_accepted"`
	CrisisDetected      bool                 `json:"crisis_detected"`
}

// SendMessage runs one exchange with the Memory Guide and applies the
// heuristic completion detection for the current phase.
func (s *Service) SendMessage(ctx context.Context, sessionID, userMessage string) (ChatResult, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.GetMemorySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ChatResult{}, ErrSessionNotFound
		}
		return ChatResult{}, err
	}

	if s.ai == nil {
		return ChatResult{}, ErrAIUnavailable
	}

	completion, err := s.ai.Reply(ctx, sessionID, agentmodel.Guide, session.Messages, userMessage)
	if err != nil {
		return ChatResult{}, fmt.Errorf("guide completion failed: %w", err)
	}

	now := time.Now().UTC()
	userMsg := journalmodel.Message{Role: journalmodel.RoleUser, Content: userMessage, Timestamp: now}
	assistantMsg := journalmodel.Message{Role: journalmodel.RoleAssistant, Content: completion, Timestamp: now}
	if err := s.store.AppendMessage(ctx, sessionID, userMsg); err != nil {
		return ChatResult{}, err
	}
	if err := s.store.AppendMessage(ctx, sessionID, assistantMsg); err != nil {
		return ChatResult{}, err
	}
	session.Messages = append(session.Messages, userMsg, assistantMsg)

	if s.observeCompletion(&session, completion) {
		if err := s.store.SaveMemorySession(ctx, session); err != nil {
			return ChatResult{}, err
		}
	}

	return ChatResult{
		Chunks:              s.chunker.Chunk(completion),
		Phase:               session.Phase,
		ExternalizeComplete: session.ExternalizeComplete,
		NarrativeAccepted:   session.NarrativeAccepted,
		CrisisDetected:      safety.IsCrisis(userMessage),
	}, nil
}

// observeCompletion applies the phase-scoped heuristic signals from the
// latest agent completion. It flags completion within a phase but never
// advances the phase itself. Returns true when a flag changed.
func (s *Service) observeCompletion(session *memorymodel.ProcessingSession, agentText string) bool {
	switch session.Phase {
	case memorymodel.PhaseExternalize:
		if !session.ExternalizeComplete && s.detector.ExternalizeComplete(agentText) {
			session.ExternalizeComplete = true
			session.WordCount = userWordCount(session.Messages)
			log.Printf("[memory] externalize complete for session=%s (word_count=%d)", session.ID, session.WordCount)
			return true
		}
	case memorymodel.PhaseReframe:
		if !session.NarrativeAccepted && s.detector.NarrativeAccepted(agentText) {
			session.NarrativeAccepted = true
			log.Printf("[memory] narrative accepted for session=%s", session.ID)
			return true
		}
	}
	return false
}

func userWordCount(messages []journalmodel.Message) int {
	total := 0
	for _, msg := range messages {
		if msg.Role == journalmodel.RoleUser {
			total += msg.WordCount()
		}
	}
	return total
}

// UpdatePhase applies an explicit phase-data update. Phase transitions are
// forward-only; setting closure stamps the completion time.
func (s *Service) UpdatePhase(ctx context.Context, sessionID string, update memorymodel.PhaseUpdate) (memorymodel.ProcessingSession, error) {
	if update.Phase != nil && !update.Phase.Valid() {
		return memorymodel.ProcessingSession{}, ErrInvalidPhase
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.GetMemorySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return memorymodel.ProcessingSession{}, ErrSessionNotFound
		}
		return memorymodel.ProcessingSession{}, err
	}

	if update.Phase != nil {
		if session.Phase.After(*update.Phase) {
			return memorymodel.ProcessingSession{}, ErrInvalidPhase
		}
		session.Phase = *update.Phase
	}
	if update.TechniquesUsed != nil {
		session.TechniquesUsed = update.TechniquesUsed
	}
	if update.OldNarrative != nil {
		session.OldNarrative = *update.OldNarrative
	}
	if update.NewNarrative != nil {
		session.NewNarrative = *update.NewNarrative
	}
	if update.NarrativeAccepted != nil {
		session.NarrativeAccepted = *update.NarrativeAccepted
	}
	if update.DistanceTechnique != nil {
		session.DistanceTechnique = *update.DistanceTechnique
	}
	if update.DistanceAchieved != nil {
		session.DistanceAchieved = *update.DistanceAchieved
	}
	if update.RitualChosen != nil {
		session.RitualChosen = *update.RitualChosen
	}
	if update.RitualCompleted != nil {
		session.RitualCompleted = *update.RitualCompleted
	}
	if update.BehavioralCommitment != nil {
		session.BehavioralCommitment = *update.BehavioralCommitment
	}
	if update.ArchivalChoice != nil {
		session.ArchivalChoice = *update.ArchivalChoice
	}
	if update.WeightBefore != nil {
		session.WeightBefore = update.WeightBefore
	}
	if update.WeightAfter != nil {
		session.WeightAfter = update.WeightAfter
	}
	if update.ReliefAchieved != nil {
		session.ReliefAchieved = *update.ReliefAchieved
	}
	if update.ClosureAchieved != nil {
		session.ClosureAchieved = *update.ClosureAchieved
		if *update.ClosureAchieved && session.CompletedAt == nil {
			now := time.Now().UTC()
			session.CompletedAt = &now
		}
	}
	if update.ProcessingEffectiveness != nil {
		session.ProcessingEffectiveness = update.ProcessingEffectiveness
	}

	if err := s.store.SaveMemorySession(ctx, session); err != nil {
		return memorymodel.ProcessingSession{}, err
	}

	log.Printf("[memory] phase update applied to session=%s (phase=%s)", sessionID, session.Phase)
	return session, nil
}

// Get loads a memory session with its transcript.
func (s *Service) Get(ctx context.Context, sessionID string) (memorymodel.ProcessingSession, error) {
	session, err := s.store.GetMemorySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return memorymodel.ProcessingSession{}, ErrSessionNotFound
		}
		return memorymodel.ProcessingSession{}, err
	}
	return session, nil
}
