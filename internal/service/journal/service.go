// Package journal implements the daily check-in conversation flow: session
// start with greeting, paced message exchange with the Emotional Listener,
// and guarded session completion with emotion logging.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/potentiacredential-cmd/listentbh/internal/analysis/emotion"
	agentmodel "github.com/potentiacredential-cmd/listentbh/internal/model/agent"
	journalmodel "github.com/potentiacredential-cmd/listentbh/internal/model/journal"
	"github.com/potentiacredential-cmd/listentbh/internal/pacing"
	"github.com/potentiacredential-cmd/listentbh/internal/safety"
	"github.com/potentiacredential-cmd/listentbh/internal/storage"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrAIUnavailable   = errors.New("ai service unavailable")
)

// Responder produces one raw agent completion. Satisfied by ai.Service.
type Responder interface {
	Reply(ctx context.Context, sessionID, agentID string, history []journalmodel.Message, userMessage string) (string, error)
}

// Service coordinates check-in sessions across storage, the LLM and the
// pacing engine.
type Service struct {
	store   *storage.Store
	ai      Responder
	chunker *pacing.Chunker
	sampler pacing.Sampler
}

// NewService wires the check-in service. ai may be nil when no model is
// configured; message sends then fail with ErrAIUnavailable.
func NewService(store *storage.Store, ai Responder, sampler pacing.Sampler) *Service {
	return &Service{
		store:   store,
		ai:      ai,
		chunker: pacing.NewChunker(sampler),
		sampler: sampler,
	}
}

var greetings = []string{
	"Welcome back. How are you feeling right now?",
	"Hi there. What's on your mind today?",
	"Hello. I'm here to listen. How are you doing?",
	"Welcome. Take a moment... how would you describe what you're feeling?",
}

// StartResult is the payload of a freshly started session.
type StartResult struct {
	SessionID string `json:"session_id"`
	Greeting  string `json:"greeting"`
}

// Start provisions a new check-in session with a varied greeting.
func (s *Service) Start(ctx context.Context, userID string) (StartResult, error) {
	now := time.Now().UTC()
	session := journalmodel.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      now.Format("2006-01-02"),
		CreatedAt: now,
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return StartResult{}, err
	}

	greeting := greetings[s.sampler.IntBetween(0, len(greetings)-1)]
	log.Printf("[journal] started session=%s user=%s", session.ID, userID)
	return StartResult{SessionID: session.ID, Greeting: greeting}, nil
}

// ChatResult carries the paced reply for one message exchange.
type ChatResult struct {
	Chunks          []journalmodel.Chunk `json:"messages"`
	CrisisDetected  bool                 `json:"crisis_detected"`
	SessionComplete bool                 `json:"session_complete"`
}

// SendMessage runs one exchange with the Emotional Listener. The crisis
// flag is detected and persisted before the LLM call so it survives a
// provider failure; the transcript is only appended once the completion
// succeeded, keeping failed exchanges out of the stored session.
func (s *Service) SendMessage(ctx context.Context, sessionID, userMessage string) (ChatResult, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ChatResult{}, ErrSessionNotFound
		}
		return ChatResult{}, err
	}

	crisis := safety.IsCrisis(userMessage)
	if crisis && !session.CrisisDetected {
		if err := s.store.MarkCrisis(ctx, sessionID); err != nil {
			return ChatResult{}, err
		}
	}
	crisisDetected := crisis || session.CrisisDetected

	if s.ai == nil {
		return ChatResult{}, ErrAIUnavailable
	}

	completion, err := s.ai.Reply(ctx, sessionID, agentmodel.Listener, session.Messages, userMessage)
	if err != nil {
		return ChatResult{}, fmt.Errorf("listener completion failed: %w", err)
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

	chunks := s.chunker.Chunk(completion)
	log.Printf("[journal] exchanged message in session=%s (%d chunks, crisis=%t)", sessionID, len(chunks), crisisDetected)

	return ChatResult{
		Chunks:         chunks,
		CrisisDetected: crisisDetected,
	}, nil
}

// Complete finalizes a session and logs its primary emotion. Completing an
// already-completed session returns the stored summary and writes nothing,
// so the emotion history never gains duplicate rows.
func (s *Service) Complete(ctx context.Context, sessionID string) (journalmodel.SessionSummary, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return journalmodel.SessionSummary{}, ErrSessionNotFound
		}
		return journalmodel.SessionSummary{}, err
	}

	if session.Completed {
		return summaryOf(session), nil
	}

	signal, found := emotion.Extract(session.Messages)

	summaryText := "Today you shared your feelings and we talked about what's on your mind. "
	if found {
		summaryText += fmt.Sprintf("You've been experiencing %s. ", signal.Emotion)
	}
	summaryText += "Remember, your emotions are valid and it's okay to feel what you're feeling."

	var intensity *int
	var primaryEmotion string
	if found {
		primaryEmotion = signal.Emotion
		value := signal.Intensity
		intensity = &value
	}

	err = s.store.CompleteSession(ctx, sessionID, summaryText, primaryEmotion, intensity)
	if errors.Is(err, storage.ErrAlreadyCompleted) {
		// Lost a completion race; the stored summary wins.
		session, err = s.store.GetSession(ctx, sessionID)
		if err != nil {
			return journalmodel.SessionSummary{}, err
		}
		return summaryOf(session), nil
	}
	if err != nil {
		return journalmodel.SessionSummary{}, err
	}

	if found {
		entry := journalmodel.EmotionEntry{
			ID:        uuid.NewString(),
			UserID:    session.UserID,
			Date:      time.Now().UTC().Format("2006-01-02"),
			Emotion:   primaryEmotion,
			Intensity: signal.Intensity,
			SessionID: sessionID,
		}
		if err := s.store.AppendEmotion(ctx, entry); err != nil {
			return journalmodel.SessionSummary{}, err
		}
	}

	log.Printf("[journal] completed session=%s emotion=%q", sessionID, primaryEmotion)
	return journalmodel.SessionSummary{
		SessionID:      sessionID,
		Summary:        summaryText,
		PrimaryEmotion: primaryEmotion,
		Intensity:      intensity,
		Date:           time.Now().UTC().Format("2006-01-02"),
	}, nil
}

// Get loads a session with its transcript.
func (s *Service) Get(ctx context.Context, sessionID string) (journalmodel.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return journalmodel.Session{}, ErrSessionNotFound
		}
		return journalmodel.Session{}, err
	}
	return session, nil
}

// Recent lists the newest completed sessions for a user.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]journalmodel.Session, error) {
	return s.store.RecentSessions(ctx, userID, limit)
}

// EmotionHistory lists recent emotion entries for a user, newest first.
func (s *Service) EmotionHistory(ctx context.Context, userID string, days int) ([]journalmodel.EmotionEntry, error) {
	return s.store.EmotionHistory(ctx, userID, days)
}

func summaryOf(session journalmodel.Session) journalmodel.SessionSummary {
	return journalmodel.SessionSummary{
		SessionID:      session.ID,
		Summary:        session.Summary,
		PrimaryEmotion: session.PrimaryEmotion,
		Intensity:      session.Intensity,
		Date:           session.Date,
	}
}
