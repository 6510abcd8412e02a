package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/potentiacredential-cmd/listentbh/internal/model/journal"
	"github.com/potentiacredential-cmd/listentbh/internal/model/memory"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestSession(userID string) journal.Session {
	now := time.Now().UTC()
	return journal.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Date:      now.Format("2006-01-02"),
		CreatedAt: now,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := newTestSession("user-1")
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	loaded, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if loaded.ID != session.ID || loaded.UserID != "user-1" || loaded.Date != session.Date {
		t.Fatalf("loaded session mismatch: %+v", loaded)
	}
	if loaded.Completed || loaded.CrisisDetected {
		t.Fatalf("fresh session should carry no flags: %+v", loaded)
	}
	if len(loaded.Messages) != 0 {
		t.Fatalf("expected empty transcript, got %d messages", len(loaded.Messages))
	}
}

func TestGetSessionNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetSession(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendMessagePreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := newTestSession("user-1")
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	turns := []journal.Message{
		{Role: journal.RoleAssistant, Content: "hey, how was your day?", Timestamp: time.Now().UTC()},
		{Role: journal.RoleUser, Content: "pretty rough honestly", Timestamp: time.Now().UTC()},
		{Role: journal.RoleAssistant, Content: "want to tell me about it?", Timestamp: time.Now().UTC()},
	}
	for _, msg := range turns {
		if err := store.AppendMessage(ctx, session.ID, msg); err != nil {
			t.Fatalf("append message: %v", err)
		}
	}

	loaded, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(loaded.Messages) != len(turns) {
		t.Fatalf("expected %d messages, got %d", len(turns), len(loaded.Messages))
	}
	for i, msg := range loaded.Messages {
		if msg.Role != turns[i].Role || msg.Content != turns[i].Content {
			t.Fatalf("message %d mismatch: got %+v, want %+v", i, msg, turns[i])
		}
	}
}

func TestMarkCrisis(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := newTestSession("user-1")
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := store.MarkCrisis(ctx, session.ID); err != nil {
		t.Fatalf("mark crisis: %v", err)
	}

	loaded, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !loaded.CrisisDetected {
		t.Fatal("crisis flag not persisted")
	}

	if err := store.MarkCrisis(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteSessionOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := newTestSession("user-1")
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	intensity := 7
	if err := store.CompleteSession(ctx, session.ID, "a summary", "anxiety", &intensity); err != nil {
		t.Fatalf("complete session: %v", err)
	}

	loaded, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !loaded.Completed || loaded.Summary != "a summary" || loaded.PrimaryEmotion != "anxiety" {
		t.Fatalf("completion not persisted: %+v", loaded)
	}
	if loaded.Intensity == nil || *loaded.Intensity != 7 {
		t.Fatalf("intensity not persisted: %v", loaded.Intensity)
	}

	if err := store.CompleteSession(ctx, session.ID, "again", "anger", nil); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if err := store.CompleteSession(ctx, "missing", "s", "", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecentSessionsOnlyCompleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	open := newTestSession("user-1")
	if err := store.CreateSession(ctx, open); err != nil {
		t.Fatalf("create session: %v", err)
	}

	var completedIDs []string
	for i := 0; i < 3; i++ {
		session := newTestSession("user-1")
		session.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		if err := store.CreateSession(ctx, session); err != nil {
			t.Fatalf("create session: %v", err)
		}
		if err := store.CompleteSession(ctx, session.ID, "done", "calm", nil); err != nil {
			t.Fatalf("complete session: %v", err)
		}
		completedIDs = append(completedIDs, session.ID)
	}

	sessions, err := store.RecentSessions(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("recent sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	// Newest first.
	if sessions[0].ID != completedIDs[2] || sessions[1].ID != completedIDs[1] {
		t.Fatalf("unexpected order: %s, %s", sessions[0].ID, sessions[1].ID)
	}
	for _, session := range sessions {
		if session.ID == open.ID {
			t.Fatal("incomplete session leaked into recent list")
		}
	}
}

func TestEmotionHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entries := []journal.EmotionEntry{
		{ID: uuid.New().String(), UserID: "user-1", Date: "2026-08-28", Emotion: "stress", Intensity: 7, SessionID: "s1"},
		{ID: uuid.New().String(), UserID: "user-1", Date: "2026-08-30", Emotion: "calm", Intensity: 5, SessionID: "s2"},
		{ID: uuid.New().String(), UserID: "user-2", Date: "2026-08-29", Emotion: "joy", Intensity: 8, SessionID: "s3"},
	}
	for _, entry := range entries {
		if err := store.AppendEmotion(ctx, entry); err != nil {
			t.Fatalf("append emotion: %v", err)
		}
	}

	history, err := store.EmotionHistory(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("emotion history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].Emotion != "calm" || history[1].Emotion != "stress" {
		t.Fatalf("expected newest first, got %s then %s", history[0].Emotion, history[1].Emotion)
	}

	count, err := store.EmotionCount(ctx, "s1")
	if err != nil {
		t.Fatalf("emotion count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 entry for s1, got %d", count)
	}
}

func TestMemorySessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := memory.ProcessingSession{
		ID:          uuid.New().String(),
		UserID:      "user-1",
		MemoryTopic: "the argument with my brother",
		Phase:       memory.PhaseExternalize,
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.CreateMemorySession(ctx, session); err != nil {
		t.Fatalf("create memory session: %v", err)
	}

	loaded, err := store.GetMemorySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get memory session: %v", err)
	}
	if loaded.MemoryTopic != session.MemoryTopic || loaded.Phase != memory.PhaseExternalize {
		t.Fatalf("loaded session mismatch: %+v", loaded)
	}

	loaded.Phase = memory.PhaseReframe
	loaded.ExternalizeComplete = true
	loaded.WordCount = 42
	loaded.TechniquesUsed = []string{"letter_writing"}
	completedAt := time.Now().UTC()
	loaded.ClosureAchieved = true
	loaded.CompletedAt = &completedAt
	if err := store.SaveMemorySession(ctx, loaded); err != nil {
		t.Fatalf("save memory session: %v", err)
	}

	saved, err := store.GetMemorySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get memory session: %v", err)
	}
	if saved.Phase != memory.PhaseReframe || !saved.ExternalizeComplete || saved.WordCount != 42 {
		t.Fatalf("updates not persisted: %+v", saved)
	}
	if len(saved.TechniquesUsed) != 1 || saved.TechniquesUsed[0] != "letter_writing" {
		t.Fatalf("techniques not persisted: %v", saved.TechniquesUsed)
	}
	if !saved.ClosureAchieved || saved.CompletedAt == nil {
		t.Fatalf("closure not persisted: %+v", saved)
	}
}

func TestSaveMemorySessionNotFound(t *testing.T) {
	store := newTestStore(t)
	session := memory.ProcessingSession{ID: "missing", Phase: memory.PhaseExternalize}
	if err := store.SaveMemorySession(context.Background(), session); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
