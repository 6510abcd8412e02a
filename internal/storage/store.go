// Package storage persists sessions, transcripts and emotion history in a
// sqlite database through typed records. Reads that find nothing return
// ErrNotFound; schema mismatches surface as decode errors instead of being
// coerced silently.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/potentiacredential-cmd/listentbh/internal/model/journal"
	"github.com/potentiacredential-cmd/listentbh/internal/model/memory"
)

var (
	// ErrNotFound signals that a referenced record does not exist.
	ErrNotFound = errors.New("storage: record not found")
	// ErrAlreadyCompleted signals a second completion of the same session.
	ErrAlreadyCompleted = errors.New("storage: session already completed")
)

// Store wraps the database handle. Construct with Open on startup and Close
// on shutdown; no package-level state.
type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.Exec("PRAGMA journal_mode = WAL;")
	sqlDB.Exec("PRAGMA foreign_keys = ON;")

	if err := db.AutoMigrate(&SessionRecord{}, &MessageRecord{}, &EmotionRecord{}, &MemorySessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateSession inserts a new check-in session record.
func (s *Store) CreateSession(ctx context.Context, session journal.Session) error {
	record := SessionRecord{
		ID:             session.ID,
		UserID:         session.UserID,
		Date:           session.Date,
		PrimaryEmotion: session.PrimaryEmotion,
		Intensity:      session.Intensity,
		Summary:        session.Summary,
		CrisisDetected: session.CrisisDetected,
		Completed:      session.Completed,
		CreatedAt:      session.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession loads a session and its transcript in append order.
func (s *Store) GetSession(ctx context.Context, id string) (journal.Session, error) {
	var record SessionRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return journal.Session{}, ErrNotFound
		}
		return journal.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	messages, err := s.loadMessages(ctx, id)
	if err != nil {
		return journal.Session{}, err
	}

	return journal.Session{
		ID:             record.ID,
		UserID:         record.UserID,
		Date:           record.Date,
		Messages:       messages,
		PrimaryEmotion: record.PrimaryEmotion,
		Intensity:      record.Intensity,
		Summary:        record.Summary,
		CrisisDetected: record.CrisisDetected,
		Completed:      record.Completed,
		CreatedAt:      record.CreatedAt,
	}, nil
}

// AppendMessage adds one transcript turn. Appends are inserts, so
// concurrent sends against the same session cannot lose each other's rows.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg journal.Message) error {
	record := MessageRecord{
		SessionID: sessionID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.Timestamp,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// MarkCrisis raises the crisis flag. Single-field update; the flag is never
// lowered again.
func (s *Store) MarkCrisis(ctx context.Context, sessionID string) error {
	result := s.db.WithContext(ctx).Model(&SessionRecord{}).
		Where("id = ?", sessionID).
		Update("crisis_detected", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark crisis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteSession finalizes a session exactly once. The completed guard is
// part of the update predicate, so a concurrent double completion affects
// zero rows and reports ErrAlreadyCompleted instead of writing twice.
func (s *Store) CompleteSession(ctx context.Context, id, summary, emotion string, intensity *int) error {
	result := s.db.WithContext(ctx).Model(&SessionRecord{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]any{
			"completed":       true,
			"summary":         summary,
			"primary_emotion": emotion,
			"intensity":       intensity,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&SessionRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to complete session: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrAlreadyCompleted
	}
	return nil
}

// RecentSessions returns the newest completed sessions for a user,
// transcripts included.
func (s *Store) RecentSessions(ctx context.Context, userID string, limit int) ([]journal.Session, error) {
	var records []SessionRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND completed = ?", userID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]journal.Session, 0, len(records))
	for _, record := range records {
		messages, err := s.loadMessages(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, journal.Session{
			ID:             record.ID,
			UserID:         record.UserID,
			Date:           record.Date,
			Messages:       messages,
			PrimaryEmotion: record.PrimaryEmotion,
			Intensity:      record.Intensity,
			Summary:        record.Summary,
			CrisisDetected: record.CrisisDetected,
			Completed:      record.Completed,
			CreatedAt:      record.CreatedAt,
		})
	}
	return sessions, nil
}

// AppendEmotion inserts one emotion history row.
func (s *Store) AppendEmotion(ctx context.Context, entry journal.EmotionEntry) error {
	record := EmotionRecord{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Date:      entry.Date,
		Emotion:   entry.Emotion,
		Intensity: entry.Intensity,
		SessionID: entry.SessionID,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to append emotion entry: %w", err)
	}
	return nil
}

// EmotionHistory returns up to limit entries for a user, newest first.
func (s *Store) EmotionHistory(ctx context.Context, userID string, limit int) ([]journal.EmotionEntry, error) {
	var records []EmotionRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list emotion history: %w", err)
	}

	entries := make([]journal.EmotionEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, journal.EmotionEntry{
			ID:        record.ID,
			UserID:    record.UserID,
			Date:      record.Date,
			Emotion:   record.Emotion,
			Intensity: record.Intensity,
			SessionID: record.SessionID,
		})
	}
	return entries, nil
}

// EmotionCount reports how many history rows reference a session.
func (s *Store) EmotionCount(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&EmotionRecord{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count emotion entries: %w", err)
	}
	return count, nil
}

// CreateMemorySession inserts a new memory-reprocessing session record.
func (s *Store) CreateMemorySession(ctx context.Context, session memory.ProcessingSession) error {
	record := memorySessionToRecord(session)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to create memory session: %w", err)
	}
	return nil
}

// GetMemorySession loads a memory session and its transcript.
func (s *Store) GetMemorySession(ctx context.Context, id string) (memory.ProcessingSession, error) {
	var record MemorySessionRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return memory.ProcessingSession{}, ErrNotFound
		}
		return memory.ProcessingSession{}, fmt.Errorf("failed to load memory session: %w", err)
	}

	messages, err := s.loadMessages(ctx, id)
	if err != nil {
		return memory.ProcessingSession{}, err
	}

	session := recordToMemorySession(record)
	session.Messages = messages
	return session, nil
}

// SaveMemorySession persists all mutable memory-session fields. Callers
// serialize updates per session id.
func (s *Store) SaveMemorySession(ctx context.Context, session memory.ProcessingSession) error {
	record := memorySessionToRecord(session)
	result := s.db.WithContext(ctx).Model(&MemorySessionRecord{}).
		Where("id = ?", session.ID).
		Select("*").Omit("id", "created_at").
		Updates(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to save memory session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) loadMessages(ctx context.Context, sessionID string) ([]journal.Message, error) {
	var records []MessageRecord
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	messages := make([]journal.Message, 0, len(records))
	for _, record := range records {
		messages = append(messages, journal.Message{
			Role:      journal.Role(record.Role),
			Content:   record.Content,
			Timestamp: record.CreatedAt,
		})
	}
	return messages, nil
}

func memorySessionToRecord(session memory.ProcessingSession) MemorySessionRecord {
	return MemorySessionRecord{
		ID:                      session.ID,
		UserID:                  session.UserID,
		MemoryTopic:             session.MemoryTopic,
		Phase:                   string(session.Phase),
		ExternalizeComplete:     session.ExternalizeComplete,
		WordCount:               session.WordCount,
		TechniquesUsed:          session.TechniquesUsed,
		OldNarrative:            session.OldNarrative,
		NewNarrative:            session.NewNarrative,
		NarrativeAccepted:       session.NarrativeAccepted,
		DistanceTechnique:       session.DistanceTechnique,
		DistanceAchieved:        session.DistanceAchieved,
		RitualChosen:            session.RitualChosen,
		RitualCompleted:         session.RitualCompleted,
		BehavioralCommitment:    session.BehavioralCommitment,
		ArchivalChoice:          session.ArchivalChoice,
		WeightBefore:            session.WeightBefore,
		WeightAfter:             session.WeightAfter,
		ReliefAchieved:          session.ReliefAchieved,
		ClosureAchieved:         session.ClosureAchieved,
		ProcessingEffectiveness: session.ProcessingEffectiveness,
		CreatedAt:               session.CreatedAt,
		CompletedAt:             session.CompletedAt,
	}
}

func recordToMemorySession(record MemorySessionRecord) memory.ProcessingSession {
	return memory.ProcessingSession{
		ID:                      record.ID,
		UserID:                  record.UserID,
		MemoryTopic:             record.MemoryTopic,
		Phase:                   memory.Phase(record.Phase),
		ExternalizeComplete:     record.ExternalizeComplete,
		WordCount:               record.WordCount,
		TechniquesUsed:          record.TechniquesUsed,
		OldNarrative:            record.OldNarrative,
		NewNarrative:            record.NewNarrative,
		NarrativeAccepted:       record.NarrativeAccepted,
		DistanceTechnique:       record.DistanceTechnique,
		DistanceAchieved:        record.DistanceAchieved,
		RitualChosen:            record.RitualChosen,
		RitualCompleted:         record.RitualCompleted,
		BehavioralCommitment:    record.BehavioralCommitment,
		ArchivalChoice:          record.ArchivalChoice,
		WeightBefore:            record.WeightBefore,
		WeightAfter:             record.WeightAfter,
		ReliefAchieved:          record.ReliefAchieved,
		ClosureAchieved:         record.ClosureAchieved,
		ProcessingEffectiveness: record.ProcessingEffectiveness,
		CreatedAt:               record.CreatedAt,
		CompletedAt:             record.CompletedAt,
	}
}
