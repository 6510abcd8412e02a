// Package insight hosts the two analysis agents: the silent pattern
// analyzer (pure heuristics over stored sessions) and the weekly insight
// writer (LLM-backed with a heuristic fallback).
package insight

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	journalmodel "github.com/potentiacredential-cmd/listentbh/internal/model/journal"
	"github.com/potentiacredential-cmd/listentbh/internal/storage"
)

// Config controls the insight writer.
type Config struct {
	Enabled bool
	Timeout time.Duration
}

// Service reads completed sessions and produces pattern reports and weekly
// insights. The writer degrades to a heuristic summary when no chat model
// is configured.
type Service struct {
	store   *storage.Store
	enabled bool
	writer  compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewService creates the insight service. chatModel may be nil; the weekly
// writer then always uses the fallback text.
func NewService(ctx context.Context, store *storage.Store, chatModel model.ChatModel, cfg Config) (*Service, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	svc := &Service{
		store:   store,
		enabled: cfg.Enabled && chatModel != nil,
		timeout: timeout,
	}

	if !svc.enabled {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(insightSystemPrompt),
		schema.UserMessage("{digest}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile insight chain: %w", err)
	}

	svc.writer = runnable
	return svc, nil
}

// Enabled reports whether the LLM-backed writer is available.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.writer != nil
}

const insightSystemPrompt = "You are the Insight Writer for a journaling app. " +
	"You receive a digest of one user's check-ins from the past week: dates, primary emotions, " +
	"intensities and session summaries. Write a short, kind reflection (under 120 words, second person) " +
	"grounded only in the digest. Name at most two recurring emotions and end with at most one gentle suggestion. " +
	"No toxic positivity, no clinical language."

// PatternReport is the silent pattern analyzer's output.
type PatternReport struct {
	UserID             string         `json:"user_id"`
	SessionsAnalyzed   int            `json:"sessions_analyzed"`
	EmotionFrequencies map[string]int `json:"emotion_frequencies"`
	DominantEmotion    string         `json:"dominant_emotion,omitempty"`
	RuminationScore    float64        `json:"rumination_score"`
}

const patternWindow = 14

// AnalyzePatterns scores how persistently the dominant emotion recurs
// across recent completed sessions. The rumination score is the recurrence
// share of the dominant emotion weighted by its average intensity, on a
// 0-10 scale.
func (s *Service) AnalyzePatterns(ctx context.Context, userID string) (PatternReport, error) {
	sessions, err := s.store.RecentSessions(ctx, userID, patternWindow)
	if err != nil {
		return PatternReport{}, err
	}

	report := PatternReport{
		UserID:             userID,
		SessionsAnalyzed:   len(sessions),
		EmotionFrequencies: make(map[string]int),
	}
	if len(sessions) == 0 {
		return report, nil
	}

	intensitySums := make(map[string]int)
	for _, session := range sessions {
		if session.PrimaryEmotion == "" {
			continue
		}
		report.EmotionFrequencies[session.PrimaryEmotion]++
		if session.Intensity != nil {
			intensitySums[session.PrimaryEmotion] += *session.Intensity
		} else {
			intensitySums[session.PrimaryEmotion] += 5
		}
	}

	dominant := ""
	best := 0
	// Deterministic tie-break on the label keeps the report stable.
	labels := make([]string, 0, len(report.EmotionFrequencies))
	for label := range report.EmotionFrequencies {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if report.EmotionFrequencies[label] > best {
			best = report.EmotionFrequencies[label]
			dominant = label
		}
	}
	if dominant == "" {
		return report, nil
	}

	avgIntensity := float64(intensitySums[dominant]) / float64(best)
	share := float64(best) / float64(len(sessions))
	report.DominantEmotion = dominant
	report.RuminationScore = math.Round(share*avgIntensity*10) / 10

	log.Printf("[insight] analyzed %d sessions for user=%s (dominant=%s rumination=%.1f)",
		report.SessionsAnalyzed, userID, dominant, report.RuminationScore)
	return report, nil
}

// WeeklyReport is the insight writer's output.
type WeeklyReport struct {
	UserID           string `json:"user_id"`
	SessionsAnalyzed int    `json:"sessions_analyzed"`
	FullSummary      string `json:"full_summary,omitempty"`
	Message          string `json:"message,omitempty"`
	GeneratedAt      string `json:"generated_at"`
}

const weeklyWindow = 7

// GenerateWeekly writes the weekly insight from recent completed sessions.
func (s *Service) GenerateWeekly(ctx context.Context, userID string) (WeeklyReport, error) {
	sessions, err := s.store.RecentSessions(ctx, userID, weeklyWindow)
	if err != nil {
		return WeeklyReport{}, err
	}

	report := WeeklyReport{
		UserID:           userID,
		SessionsAnalyzed: len(sessions),
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	if len(sessions) == 0 {
		report.Message = "No completed check-ins yet this week. Come back after your next session."
		return report, nil
	}

	digest := buildDigest(sessions)

	if s.Enabled() {
		invokeCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		msg, err := s.writer.Invoke(invokeCtx, map[string]any{"digest": digest})
		if err != nil {
			log.Printf("[insight] writer invoke failed, using fallback: %v", err)
		} else if msg != nil && strings.TrimSpace(msg.Content) != "" {
			report.FullSummary = strings.TrimSpace(msg.Content)
			return report, nil
		}
	}

	report.FullSummary = fallbackSummary(sessions)
	return report, nil
}

func buildDigest(sessions []journalmodel.Session) string {
	var builder strings.Builder
	for _, session := range sessions {
		builder.WriteString(session.Date)
		if session.PrimaryEmotion != "" {
			builder.WriteString(": ")
			builder.WriteString(session.PrimaryEmotion)
			if session.Intensity != nil {
				builder.WriteString(fmt.Sprintf(" (intensity %d/10)", *session.Intensity))
			}
		}
		if session.Summary != "" {
			builder.WriteString(" - ")
			builder.WriteString(session.Summary)
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

func fallbackSummary(sessions []journalmodel.Session) string {
	emotions := make([]string, 0, len(sessions))
	seen := make(map[string]bool)
	for _, session := range sessions {
		if session.PrimaryEmotion != "" && !seen[session.PrimaryEmotion] {
			seen[session.PrimaryEmotion] = true
			emotions = append(emotions, session.PrimaryEmotion)
		}
	}

	text := fmt.Sprintf("You checked in %d time(s) this week. ", len(sessions))
	if len(emotions) > 0 {
		text += fmt.Sprintf("The feelings that came up most were: %s. ", strings.Join(emotions, ", "))
	}
	text += "Showing up to notice your feelings is itself progress - keep going at your own pace."
	return text
}
