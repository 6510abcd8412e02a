package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	journalmodel "github.com/potentiacredential-cmd/listentbh/internal/model/journal"
	insightservice "github.com/potentiacredential-cmd/listentbh/internal/service/insight"
	"github.com/potentiacredential-cmd/listentbh/internal/storage"
)

func newTestRouter(t *testing.T) (chi.Router, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc, err := insightservice.NewService(context.Background(), store, nil, insightservice.Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r, store
}

func seedCompletedSession(t *testing.T, store *storage.Store, userID, emotion string, intensity int) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	session := journalmodel.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      now.Format("2006-01-02"),
		CreatedAt: now,
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := store.CompleteSession(ctx, session.ID, "a summary", emotion, &intensity); err != nil {
		t.Fatalf("complete session: %v", err)
	}
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	seedCompletedSession(t, store, "user-1", "anxiety", 7)
	seedCompletedSession(t, store, "user-1", "anxiety", 7)

	rec := postJSON(t, router, "/patterns/analyze", map[string]string{"user_id": "user-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report struct {
		UserID           string  `json:"user_id"`
		SessionsAnalyzed int     `json:"sessions_analyzed"`
		DominantEmotion  string  `json:"dominant_emotion"`
		RuminationScore  float64 `json:"rumination_score"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.UserID != "user-1" || report.SessionsAnalyzed != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.DominantEmotion != "anxiety" || report.RuminationScore != 7 {
		t.Fatalf("unexpected analysis: %+v", report)
	}
}

func TestAnalyzeDefaultsUser(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/patterns/analyze", map[string]string{})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var report struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.UserID != "default_user" {
		t.Fatalf("expected default user, got %q", report.UserID)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	seedCompletedSession(t, store, "user-1", "sadness", 6)

	rec := postJSON(t, router, "/insights/generate", map[string]string{"user_id": "user-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report struct {
		SessionsAnalyzed int    `json:"sessions_analyzed"`
		FullSummary      string `json:"full_summary"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.SessionsAnalyzed != 1 || report.FullSummary == "" {
		t.Fatalf("unexpected report: %+v", report)
	}
}
