package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	journalmodel "github.com/potentiacredential-cmd/listentbh/internal/model/journal"
	memoryservice "github.com/potentiacredential-cmd/listentbh/internal/service/memory"
	"github.com/potentiacredential-cmd/listentbh/internal/storage"
)

type fixedSampler struct{}

func (fixedSampler) IntBetween(min, max int) int { return min }

type fakeResponder struct {
	reply string
}

func (f *fakeResponder) Reply(ctx context.Context, sessionID, agentID string, history []journalmodel.Message, userMessage string) (string, error) {
	return f.reply, nil
}

func newTestRouter(t *testing.T, reply string) chi.Router {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := memoryservice.NewService(store, &fakeResponder{reply: reply}, fixedSampler{}, nil)
	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r
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

func startSession(t *testing.T, router http.Handler, topic string) string {
	t.Helper()
	rec := postJSON(t, router, "/memory/start", map[string]string{
		"user_id":      "user-1",
		"memory_topic": topic,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("start failed with %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		SessionID string `json:"session_id"`
		Phase     string `json:"phase"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode start response: %v", err)
	}
	if result.Phase != "externalize" {
		t.Fatalf("expected externalize phase, got %q", result.Phase)
	}
	return result.SessionID
}

func TestStartRequiresTopic(t *testing.T) {
	router := newTestRouter(t, "ok")
	rec := postJSON(t, router, "/memory/start", map[string]string{"user_id": "user-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMessageEndpoint(t *testing.T) {
	router := newTestRouter(t, "Take a breath. Is there anything else?")
	sessionID := startSession(t, router, "the layoff")

	rec := postJSON(t, router, "/memory/message", map[string]string{
		"session_id": sessionID,
		"message":    "it still stings",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Phase               string `json:"phase"`
		ExternalizeComplete bool   `json:"externalize_complete"`
		Messages            []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Phase != "externalize" {
		t.Fatalf("unexpected phase: %q", result.Phase)
	}
	if !result.ExternalizeComplete {
		t.Fatal("expected externalize completion signal")
	}
	if len(result.Messages) == 0 {
		t.Fatal("expected paced messages")
	}
}

func TestMessageUnknownSession(t *testing.T) {
	router := newTestRouter(t, "ok")
	rec := postJSON(t, router, "/memory/message", map[string]string{
		"session_id": "missing",
		"message":    "hi",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdatePhaseEndpoint(t *testing.T) {
	router := newTestRouter(t, "ok")
	sessionID := startSession(t, router, "the breakup")

	rec := postJSON(t, router, "/memory/update-phase", map[string]any{
		"session_id": sessionID,
		"phase_data": map[string]any{
			"phase":         "reframe",
			"old_narrative": "I wasn't enough",
			"new_narrative": "We wanted different lives",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var session struct {
		Phase        string `json:"phase"`
		OldNarrative string `json:"old_narrative"`
		NewNarrative string `json:"new_narrative"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if session.Phase != "reframe" {
		t.Fatalf("phase not applied: %q", session.Phase)
	}
	if session.OldNarrative != "I wasn't enough" || session.NewNarrative != "We wanted different lives" {
		t.Fatalf("narratives not applied: %+v", session)
	}
}

func TestUpdatePhaseRejectsBackward(t *testing.T) {
	router := newTestRouter(t, "ok")
	sessionID := startSession(t, router, "the diagnosis")

	rec := postJSON(t, router, "/memory/update-phase", map[string]any{
		"session_id": sessionID,
		"phase_data": map[string]any{"phase": "release"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("forward transition failed: %d", rec.Code)
	}

	rec = postJSON(t, router, "/memory/update-phase", map[string]any{
		"session_id": sessionID,
		"phase_data": map[string]any{"phase": "externalize"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for backward transition, got %d", rec.Code)
	}
}

func TestUpdatePhaseUnknownSession(t *testing.T) {
	router := newTestRouter(t, "ok")
	rec := postJSON(t, router, "/memory/update-phase", map[string]any{
		"session_id": "missing",
		"phase_data": map[string]any{},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
