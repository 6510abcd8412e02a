package journal

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	journalservice "github.com/potentiacredential-cmd/listentbh/internal/service/journal"
	"github.com/potentiacredential-cmd/listentbh/pkg/utils"
)

const defaultUserID = "default_user"

// Handler exposes the daily check-in endpoints.
type Handler struct {
	svc *journalservice.Service
}

// New creates the check-in handler.
func New(svc *journalservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the check-in routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/session/start", h.handleStart)
	r.Post("/chat/message", h.handleMessage)
	r.Post("/chat/session/complete", h.handleComplete)
	r.Get("/sessions/recent", h.handleRecent)
	r.Get("/emotions/history", h.handleEmotionHistory)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" {
		payload.UserID = defaultUserID
	}

	result, err := h.svc.Start(r.Context(), payload.UserID)
	if err != nil {
		log.Printf("[journal] start failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
		UserID    string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" || payload.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}

	result, err := h.svc.SendMessage(r.Context(), payload.SessionID, payload.Message)
	switch {
	case errors.Is(err, journalservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, journalservice.ErrAIUnavailable):
		utils.RespondError(w, http.StatusServiceUnavailable, "ai service unavailable")
	case err != nil:
		log.Printf("[journal] message failed for session=%s: %v", payload.SessionID, err)
		utils.RespondError(w, http.StatusBadGateway, "failed to process message")
	default:
		utils.RespondJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
		UserID    string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	summary, err := h.svc.Complete(r.Context(), payload.SessionID)
	switch {
	case errors.Is(err, journalservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "session not found")
	case err != nil:
		log.Printf("[journal] complete failed for session=%s: %v", payload.SessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to complete session")
	default:
		utils.RespondJSON(w, http.StatusOK, summary)
	}
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	userID := queryOrDefault(r, "user_id", defaultUserID)
	limit := queryInt(r, "limit", 7)

	sessions, err := h.svc.Recent(r.Context(), userID, limit)
	if err != nil {
		log.Printf("[journal] recent sessions failed for user=%s: %v", userID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch sessions")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleEmotionHistory(w http.ResponseWriter, r *http.Request) {
	userID := queryOrDefault(r, "user_id", defaultUserID)
	days := queryInt(r, "days", 14)

	entries, err := h.svc.EmotionHistory(r.Context(), userID, days)
	if err != nil {
		log.Printf("[journal] emotion history failed for user=%s: %v", userID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch emotion history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, entries)
}

func queryOrDefault(r *http.Request, key, fallback string) string {
	if value := r.URL.Query().Get(key); value != "" {
		return value
	}
	return fallback
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
