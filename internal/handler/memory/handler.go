package memory

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	memorymodel "github.com/potentiacredential-cmd/listentbh/internal/model/memory"
	memoryservice "github.com/potentiacredential-cmd/listentbh/internal/service/memory"
	"github.com/potentiacredential-cmd/listentbh/pkg/utils"
)

const defaultUserID = "default_user"

// Handler exposes the memory-reprocessing endpoints.
type Handler struct {
	svc *memoryservice.Service
}

// New creates the memory-processing handler.
func New(svc *memoryservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the memory-processing routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/memory/start", h.handleStart)
	r.Post("/memory/message", h.handleMessage)
	r.Post("/memory/update-phase", h.handleUpdatePhase)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID      string `json:"user_id"`
		MemoryTopic string `json:"memory_topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" {
		payload.UserID = defaultUserID
	}

	result, err := h.svc.Start(r.Context(), payload.UserID, payload.MemoryTopic)
	switch {
	case errors.Is(err, memoryservice.ErrTopicRequired):
		utils.RespondError(w, http.StatusBadRequest, "memory_topic is required")
	case err != nil:
		log.Printf("[memory] start failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to start memory session")
	default:
		utils.RespondJSON(w, http.StatusOK, result)
	}
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
	case errors.Is(err, memoryservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "memory session not found")
	case errors.Is(err, memoryservice.ErrAIUnavailable):
		utils.RespondError(w, http.StatusServiceUnavailable, "ai service unavailable")
	case err != nil:
		log.Printf("[memory] message failed for session=%s: %v", payload.SessionID, err)
		utils.RespondError(w, http.StatusBadGateway, "failed to process message")
	default:
		utils.RespondJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) handleUpdatePhase(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string                  `json:"session_id"`
		UserID    string                  `json:"user_id"`
		PhaseData memorymodel.PhaseUpdate `json:"phase_data"`
	}

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	session, err := h.svc.UpdatePhase(r.Context(), payload.SessionID, payload.PhaseData)
	switch {
	case errors.Is(err, memoryservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "memory session not found")
	case errors.Is(err, memoryservice.ErrInvalidPhase):
		utils.RespondError(w, http.StatusBadRequest, "invalid phase value")
	case err != nil:
		log.Printf("[memory] phase update failed for session=%s: %v", payload.SessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to update phase")
	default:
		utils.RespondJSON(w, http.StatusOK, session)
	}
}
