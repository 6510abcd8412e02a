// Package replay streams the latest assistant completion of a session back
// to the client as paced chunk frames, honoring each chunk's typing delay
// and inter-message pause so the transcript replays with human cadence.
package replay

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	journalmodel "github.com/potentiacredential-cmd/listentbh/internal/model/journal"
	"github.com/potentiacredential-cmd/listentbh/internal/pacing"
	journalservice "github.com/potentiacredential-cmd/listentbh/internal/service/journal"
	"github.com/potentiacredential-cmd/listentbh/pkg/utils"
)

// Handler replays paced chunks over WebSocket or SSE.
type Handler struct {
	journalSvc *journalservice.Service
	chunker    *pacing.Chunker
	upgrader   websocket.Upgrader
}

// New creates the replay handler. The sampler feeds the chunker so replays
// get fresh timing on every run while the content split stays stable.
func New(journalSvc *journalservice.Service, sampler pacing.Sampler) *Handler {
	return &Handler{
		journalSvc: journalSvc,
		chunker:    pacing.NewChunker(sampler),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes mounts the replay routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/replay/{sessionID}", h.handleWebSocket)
	r.Get("/replay/{sessionID}/events", h.handleSSE)
}

// Frame is one replayed chunk on the wire.
type Frame struct {
	Event       string `json:"event"`
	Content     string `json:"content,omitempty"`
	TypingDelay int    `json:"typing_delay,omitempty"`
	PauseAfter  int    `json:"pause_after,omitempty"`
	Index       int    `json:"index"`
	Final       bool   `json:"final,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (h *Handler) loadChunks(ctx context.Context, sessionID string) ([]journalmodel.Chunk, error) {
	session, err := h.journalSvc.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i := len(session.Messages) - 1; i >= 0; i-- {
		if session.Messages[i].Role == journalmodel.RoleAssistant {
			return h.chunker.Chunk(session.Messages[i].Content), nil
		}
	}
	return nil, nil
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	chunks, err := h.loadChunks(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[replay] websocket upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	log.Printf("[replay] websocket replay for session=%s (%d chunks)", sessionID, len(chunks))

	send := func(frame Frame) error {
		return conn.WriteJSON(frame)
	}
	if err := h.replay(r.Context(), chunks, send); err != nil {
		log.Printf("[replay] websocket replay aborted for session=%s: %v", sessionID, err)
		return
	}

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	chunks, err := h.loadChunks(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.SetupSSEHeaders(w)
	log.Printf("[replay] sse replay for session=%s (%d chunks)", sessionID, len(chunks))

	send := func(frame Frame) error {
		utils.SendSSEChunk(w, flusher, frame)
		return nil
	}
	if err := h.replay(r.Context(), chunks, send); err != nil {
		log.Printf("[replay] sse replay aborted for session=%s: %v", sessionID, err)
	}
}

// replay pushes chunk frames with the simulated delays. An exhausted
// context (client gone) stops the replay between sleeps.
func (h *Handler) replay(ctx context.Context, chunks []journalmodel.Chunk, send func(Frame) error) error {
	if len(chunks) == 0 {
		return send(Frame{Event: "empty", Final: true})
	}

	for i, chunk := range chunks {
		if err := sleepFor(ctx, chunk.TypingDelay); err != nil {
			return err
		}

		frame := Frame{
			Event:       "chunk",
			Content:     chunk.Content,
			TypingDelay: chunk.TypingDelay,
			PauseAfter:  chunk.PauseAfter,
			Index:       i,
			Final:       i == len(chunks)-1,
		}
		if err := send(frame); err != nil {
			return err
		}

		if err := sleepFor(ctx, chunk.PauseAfter); err != nil {
			return err
		}
	}
	return nil
}

func sleepFor(ctx context.Context, ms int) error {
	if ms <= 0 {
		return nil
	}
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
