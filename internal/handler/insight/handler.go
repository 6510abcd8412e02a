package insight

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	insightservice "github.com/potentiacredential-cmd/listentbh/internal/service/insight"
	"github.com/potentiacredential-cmd/listentbh/pkg/utils"
)

const defaultUserID = "default_user"

// Handler exposes the pattern-analysis and weekly-insight endpoints.
type Handler struct {
	svc *insightservice.Service
}

// New creates the insight handler.
func New(svc *insightservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the analysis routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/patterns/analyze", h.handleAnalyze)
	r.Post("/insights/generate", h.handleGenerate)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	userID := decodeUserID(r)

	report, err := h.svc.AnalyzePatterns(r.Context(), userID)
	if err != nil {
		log.Printf("[insight] pattern analysis failed for user=%s: %v", userID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to analyze patterns")
		return
	}

	utils.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID := decodeUserID(r)

	report, err := h.svc.GenerateWeekly(r.Context(), userID)
	if err != nil {
		log.Printf("[insight] weekly insight failed for user=%s: %v", userID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate insights")
		return
	}

	utils.RespondJSON(w, http.StatusOK, report)
}

func decodeUserID(r *http.Request) string {
	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.UserID == "" {
		return defaultUserID
	}
	return payload.UserID
}
