package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	insightHandler "github.com/potentiacredential-cmd/listentbh/internal/handler/insight"
	journalHandler "github.com/potentiacredential-cmd/listentbh/internal/handler/journal"
	memoryHandler "github.com/potentiacredential-cmd/listentbh/internal/handler/memory"
	replayHandler "github.com/potentiacredential-cmd/listentbh/internal/handler/replay"
	middlewarePkg "github.com/potentiacredential-cmd/listentbh/internal/middleware"
	"github.com/potentiacredential-cmd/listentbh/internal/pacing"
	insightService "github.com/potentiacredential-cmd/listentbh/internal/service/insight"
	journalService "github.com/potentiacredential-cmd/listentbh/internal/service/journal"
	memoryService "github.com/potentiacredential-cmd/listentbh/internal/service/memory"
	"github.com/potentiacredential-cmd/listentbh/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(
	journalSvc *journalService.Service,
	memorySvc *memoryService.Service,
	insightSvc *insightService.Service,
	sampler pacing.Sampler,
	authToken string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.BearerAuth(authToken))

		api.Get("/", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "listentbh API"})
		})

		journalHandler.New(journalSvc).RegisterRoutes(api)
		memoryHandler.New(memorySvc).RegisterRoutes(api)
		insightHandler.New(insightSvc).RegisterRoutes(api)
		replayHandler.New(journalSvc, sampler).RegisterRoutes(api)
	})

	return r
}
