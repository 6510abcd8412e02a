package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/potentiacredential-cmd/listentbh/internal/analysis/phase"
	"github.com/potentiacredential-cmd/listentbh/internal/config"
	"github.com/potentiacredential-cmd/listentbh/internal/handler"
	agentmodel "github.com/potentiacredential-cmd/listentbh/internal/model/agent"
	"github.com/potentiacredential-cmd/listentbh/internal/pacing"
	"github.com/potentiacredential-cmd/listentbh/internal/service/ai"
	insightservice "github.com/potentiacredential-cmd/listentbh/internal/service/insight"
	journalservice "github.com/potentiacredential-cmd/listentbh/internal/service/journal"
	memoryservice "github.com/potentiacredential-cmd/listentbh/internal/service/memory"
	"github.com/potentiacredential-cmd/listentbh/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("warning: failed to close storage: %v", err)
		}
	}()

	agentStore := agentmodel.NewMemoryStore(agentmodel.Seed())
	sampler := pacing.NewSampler()

	// Initialize AI service
	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, agentStore, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - check the Ark model environment variables")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping AI initialization")
	}

	var journalResponder journalservice.Responder
	var memoryResponder memoryservice.Responder
	var chatModel model.ChatModel
	if aiService != nil {
		journalResponder = aiService
		memoryResponder = aiService
		chatModel = aiService.GetChatModel()
	}

	journalSvc := journalservice.NewService(store, journalResponder, sampler)
	memorySvc := memoryservice.NewService(store, memoryResponder, sampler, phase.KeywordDetector{})

	insightSvc, err := insightservice.NewService(ctx, store, chatModel, insightservice.Config{
		Enabled: chatModel != nil,
		Timeout: cfg.AI.RequestTimeout,
	})
	if err != nil {
		log.Fatalf("failed to initialize insight service: %v", err)
	}
	if insightSvc.Enabled() {
		log.Println("Insight writer enabled")
	} else {
		log.Println("Insight writer falling back to heuristics (no chat model)")
	}

	router := handler.NewRouter(journalSvc, memorySvc, insightSvc, sampler, cfg.Auth.Token)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("listentbh backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
