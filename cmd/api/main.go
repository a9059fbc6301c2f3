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

	"github.com/dominators/sagara/backend/internal/config"
	"github.com/dominators/sagara/backend/internal/handler"
	"github.com/dominators/sagara/backend/internal/model/action"
	"github.com/dominators/sagara/backend/internal/service/ai"
	"github.com/dominators/sagara/backend/internal/service/chat"
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

	actions := action.NewMemoryStore(action.Seed())

	randFactory := chat.DefaultRand()
	if cfg.Copilot.Seed != nil {
		randFactory = chat.SeededRand(*cfg.Copilot.Seed)
		log.Printf("copilot randomness seeded with %d", *cfg.Copilot.Seed)
	}

	chatModel, err := newChatModel(ctx, cfg, randFactory)
	if err != nil {
		log.Fatalf("failed to create copilot model: %v", err)
	}

	copilot, err := ai.NewService(ctx, chatModel, actions.List(), cfg.Copilot.StreamResponse)
	if err != nil {
		log.Fatalf("failed to initialize copilot service: %v", err)
	}

	chatService := chat.NewService(copilot, actions, randFactory)
	chatService.StartJanitor(ctx, cfg.Session.SweepInterval, cfg.Session.IdleTTL)

	router := handler.NewRouter(actions, chatService, cfg.Server.AllowedOrigins)

	startServer(ctx, cfg.Server, router)
}

func newChatModel(ctx context.Context, cfg *config.Config, randFactory chat.RandFactory) (model.ChatModel, error) {
	if cfg.Copilot.LLMEnabled {
		log.Printf("copilot using Ark model %s", cfg.AI.Model)
		return cfg.AI.NewChatModel(ctx)
	}
	log.Println("copilot using template replies")
	return ai.NewTemplateModel(randFactory()), nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("SĀGARA copilot backend listening on %s", addr)
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
