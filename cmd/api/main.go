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

	"github.com/joho/godotenv"

	"github.com/baristalabs/coffee/backend/internal/config"
	"github.com/baristalabs/coffee/backend/internal/handler"
	"github.com/baristalabs/coffee/backend/internal/service/backend"
	chatservice "github.com/baristalabs/coffee/backend/internal/service/chat"
	"github.com/baristalabs/coffee/backend/internal/service/quota"
	"github.com/baristalabs/coffee/backend/internal/store"
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

	// Stores back every collaborator the dispatch core consumes.
	conversations := store.NewMemoryConversationStore()
	projects := store.NewMemoryProjectStore()
	usageStore := store.NewMemoryUsageStore()
	accounts := store.NewMemoryAccountStore()

	guard := quota.NewGuard(usageStore)
	chatSvc := chatservice.NewService(conversations)

	// Primary coder backend. Constructed even without a token so the
	// missing-credential path exercises the fallback protocol.
	var coder backend.Gateway = backend.NewHuggingFace(cfg.HuggingFace)
	if cfg.HuggingFace.Enabled() {
		log.Printf("coder backend initialized with model %s", cfg.HuggingFace.Model)
	} else {
		log.Println("HF_TOKEN not configured, coder requests will fall back to the assistant")
	}

	var assistant backend.Gateway
	if cfg.Assistant.Enabled() {
		gw, err := backend.NewAssistant(ctx, cfg.Assistant)
		if err != nil {
			log.Printf("warning: failed to initialize assistant backend: %v", err)
			log.Println("continuing without the assistant, check the ARK_* environment variables")
		} else {
			assistant = gw
			log.Println("assistant backend initialized successfully")
		}
	} else {
		log.Println("assistant credentials not configured, skipping assistant initialization")
	}

	dispatcher := chatservice.NewDispatcher(coder, assistant, guard, conversations)

	router := handler.NewRouter(accounts, projects, chatSvc, dispatcher, guard)

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

	log.Printf("COFFEE backend listening on %s", addr)
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
