package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/steveyiyo/project-scheduling-backend/internal/config"
	"github.com/steveyiyo/project-scheduling-backend/internal/core/gemini"
	"github.com/steveyiyo/project-scheduling-backend/internal/core/llm"
	"github.com/steveyiyo/project-scheduling-backend/internal/core/openai"
	"github.com/steveyiyo/project-scheduling-backend/internal/core/project"
	"github.com/steveyiyo/project-scheduling-backend/internal/core/workflow"
	h "github.com/steveyiyo/project-scheduling-backend/internal/http"
	"github.com/steveyiyo/project-scheduling-backend/internal/logging"
	"github.com/steveyiyo/project-scheduling-backend/internal/repo/memory"
	"github.com/steveyiyo/project-scheduling-backend/internal/repo/mongodb"
	"github.com/steveyiyo/project-scheduling-backend/pkg/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, logCloser := logging.New(logging.Options{Level: cfg.LogLevel, Debug: cfg.Debug, File: cfg.LogFile})
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx := context.Background()

	completer, err := newCompleter(ctx, cfg, logger)
	if err != nil {
		logger.Error("llm client", "error", err)
		os.Exit(1)
	}

	var repo project.Repository
	switch cfg.Storage {
	case config.StorageMongo:
		mr, err := mongodb.Connect(ctx, cfg.MongoDBURL, cfg.DatabaseName)
		if err != nil {
			logger.Error("mongodb", "error", err)
			os.Exit(1)
		}
		defer mr.Close(context.Background())
		repo = mr
	default:
		repo = memory.NewProjectRepo()
	}

	hub := ws.NewHub()
	wf := workflow.New(completer, logger)
	svc := project.NewService(repo, wf, hub, cfg.LLMTimeout*time.Duration(len(wf.Stages())), logger)
	r := h.NewRouter(cfg, svc, hub, logger)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting http server",
			"addr", cfg.Addr(),
			"storage", repo.Name(),
			"llm_provider", cfg.LLMProvider,
			"debug", cfg.Debug)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Warn("cancelled running generations", "error", err)
	}
	logger.Info("shutdown complete")
}

func newCompleter(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm.Completer, error) {
	var c llm.Completer
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		g, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		c = g
	default:
		c = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.LLMTimeout, logger)
	}
	return llm.WithRetry(c, cfg.LLMMaxRetries, 300*time.Millisecond, logger), nil
}
