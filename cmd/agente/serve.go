package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tecsup/agente/internal/agent"
	"github.com/tecsup/agente/internal/api"
	"github.com/tecsup/agente/internal/config"
	"github.com/tecsup/agente/internal/llm"
	"github.com/tecsup/agente/internal/repo"
	"github.com/tecsup/agente/internal/retention"
	"github.com/tecsup/agente/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn("closing store", "error", err)
		}
	}()

	repos := repo.New(s, cfg.Tables())

	completer, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("creating completion client: %w", err)
	}

	svc := agent.NewService(repos, completer, agent.Limits{
		Memoria:   cfg.LimiteMemoria,
		Servicios: cfg.LimiteServicios,
		Tareas:    cfg.LimiteTareas,
	}, logger)

	handler := api.NewHandler(api.Deps{
		Repos:        repos,
		Agent:        svc,
		Tables:       cfg.Tables(),
		LimiteTareas: cfg.LimiteTareas,
		Log:          logger,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	worker := retention.NewWorker(repos.Users, repos.Interactions, cfg.RetentionKeep, cfg.RetentionInterval, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("agente listening", "addr", cfg.Addr, "model", cfg.GeminiModel)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
