package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cloudsketch/internal/handler"
	"cloudsketch/internal/hub"
	"cloudsketch/internal/repository/sqlite"
	"cloudsketch/internal/service"
	"cloudsketch/internal/watcher"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var addr, dbPath, watchPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if dbPath != "" {
				a.cfg.Database.Path = dbPath
			}
			if watchPath != "" {
				a.cfg.Watch.Path = watchPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	cmd.Flags().StringVar(&watchPath, "watch", "", "sketch file to import on start and on change")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	log.Info().Msg("Starting cloudsketch server")

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()
	log.Info().Str("path", cfg.Database.Path).Msg("Database opened")

	scorer, timeout, err := a.newScorer("")
	if err != nil {
		return err
	}

	eventBus := service.NewEventBus()

	sseHub := hub.New()
	go sseHub.Run(ctx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(event)
			case <-ctx.Done():
				return
			}
		}
	}()

	svc := service.NewGraphService(repo, eventBus, service.Config{
		Topology:      cfg.TopologyOptions(),
		HistoryLimit:  cfg.History.Limit,
		Scorer:        scorer,
		ScorerTimeout: timeout,
	})
	if err := svc.Restore(ctx); err != nil {
		return err
	}

	if cfg.Watch.Path != "" {
		go func() {
			err := watcher.Sync(ctx, cfg.Watch.Path, svc, cfg.Watch.Debounce.Duration())
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Str("path", cfg.Watch.Path).Msg("File watcher stopped")
			}
		}()
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.NewRouter(handler.NewGraphHandler(svc), sseHub, cfg.Server.CORSOrigin),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("scorer", cfg.Analysis.Scorer).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
	return nil
}
