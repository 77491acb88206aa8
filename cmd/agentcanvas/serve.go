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

	"github.com/soochol/agentcanvas/internal/agentapi"
	"github.com/soochol/agentcanvas/internal/api"
	"github.com/soochol/agentcanvas/internal/canvas"
	"github.com/soochol/agentcanvas/internal/config"
	"github.com/soochol/agentcanvas/internal/db"
	"github.com/soochol/agentcanvas/internal/repository"
	"github.com/soochol/agentcanvas/internal/services"
	"github.com/soochol/agentcanvas/internal/storage"
	"github.com/soochol/agentcanvas/internal/templates"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDefault()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func newClient(cfg *config.Config) *agentapi.Client {
	return agentapi.NewClient(
		agentapi.WithBaseURL(cfg.API.BaseURL),
		agentapi.WithTimeout(cfg.API.Timeout),
		agentapi.WithRateLimit(cfg.API.Rate, cfg.API.Burst),
	)
}

func serve(ctx context.Context, cfg *config.Config) error {
	var canvasRepo repository.CanvasRepository = repository.NewMemoryCanvasRepository()
	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		canvasRepo = repository.NewPersistentCanvasRepository(repository.NewMemoryCanvasRepository(), database)
		slog.Info("saved canvases in postgres")
	} else {
		slog.Info("saved canvases in memory")
	}

	uploads, err := storage.NewLocal(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("uploads: %w", err)
	}
	catalog, err := templates.Load()
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	client := newClient(cfg)

	canvases := services.NewCanvasService(canvasRepo, client, canvas.NewEventBus(), catalog,
		services.WithUploads(uploads),
		services.WithPreviewLimit(cfg.Uploads.PreviewLimit),
	)
	srv := api.NewServer(
		canvases,
		services.NewDashboardService(client, cfg.Dashboard.Concurrency),
		services.NewMarketplaceService(catalog, client),
		services.NewAgentService(client),
	)
	srv.SetAllowedOrigins(cfg.Server.AllowedOrigins)
	if cfg.Server.WebDir != "" {
		srv.SetRenderer(os.DirFS(cfg.Server.WebDir))
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("starting agentcanvas server", "addr", httpServer.Addr, "agent_api", cfg.API.BaseURL)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
