package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"floor-planner/internal/api"
	"floor-planner/internal/layout"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Start the route planning HTTP server",
		GroupID: "system",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := a.planner.Graph()

			if a.cfg.Snapshot != "" {
				if err := layout.Save(g, a.cfg.Snapshot); err != nil {
					return err
				}
				slog.Info("layout snapshot written", "path", a.cfg.Snapshot)
			}

			httpServer := &http.Server{
				Addr:              a.cfg.HTTPAddr,
				Handler:           api.NewServer(a.planner).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("HTTP server listening", "addr", a.cfg.HTTPAddr, "nodes", g.Len(), "edges", len(g.Edges()))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
				slog.Info("received signal, shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP server shutdown error", "err", err)
			}
			slog.Info("shutdown complete")
			return nil
		},
	}
}
