package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subclock/internal/httpapi"
	"github.com/mgpai22/subclock/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parser and playback sessions over HTTP",
	Long: `Start an HTTP server exposing the subtitle parser and playback sessions.

Endpoints:
  POST   /api/parse                  parse an uploaded .srt (field "srtFile")
  GET    /api/sessions               list sessions
  POST   /api/sessions               create a session from an uploaded .srt
  GET    /api/sessions/{id}          current snapshot
  DELETE /api/sessions/{id}          drop a session
  GET    /api/sessions/{id}/cues     loaded cues
  POST   /api/sessions/{id}/play     start the clock
  POST   /api/sessions/{id}/pause    freeze the clock
  POST   /api/sessions/{id}/seek     jump to {"ms": N}
  GET    /api/sessions/{id}/ws       websocket snapshot stream and controls

Examples:
  subclock serve
  subclock serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().
		String("addr", "", "Listen address (default :8080)")
	serveCmd.Flags().
		Duration("tick", 0, "Websocket push interval (default 100ms)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := session.NewRegistry(session.WithRegistryLogger(logger))
	srv := httpapi.NewServer(registry,
		httpapi.WithLogger(logger),
		httpapi.WithServerConfig(cfg.Server),
		httpapi.WithTick(cfg.Player.Tick),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Server.Addr)
	}()

	logger.Infow("Server listening",
		"addr", cfg.Server.Addr,
		"max_upload_bytes", cfg.Server.MaxUploadBytes,
		"config", settings.ConfigFileUsed(),
	)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infow("Shutting down", "sessions", registry.Len())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
