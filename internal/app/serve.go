package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"forecast-go/internal/api"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	cfg := a.Config
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(a.Handler(), cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Msgf("🚀 Starting forecast server on http://localhost:%s", cfg.Port)
	log.Info().Msgf("📡 CORS enabled for: %s", strings.Join(cfg.CORSOrigins, ", "))
	log.Info().Msgf("🤖 Advisor: %s", a.State.Advisor().Provider)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
