// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/matthewbaird/formforge/internal/config"
	"github.com/matthewbaird/formforge/internal/diagram"
	"github.com/matthewbaird/formforge/internal/handler"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Config holds server configuration.
type Config struct {
	Port    int
	Logger  zerolog.Logger
	Handler handler.Options
	Diagram diagram.Options
}

// FromConfig derives the server configuration from loaded settings.
func FromConfig(c config.Config, logger zerolog.Logger) Config {
	fmbOpts := c.FMBOptions()
	layouter := c.Layouter()
	return Config{
		Port:   c.Port,
		Logger: logger,
		Handler: handler.Options{
			Pipeline:      c.PipelineOptions(),
			FMB:           fmbOpts,
			LayoutTimeout: c.Layout.Timeout,
			Layouter:      layouter,
		},
		Diagram: diagram.Options{
			FMB:      fmbOpts,
			Layouter: layouter,
			Timeout:  c.Layout.Timeout,
		},
	}
}

// Router returns the HTTP handler with every route registered.
func Router(cfg Config) http.Handler {
	h := handler.New(cfg.Handler)
	ws := diagram.NewHandler(diagram.NewManager(), cfg.Diagram)

	r := chi.NewRouter()
	r.Use(handler.RequestID, handler.Logging(cfg.Logger), handler.Recovery)

	// Health check
	r.Get("/healthz", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/generate", h.Generate)
		r.Post("/coverage", h.Coverage)

		// --- Legacy forms ---
		r.Post("/fmb/parse", h.ParseFMB)
		r.Post("/fmb/spec", h.FMBSpec)
		r.Post("/fmb/fields", h.FMBFields)

		// --- ER diagram ---
		r.Post("/er", h.Diagram)
		r.Method(http.MethodGet, "/er/ws", ws)
	})
	return r
}

// Run starts the HTTP server on cfg.Port and serves until ctx is done.
func Run(ctx context.Context, cfg Config) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return Serve(ctx, ln, cfg)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, ln net.Listener, cfg Config) error {
	server := &http.Server{
		Handler:           Router(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return cfg.Logger.WithContext(ctx) },
	}

	errc := make(chan error, 1)
	go func() {
		cfg.Logger.Info().Str("addr", ln.Addr().String()).Msg("starting server")
		errc <- server.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	cfg.Logger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
