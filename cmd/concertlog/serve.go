package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"concertlog/internal/app/concerts"
	"concertlog/internal/app/users"
	"concertlog/internal/autofill"
	"concertlog/internal/http/middleware"
	"concertlog/internal/httpapi"
	"concertlog/internal/keepalive"
	"concertlog/internal/seed"
	"concertlog/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Runs the JSON API until interrupted. Without a database the log lives in
memory and starts from the bundled concerts.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, closeBackend, err := openBackend(ctx, true)
	if err != nil {
		return err
	}
	defer closeBackend()

	concertSvc, err := newConcertService(b)
	if err != nil {
		return err
	}
	userSvc := newUserService(b)

	if err := bootstrap(ctx, concertSvc, userSvc); err != nil {
		return err
	}

	opts := httpapi.Options{
		Logger:      logger,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		Limiter:     middleware.NewRateLimiter(cfg.Autofill.RateLimit, cfg.Autofill.Burst),
	}
	if cfg.Autofill.Enabled() {
		client, err := autofill.New(ctx, autofill.Config{
			APIKey:  cfg.Autofill.APIKey,
			Model:   cfg.Autofill.Model,
			BaseURL: cfg.Autofill.BaseURL,
		})
		if err != nil {
			return err
		}
		opts.Extractor = client
	} else {
		logger.Warn("GEMINI_API_KEY not set, autofill disabled")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           httpapi.New(concertSvc, userSvc, opts).Routes(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Zerolog().Info().Str("addr", server.Addr).Msg("API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})
	if cfg.Keepalive.Interval > 0 {
		g.Go(func() error {
			keepalive.Run(gctx, logger.With("keepalive"), cfg.Keepalive.Interval, 10*time.Second,
				keepalive.Target{Name: "database", Pinger: b})
			return nil
		})
	}

	return g.Wait()
}

// bootstrap seeds an empty log and makes sure the configured owner can sign in.
func bootstrap(ctx context.Context, concertSvc concerts.Service, userSvc users.Service) error {
	if cfg.Seed.OnEmpty || cfg.Offline() {
		records, err := seed.Records()
		if err != nil {
			return err
		}
		n, err := concertSvc.Seed(ctx, records)
		if err != nil {
			return fmt.Errorf("seed concerts: %w", err)
		}
		if n > 0 {
			logger.Zerolog().Info().Int("count", n).Msg("seeded concert log")
		}
	}

	if cfg.Security.OwnerEmail == "" {
		return nil
	}
	_, err := userSvc.Register(ctx, cfg.Security.OwnerEmail, cfg.Security.OwnerPassword)
	switch {
	case err == nil:
		logger.Zerolog().Info().Str("email", cfg.Security.OwnerEmail).Msg("created owner account")
	case errors.Is(err, store.ErrUserExists):
	default:
		return fmt.Errorf("bootstrap owner: %w", err)
	}
	return nil
}
