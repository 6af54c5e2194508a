package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"concertlog/internal/app/concerts"
	"concertlog/internal/app/users"
	"concertlog/internal/concert"
	"concertlog/internal/store"
)

// backend is what the commands need from a store: both *store.Store and
// *store.Memory satisfy it.
type backend interface {
	concerts.Store
	users.Store
	Ping(ctx context.Context) error
}

// openDatabase establishes a database connection and retries until the instance responds.
func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	const (
		pingTimeout    = 5 * time.Second
		maxWait        = 30 * time.Second
		initialBackoff = 500 * time.Millisecond
		maxBackoff     = 5 * time.Second
	)

	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	var lastErr error

	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return db, nil
		}

		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}

		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping database: %w", lastErr)
}

// openBackend connects to Postgres, or falls back to an in-memory store when
// no database is configured and allowMemory is set. The returned func
// releases the connection.
func openBackend(ctx context.Context, allowMemory bool) (backend, func(), error) {
	if cfg.Offline() {
		if !allowMemory {
			return nil, nil, fmt.Errorf("DATABASE_URL (or DB_USER and DB_NAME) is required for this command")
		}
		logger.Warn("no database configured, using in-memory store")
		return store.NewMemory(), func() {}, nil
	}

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	return store.New(db), func() { _ = db.Close() }, nil
}

// normalizer loads the alias table configured by NORMALIZER_ALIASES_PATH, or
// the built-in one.
func normalizer() (*concert.Normalizer, error) {
	if cfg.Normalizer.AliasesPath == "" {
		return concert.DefaultNormalizer(), nil
	}
	aliases, err := concert.LoadAliases(cfg.Normalizer.AliasesPath)
	if err != nil {
		return nil, err
	}
	return concert.NewNormalizer(aliases), nil
}

func newConcertService(b backend) (concerts.Service, error) {
	norm, err := normalizer()
	if err != nil {
		return nil, err
	}
	return concerts.New(b, norm), nil
}

func newUserService(b backend) users.Service {
	return users.New(b, users.Config{
		Secret:      []byte(cfg.Security.JWTSecret),
		TTL:         cfg.Security.TokenTTL,
		RememberTTL: cfg.Security.RememberTokenTTL,
	})
}
