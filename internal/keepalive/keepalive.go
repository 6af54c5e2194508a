// Package keepalive periodically probes the backing services so a hosted
// database on a free tier is not paused for inactivity.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"concertlog/internal/logging"
)

// Pinger is anything that can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Target is a named probe.
type Target struct {
	Name   string
	Pinger Pinger
}

// ProbeAll pings every target concurrently, each bounded by timeout, and
// returns the first failure.
func ProbeAll(ctx context.Context, timeout time.Duration, targets ...Target) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := t.Pinger.Ping(pctx); err != nil {
				return fmt.Errorf("%s: %w", t.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Run probes targets every interval until ctx is canceled. Failures are
// logged and never stop the loop.
func Run(ctx context.Context, logger *logging.Logger, interval, timeout time.Duration, targets ...Target) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := ProbeAll(ctx, timeout, targets...); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Zerolog().Warn().Err(err).Msg("keep-alive probe failed")
				continue
			}
			logger.Zerolog().Debug().Dur("duration_ms", time.Since(start)).Msg("keep-alive probe ok")
		}
	}
}

// HTTPPinger checks that a URL answers with a 2xx status.
type HTTPPinger struct {
	URL    string
	Client *http.Client
}

// Ping issues a GET against p.URL.
func (p HTTPPinger) Ping(ctx context.Context) error {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", p.URL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("get %s: unexpected status %d", p.URL, resp.StatusCode)
	}
	return nil
}
