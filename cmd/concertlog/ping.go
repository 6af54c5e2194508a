package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"concertlog/internal/keepalive"
)

var (
	pingURL     string
	pingTimeout time.Duration
	pingSkipDB  bool
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Probe the database and/or a running API",
	Long: `Runs one keep-alive probe: a lightweight query against the concerts table
and, with --url, a GET against the API health endpoint. Exits non-zero when
any probe fails. Meant to be scheduled so a hosted database is never paused
for inactivity.`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	pingCmd.Flags().StringVar(&pingURL, "url", "", "health endpoint to GET, e.g. https://example.com/health")
	pingCmd.Flags().DurationVar(&pingTimeout, "timeout", 15*time.Second, "timeout per probe")
	pingCmd.Flags().BoolVar(&pingSkipDB, "skip-db", false, "only probe --url")
}

func runPing(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var targets []keepalive.Target
	if !pingSkipDB {
		b, closeBackend, err := openBackend(ctx, false)
		if err != nil {
			return err
		}
		defer closeBackend()
		targets = append(targets, keepalive.Target{Name: "database", Pinger: b})
	}
	if pingURL != "" {
		targets = append(targets, keepalive.Target{
			Name:   "api",
			Pinger: keepalive.HTTPPinger{URL: pingURL, Client: &http.Client{Timeout: pingTimeout}},
		})
	}
	if len(targets) == 0 {
		return errors.New("nothing to probe: pass --url or drop --skip-db")
	}

	start := time.Now()
	if err := keepalive.ProbeAll(ctx, pingTimeout, targets...); err != nil {
		return fmt.Errorf("keep-alive failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "keep-alive ok (%d probes, %s)\n", len(targets), time.Since(start).Round(time.Millisecond))
	return nil
}
