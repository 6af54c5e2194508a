// Command concertlog serves and maintains a personal concert log.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"concertlog/internal/config"
	"concertlog/internal/logging"
)

var (
	envFile string

	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "concertlog",
	Short: "Personal concert log backend",
	Long: `concertlog keeps a log of attended concerts: a JSON API with filtering,
statistics and AI-assisted autofill, plus maintenance commands for the
database behind it.

Configuration comes from the environment, optionally preloaded from an
env file (default config/local.env).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(envFile); err != nil {
			return err
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.New(logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		logging.SetGlobalLogger(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to preload (default config/local.env)")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, pingCmd, statsCmd, userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
