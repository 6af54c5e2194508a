package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"concertlog/internal/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the initial concerts into an empty log",
	Long: `Inserts the bundled concerts (or the ones in --file) when the log is
empty. A log that already has concerts is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "JSON seed file instead of the bundled data")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	records, err := seed.Load(seedFile)
	if err != nil {
		return err
	}

	b, closeBackend, err := openBackend(ctx, false)
	if err != nil {
		return err
	}
	defer closeBackend()

	svc, err := newConcertService(b)
	if err != nil {
		return err
	}
	n, err := svc.Seed(ctx, records)
	if err != nil {
		return err
	}

	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "log already has concerts, nothing to do")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "inserted %d concerts\n", n)
	return nil
}
