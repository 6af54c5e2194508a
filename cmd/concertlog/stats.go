package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"concertlog/internal/pipeline"
	"concertlog/internal/seed"
)

var statsTop int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the spending and attendance summary",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", pipeline.DefaultTopArtists, "number of most seen artists to list")
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	b, closeBackend, err := openBackend(ctx, true)
	if err != nil {
		return err
	}
	defer closeBackend()

	svc, err := newConcertService(b)
	if err != nil {
		return err
	}
	if cfg.Offline() {
		records, err := seed.Records()
		if err != nil {
			return err
		}
		if _, err := svc.Seed(ctx, records); err != nil {
			return err
		}
	}

	stats, err := svc.Stats(ctx, statsTop)
	if err != nil {
		return err
	}
	return printStats(cmd.OutOrStdout(), stats)
}

// euro renders an amount the Italian way: "€ 2.962,51".
func euro(v float64) string {
	return "€ " + humanize.FormatFloat("#.###,##", v)
}

// count groups thousands with dots to match euro.
func count(n int) string {
	return humanize.FormatInteger("#.###,", n)
}

func printStats(out io.Writer, s pipeline.Statistics) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Events\t%s\n", count(s.TotalEvents))
	fmt.Fprintf(tw, "Total spent\t%s\n", euro(s.TotalSpent))
	fmt.Fprintf(tw, "Average cost\t%s\n", euro(s.AverageCost))
	fmt.Fprintf(tw, "Unique artists\t%s\n", count(s.UniqueArtistCount))

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Year\tEvents\tSpent")
	for _, y := range s.SpendByYear {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", strconv.Itoa(y.Year), count(y.Count), euro(y.Spent))
	}

	if len(s.TopArtists) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Most seen\tTimes")
		for i, a := range s.TopArtists {
			fmt.Fprintf(tw, "%d. %s\t%s\n", i+1, a.Artist, count(a.Count))
		}
	}
	return tw.Flush()
}
