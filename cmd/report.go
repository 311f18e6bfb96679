package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/godoof/management/stats"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch the main timelines of every search engine at once",
	Long: `Fetch the searches, clicks, checkouts and inits timelines for each search
engine concurrently and print them as one JSON document.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var reportConcurrency int

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&sf.from, "from", "", "start date")
	reportCmd.Flags().StringVar(&sf.to, "to", "", "end date")
	reportCmd.Flags().StringSliceVar(&sf.hashids, "hashid", nil, "search engine hashid (repeatable)")
	reportCmd.Flags().StringVar(&sf.tz, "tz", "", "time zone")
	reportCmd.Flags().StringVar(&sf.interval, "interval", "", "aggregation interval")
	reportCmd.Flags().IntVar(&reportConcurrency, "concurrency", 0, "parallel requests (default from config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	hashids := sf.hashids
	if len(hashids) == 0 {
		hashids = cfg.Doofinder.HashIDs
	}
	rng, err := buildRange(sf.from, sf.to, hashids)
	if err != nil {
		return err
	}

	concurrency := cfg.Report.Concurrency
	if reportConcurrency > 0 {
		concurrency = reportConcurrency
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	logger.Info().
		Int("engines", len(hashids)).
		Int("concurrency", concurrency).
		Msg("Fetching report")

	overviews, err := stats.NewClient(client).Overview(cmd.Context(), stats.OverviewOptions{
		Range:       rng,
		TZ:          sf.tz,
		Interval:    sf.interval,
		Concurrency: concurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch report: %w", err)
	}

	return writeJSON(cmd.OutOrStdout(), overviews)
}
