package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/godoof/management/stats"
	"github.com/s0up4200/godoof/querylog"
)

var (
	filterExpr string
	preset     string
	limit      int
)

var querylogCmd = &cobra.Command{
	Use:   "querylog",
	Short: "Stream the search query log",
	Long: `Download the query log for a period and print every record as a JSON line.

Records can be narrowed with an expression, for example:

  godoof querylog --from 2024-01-01 --filter 'results == 0 and icontains(query, "shoe")'`,
	Args: cobra.NoArgs,
	RunE: runQueryLog,
}

func init() {
	rootCmd.AddCommand(querylogCmd)

	querylogCmd.Flags().StringVar(&sf.from, "from", "", "start date")
	querylogCmd.Flags().StringVar(&sf.to, "to", "", "end date")
	querylogCmd.Flags().StringSliceVar(&sf.hashids, "hashid", nil, "search engine hashid (repeatable)")
	querylogCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	querylogCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	querylogCmd.Flags().IntVar(&limit, "limit", 0, "stop after this many matches")
}

func runQueryLog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	expression, err := getFilterExpression()
	if err != nil {
		return err
	}

	var filter *querylog.Filter
	if expression != "" {
		compiler := querylog.NewCompiler(querylog.WithCache(cfg.QueryLog.CacheSize))
		filter, err = compiler.Compile(expression)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		logger.Info().Str("filter", expression).Msg("Filtering query log")
	}

	hashids := sf.hashids
	if len(hashids) == 0 {
		hashids = cfg.Doofinder.HashIDs
	}
	rng, err := buildRange(sf.from, sf.to, hashids)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	body, err := stats.NewClient(client).QueryLog(ctx, rng)
	if err != nil {
		return fmt.Errorf("failed to download query log: %w", err)
	}
	defer body.Close()

	enc := json.NewEncoder(cmd.OutOrStdout())
	res, err := querylog.Scan(ctx, querylog.NewReader(body), filter, func(rec querylog.Record) error {
		if err := enc.Encode(rec); err != nil {
			return err
		}
		if limit > 0 {
			limit--
			if limit == 0 {
				return querylog.ErrStop
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read query log: %w", err)
	}
	if res.FirstError != nil {
		logger.Warn().Err(res.FirstError).Int("skipped", res.Skipped).Msg("Some records could not be evaluated")
	}

	logger.Info().
		Int("scanned", res.Scanned).
		Int("matched", res.Matched).
		Int("skipped", res.Skipped).
		Msg("Query log done")
	return nil
}

// getFilterExpression determines the filter expression to use
func getFilterExpression() (string, error) {
	// Priority: command line filter > preset > default
	if filterExpr != "" {
		return filterExpr, nil
	}

	if preset != "" {
		if expression, ok := cfg.QueryLog.Presets[preset]; ok {
			return expression, nil
		}
		return "", fmt.Errorf("preset '%s' not found in config", preset)
	}

	return cfg.QueryLog.DefaultFilter, nil
}
