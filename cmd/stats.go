package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/godoof/management/stats"
)

// statsFlags are shared by every stats subcommand
type statsFlags struct {
	from     string
	to       string
	hashids  []string
	tz       string
	format   string
	device   string
	interval string

	// operation specific
	id        string
	query     string
	queryName string
	source    string
	totalHits int
	exclude   map[string]string
	usageType string
}

var sf statsFlags

// statsRequest carries the parsed shared flags to a report function
type statsRequest struct {
	rng      stats.Range
	format   stats.Format
	device   stats.Device
	tz       string
	interval string
	args     []string
}

type reportFunc func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Download statistics reports",
	Long: `Download statistics reports for one or more search engines.

Dates are inclusive and accept YYYY-MM-DD or YYYYMMDD. Without --hashid the
report covers every search engine of the account.`,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	pf := statsCmd.PersistentFlags()
	pf.StringVar(&sf.from, "from", "", "start date")
	pf.StringVar(&sf.to, "to", "", "end date")
	pf.StringSliceVar(&sf.hashids, "hashid", nil, "search engine hashid (repeatable)")
	pf.StringVar(&sf.tz, "tz", "", "time zone, e.g. Europe/Madrid")
	pf.StringVar(&sf.format, "format", "json", "response format (json or csv)")
	pf.StringVar(&sf.device, "device", "", "device filter (desktop or mobile)")
	pf.StringVar(&sf.interval, "interval", "", "aggregation interval, e.g. 1d")

	addStatsCommand("banners", "Banner impressions and clicks", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.Banners(ctx, stats.BannersOptions{Range: req.rng, BannerID: sf.id, TZ: req.tz, Format: req.format})
		}, idFlag("banner-id"))

	addStatsCommand("checkouts", "Checkouts over time", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.Checkouts(ctx, req.timeline())
		})

	addStatsCommand("clicks", "Clicks over time", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.Clicks(ctx, req.timeline())
		})

	addStatsCommand("clicks-by-query <query>", "Clicked products for a search term", cobra.ExactArgs(1),
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.ClicksByQuery(ctx, req.args[0], req.timeline())
		})

	addStatsCommand("click-searches <dfid>", "Search terms that led to clicks on a product", cobra.ExactArgs(1),
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.ClickSearches(ctx, req.args[0], req.devices())
		})

	addStatsCommand("clicks-top", "Most clicked products", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.ClicksTop(ctx, stats.ClicksTopOptions{
				Range: req.rng, Query: sf.query, Device: req.device,
				TZ: req.tz, Interval: req.interval, Format: req.format,
			})
		}, func(c *cobra.Command) {
			c.Flags().StringVar(&sf.query, "query", "", "only clicks after this search term")
		})

	addStatsCommand("custom-results", "Custom results displays", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.CustomResults(ctx, stats.CustomResultsOptions{Range: req.rng, CustomResultID: sf.id, TZ: req.tz, Format: req.format})
		}, idFlag("custom-result-id"))

	addStatsCommand("facets", "Facet usage over time", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.Facets(ctx, stats.FacetsOptions{Range: req.rng, TZ: req.tz, Format: req.format})
		})

	addStatsCommand("facets-top", "Most used facets", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.FacetsTop(ctx, stats.FacetsOptions{Range: req.rng, TZ: req.tz, Format: req.format})
		})

	addStatsCommand("inits", "Search sessions over time", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.Inits(ctx, req.timeline())
		})

	addStatsCommand("inits-locations", "Search sessions by location", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.InitsLocations(ctx, req.devices())
		})

	addStatsCommand("redirects", "Redirections over time", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.Redirects(ctx, stats.RedirectsOptions{Range: req.rng, RedirectID: sf.id, TZ: req.tz, Format: req.format})
		}, idFlag("redirect-id"))

	addStatsCommand("searches", "Searches over time", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			source, err := optional(sf.source, stats.ParseSource)
			if err != nil {
				return nil, err
			}
			return sc.Searches(ctx, stats.SearchesOptions{
				Range: req.rng, Device: req.device, QueryName: sf.queryName, Source: source,
				TotalHits: sf.totalHits, TZ: req.tz, Interval: req.interval, Format: req.format,
			})
		}, searchFlags, func(c *cobra.Command) {
			c.Flags().StringVar(&sf.source, "source", "", "search source (voice, text or suggestion)")
		})

	addStatsCommand("searches-top", "Most frequent search terms", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			return sc.SearchesTop(ctx, stats.SearchesTopOptions{
				Range: req.rng, Device: req.device, QueryName: sf.queryName, Exclude: sf.exclude,
				TotalHits: sf.totalHits, TZ: req.tz, Interval: req.interval, Format: req.format,
			})
		}, searchFlags, func(c *cobra.Command) {
			c.Flags().StringToStringVar(&sf.exclude, "exclude", nil, "drop searches where field=value (repeatable)")
		})

	addStatsCommand("usage", "API and search usage counters", cobra.NoArgs,
		func(ctx context.Context, sc *stats.Client, req statsRequest) (*stats.Report, error) {
			usage, err := optional(sf.usageType, stats.ParseUsageType)
			if err != nil {
				return nil, err
			}
			return sc.Usage(ctx, stats.UsageOptions{Range: req.rng, Type: usage, Format: req.format})
		}, func(c *cobra.Command) {
			c.Flags().StringVar(&sf.usageType, "type", "", "counter type (api, parser, query, requests or search)")
		})
}

func idFlag(name string) func(*cobra.Command) {
	return func(c *cobra.Command) {
		c.Flags().StringVar(&sf.id, name, "", "only this "+strings.TrimSuffix(name, "-id"))
	}
}

func searchFlags(c *cobra.Command) {
	c.Flags().StringVar(&sf.queryName, "query-name", "", "query type, e.g. match_and or fuzzy")
	c.Flags().IntVar(&sf.totalHits, "total-hits", 0, "only searches with this many results")
}

func addStatsCommand(use, short string, args cobra.PositionalArgs, fn reportFunc, flags ...func(*cobra.Command)) {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args, fn)
		},
	}
	for _, f := range flags {
		f(c)
	}
	statsCmd.AddCommand(c)
}

func runStats(cmd *cobra.Command, args []string, fn reportFunc) error {
	req, err := parseStatsFlags(args)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	report, err := fn(cmd.Context(), stats.NewClient(client), req)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return writeReport(cmd.OutOrStdout(), report)
}

func parseStatsFlags(args []string) (statsRequest, error) {
	hashids := sf.hashids
	if len(hashids) == 0 {
		hashids = cfg.Doofinder.HashIDs
	}

	rng, err := buildRange(sf.from, sf.to, hashids)
	if err != nil {
		return statsRequest{}, err
	}
	format, err := stats.ParseFormat(sf.format)
	if err != nil {
		return statsRequest{}, err
	}
	device, err := optional(sf.device, stats.ParseDevice)
	if err != nil {
		return statsRequest{}, err
	}

	return statsRequest{
		rng:      rng,
		format:   format,
		device:   device,
		tz:       sf.tz,
		interval: sf.interval,
		args:     args,
	}, nil
}

func (r statsRequest) timeline() stats.TimelineOptions {
	return stats.TimelineOptions{Range: r.rng, Device: r.device, TZ: r.tz, Interval: r.interval, Format: r.format}
}

func (r statsRequest) devices() stats.DeviceOptions {
	return stats.DeviceOptions{Range: r.rng, Device: r.device, TZ: r.tz, Format: r.format}
}

// optional parses s unless it is empty.
func optional[T ~string](s string, parse func(string) (T, error)) (T, error) {
	if s == "" {
		var zero T
		return zero, nil
	}
	return parse(s)
}
