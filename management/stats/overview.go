package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultOverviewConcurrency bounds the requests an overview runs at once
const DefaultOverviewConcurrency = 4

// OverviewReports are the timelines fetched for every search engine.
var OverviewReports = []string{"searches", "clicks", "checkouts", "inits"}

// OverviewOptions configures Overview
type OverviewOptions struct {
	Range
	TZ          string
	Interval    string
	Concurrency int
}

// Overview holds the timeline reports of one search engine. HashID is
// empty when the overview covers the whole account.
type Overview struct {
	HashID  string                     `json:"hashid,omitempty"`
	Reports map[string]json.RawMessage `json:"reports"`
}

// Overview fetches the searches, clicks, checkouts and inits timelines for
// each search engine of the range concurrently. The first failure cancels
// the remaining requests.
func (c *Client) Overview(ctx context.Context, opts OverviewOptions) ([]Overview, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	hashids := opts.HashIDs
	if len(hashids) == 0 {
		hashids = []string{""}
	}

	results := make([]Overview, len(hashids))
	reports := make([][]json.RawMessage, len(hashids))

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = DefaultOverviewConcurrency
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, hashid := range hashids {
		results[i].HashID = hashid
		reports[i] = make([]json.RawMessage, len(OverviewReports))

		timeline := TimelineOptions{
			Range:    opts.Range,
			TZ:       opts.TZ,
			Interval: opts.Interval,
			Format:   FormatJSON,
		}
		if hashid != "" {
			timeline.HashIDs = []string{hashid}
		}

		for j, kind := range OverviewReports {
			g.Go(func() error {
				report, err := c.timeline(ctx, kind, timeline)
				if err != nil {
					return err
				}
				// each goroutine owns its slot
				reports[i][j] = report.Data
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range results {
		results[i].Reports = make(map[string]json.RawMessage, len(OverviewReports))
		for j, kind := range OverviewReports {
			results[i].Reports[kind] = reports[i][j]
		}
	}
	return results, nil
}

func (c *Client) timeline(ctx context.Context, kind string, opts TimelineOptions) (*Report, error) {
	switch kind {
	case "searches":
		return c.Searches(ctx, SearchesOptions{
			Range: opts.Range, TZ: opts.TZ, Interval: opts.Interval, Format: opts.Format,
		})
	case "clicks":
		return c.Clicks(ctx, opts)
	case "checkouts":
		return c.Checkouts(ctx, opts)
	case "inits":
		return c.Inits(ctx, opts)
	}
	return nil, fmt.Errorf("%w: report %q", ErrInvalidValue, kind)
}
