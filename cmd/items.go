package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/s0up4200/godoof/management"
	"github.com/s0up4200/godoof/querylog"
)

var (
	useTemporary bool
	pageSize     int
	batchSize    int
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Read and write the items of an index",
}

var itemsListCmd = &cobra.Command{
	Use:   "list <hashid> <index>",
	Short: "Print every item as a JSON line",
	Long: `Scroll through the items of an index and print them as JSON lines.

--filter takes the same expressions as the querylog command, evaluated
against each item.`,
	Args: cobra.ExactArgs(2),
	RunE: runItemsList,
}

var itemsImportCmd = &cobra.Command{
	Use:   "import <hashid> <index> <file>",
	Short: "Create items from a JSON array or JSON lines file",
	Args:  cobra.ExactArgs(3),
	RunE:  runItemsImport,
}

var itemsDeleteCmd = &cobra.Command{
	Use:   "delete <hashid> <index> <id>...",
	Short: "Delete items by id",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := itemService(client, args[0], args[1]).DeleteBulk(cmd.Context(), args[2:])
		if err != nil {
			return err
		}
		return reportBulk(resp)
	},
}

func init() {
	rootCmd.AddCommand(itemsCmd)
	itemsCmd.AddCommand(itemsListCmd, itemsImportCmd, itemsDeleteCmd)

	itemsCmd.PersistentFlags().BoolVar(&useTemporary, "temporary", false, "use the temporary index")
	itemsListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	itemsListCmd.Flags().IntVar(&pageSize, "rpp", 100, "items per page")
	itemsListCmd.Flags().IntVar(&limit, "limit", 0, "stop after this many matches")
	itemsImportCmd.Flags().IntVar(&batchSize, "batch", 100, "items per bulk request")
}

func itemService(client *management.Client, hashid, index string) *management.ItemService {
	if useTemporary {
		return client.TemporaryItems(hashid, index)
	}
	return client.Items(hashid, index)
}

func runItemsList(cmd *cobra.Command, args []string) error {
	var filter *querylog.Filter
	if filterExpr != "" {
		var err error
		filter, err = querylog.Compile(filterExpr)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	matched := 0
	err = itemService(client, args[0], args[1]).ScrollAll(cmd.Context(), pageSize, func(item management.Item) error {
		if filter != nil && !filter.Match(querylog.Record(item)) {
			return nil
		}
		if err := enc.Encode(item); err != nil {
			return err
		}
		matched++
		if limit > 0 && matched >= limit {
			return querylog.ErrStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, querylog.ErrStop) {
		return err
	}
	return nil
}

func runItemsImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[2])
	if err != nil {
		return err
	}
	defer f.Close()

	rd := querylog.NewReader(f)
	if rd.Format() == querylog.FormatCSV {
		return fmt.Errorf("%s: expected a JSON array or JSON lines", args[2])
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	items := itemService(client, args[0], args[1])

	size := batchSize
	if size < 1 {
		size = 100
	}
	batch := make([]management.Item, 0, size)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		resp, err := items.CreateBulk(cmd.Context(), batch)
		if err != nil {
			return err
		}
		batch = batch[:0]
		return reportBulk(resp)
	}

	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		batch = append(batch, management.Item(rec))
		if len(batch) == size {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Info().Int("items", rd.Line()).Msg("Import done")
	return nil
}

func reportBulk(resp *management.BulkResponse) error {
	failed := resp.Failed()
	for _, r := range failed {
		logger.Warn().Str("id", r.ID).Str("result", r.Result).Int("status", r.Status).Msg("Item failed")
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d items failed", len(failed), len(resp.Results))
	}
	logger.Info().Int("items", len(resp.Results)).Msg("Bulk request done")
	return nil
}
