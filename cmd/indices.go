package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "Manage the indices of a search engine",
}

var indicesListCmd = &cobra.Command{
	Use:   "list <hashid>",
	Short: "List indices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		indices, err := client.ListIndices(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPRESET\tDATASOURCES")
		for _, idx := range indices {
			fmt.Fprintf(w, "%s\t%s\t%d\n", idx.Name, idx.Preset, len(idx.DataSources))
		}
		return w.Flush()
	},
}

var indicesGetCmd = &cobra.Command{
	Use:   "get <hashid> <index>",
	Short: "Show an index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		index, err := client.GetIndex(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), index)
	},
}

var indicesReindexCmd = &cobra.Command{
	Use:   "reindex <hashid> <index>",
	Short: "Rebuild an index into its temporary copy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.ReindexToTemp(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		logger.Info().Str("hashid", args[0]).Str("index", args[1]).Msg("Reindex started")
		return nil
	},
}

var indicesReindexStatusCmd = &cobra.Command{
	Use:   "reindex-status <hashid> <index>",
	Short: "Show the state of a reindex",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		status, err := client.ReindexStatus(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), status)
	},
}

var indicesReplaceCmd = &cobra.Command{
	Use:   "replace <hashid> <index>",
	Short: "Replace an index with its temporary copy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.ReplaceByTemporary(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		logger.Info().Str("hashid", args[0]).Str("index", args[1]).Msg("Index replaced")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indicesCmd)
	indicesCmd.AddCommand(indicesListCmd, indicesGetCmd, indicesReindexCmd, indicesReindexStatusCmd, indicesReplaceCmd)
}
