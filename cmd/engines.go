package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/s0up4200/godoof/management"
)

var callbackURL string

var enginesCmd = &cobra.Command{
	Use:     "engines",
	Aliases: []string{"se"},
	Short:   "Manage search engines",
}

var enginesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List search engines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		engines, err := client.ListSearchEngines(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "HASHID\tNAME\tLANGUAGE\tINDICES\tSTATUS")
		for _, e := range engines {
			status := "active"
			if e.Inactive {
				status = "inactive"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", e.HashID, e.Name, e.Language, len(e.Indices), status)
		}
		return w.Flush()
	},
}

var enginesGetCmd = &cobra.Command{
	Use:   "get <hashid>",
	Short: "Show a search engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		engine, err := client.GetSearchEngine(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), engine)
	},
}

var enginesProcessCmd = &cobra.Command{
	Use:   "process <hashid>",
	Short: "Start processing the data sources of a search engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		status, err := client.ProcessSearchEngine(cmd.Context(), args[0], management.ProcessOptions{CallbackURL: callbackURL})
		if err != nil {
			return err
		}
		logger.Info().Str("hashid", args[0]).Str("status", status.Status).Msg("Processing started")
		return writeJSON(cmd.OutOrStdout(), status)
	},
}

var enginesStatusCmd = &cobra.Command{
	Use:   "status <hashid>",
	Short: "Show the state of the last processing run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		status, err := client.ProcessStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), status)
	},
}

func init() {
	rootCmd.AddCommand(enginesCmd)
	enginesCmd.AddCommand(enginesListCmd, enginesGetCmd, enginesProcessCmd, enginesStatusCmd)

	enginesProcessCmd.Flags().StringVar(&callbackURL, "callback-url", "", "URL notified when processing finishes")
}
