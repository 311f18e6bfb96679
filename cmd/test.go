package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to the management API",
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing connection to %s...\n", client.Host())

	ctx := cmd.Context()
	if err := client.TestConnection(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Fprintln(out, "✓ Connection successful!")

	engines, err := client.ListSearchEngines(ctx)
	if err != nil {
		return fmt.Errorf("failed to list search engines: %w", err)
	}

	fmt.Fprintf(out, "\nSearch engines: %d\n", len(engines))
	for _, e := range engines {
		fmt.Fprintf(out, "  • %s (%s, %d indices)\n", e.Name, e.HashID, len(e.Indices))
	}
	return nil
}
