package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

const (
	keyringService = "godoof"
	keyringUser    = "management-token"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Store the management API token in the system keychain",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save a token to the keychain",
	Long: `Save a management API token to the system keychain. The token is read from
--token or, when that is not set, from the first line of standard input.

A stored token is used only when neither --token, doofinder.token nor
DOOFINDER_TOKEN provide one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := tokenFlag
		if token == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read token: %w", err)
			}
			token = strings.TrimSpace(line)
		}
		if token == "" {
			return fmt.Errorf("no token given")
		}

		if err := keyring.Set(keyringService, keyringUser, token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token saved to the keychain")
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := keyring.Delete(keyringService, keyringUser)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to remove token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token removed")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a token is stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if token := storedToken(); token != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Token stored (%s)\n", maskToken(token))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No token stored")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
}

// storedToken returns the keychain token, or "" when there is none.
func storedToken() string {
	token, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug().Err(err).Msg("Keychain unavailable")
		}
		return ""
	}
	return token
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
