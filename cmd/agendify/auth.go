package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/agendify/internal/credential"
)

var authFromStdin bool

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authDeleteCmd)

	authSetCmd.Flags().BoolVar(&authFromStdin, "stdin", false, "read the secret from stdin instead of prompting")
}

// secretKeys maps the names accepted on the command line to keyring keys.
var secretKeys = map[string]string{
	"imap":      credential.KeyIMAPPassword,
	"caldav":    credential.KeyCalDAVPassword,
	"anthropic": credential.KeyAnthropicAPIKey,
	"openai":    credential.KeyOpenAIAPIKey,
	"google":    credential.KeyGoogleToken,
}

func secretKey(name string) (string, error) {
	key, ok := secretKeys[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("unknown secret %q (want imap, caldav, anthropic, openai or google)", name)
	}
	return key, nil
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage secrets stored in the system keyring",
}

var authSetCmd = &cobra.Command{
	Use:   "set <imap|caldav|anthropic|openai>",
	Short: "Store a password or API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := secretKey(args[0])
		if err != nil {
			return err
		}
		if key == credential.KeyGoogleToken {
			return errors.New("use 'agendify calendar login' to connect Google Calendar")
		}

		var secret string
		if authFromStdin {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading secret: %w", err)
			}
			secret = strings.TrimSpace(line)
		} else {
			err := huh.NewInput().
				Title(fmt.Sprintf("Enter the %s secret", args[0])).
				EchoMode(huh.EchoModePassword).
				Value(&secret).
				Run()
			if err != nil {
				return err
			}
		}
		if secret == "" {
			return errors.New("empty secret, nothing stored")
		}

		vault, err := credential.Open()
		if err != nil {
			return err
		}
		if err := vault.Set(key, secret); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %s secret.\n", args[0])
		return nil
	},
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete <imap|caldav|anthropic|openai|google>",
	Short: "Remove a stored secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := secretKey(args[0])
		if err != nil {
			return err
		}
		vault, err := credential.Open()
		if err != nil {
			return err
		}
		if err := vault.Delete(key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s secret.\n", args[0])
		return nil
	},
}
