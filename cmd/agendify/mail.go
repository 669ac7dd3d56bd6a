package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(mailCmd)
	mailCmd.AddCommand(mailCheckCmd)
}

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Inspect the IMAP mailbox",
}

var mailCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Log in to the IMAP server and select the configured mailbox",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		mailbox, err := a.IMAP()
		if err != nil {
			return err
		}
		user, err := mailbox.ValidateConnection(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s as %s, mailbox %s is readable.\n",
			a.Config.Mail.IMAPHost, user, a.Config.Mail.Mailbox)
		return nil
	},
}
