package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/agendify/internal/calendar"
)

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.AddCommand(calendarLoginCmd)
	calendarCmd.AddCommand(calendarListCmd)
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Connect and inspect the calendar backend",
}

var calendarLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorise agendify to add events to Google Calendar",
	Long: `Open the Google consent page and store the resulting token in the system
keyring. Requires calendar.google_client_id and calendar.google_client_secret.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		oauthCfg, err := a.GoogleOAuth()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		err = calendar.LoopbackLogin(cmd.Context(), oauthCfg, a.Vault, func(url string) {
			fmt.Fprintf(out, "Open this URL in your browser to continue:\n\n  %s\n\n", url)
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Google Calendar connected.")
		return nil
	},
}

var calendarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List calendars on the CalDAV server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		dav, err := a.CalDAV()
		if err != nil {
			return err
		}
		cals, err := dav.Calendars(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range cals {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.Path, c.Name)
		}
		return nil
	},
}
