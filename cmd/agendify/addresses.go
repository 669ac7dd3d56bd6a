package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/agendify/internal/ui"
)

func init() {
	rootCmd.AddCommand(addressesCmd)
	addressesCmd.AddCommand(addressesListCmd)
	addressesCmd.AddCommand(addressesAddCmd)
	addressesCmd.AddCommand(addressesRemoveCmd)
}

var addressesCmd = &cobra.Command{
	Use:     "addresses",
	Aliases: []string{"addr"},
	Short:   "Manage the monitored sender addresses",
}

var addressesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List monitored addresses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		addrs, err := a.Addresses.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(addrs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("No monitored addresses. Add one with 'agendify addresses add'."))
			return nil
		}
		for _, addr := range addrs {
			fmt.Fprintln(cmd.OutOrStdout(), addr)
		}
		return nil
	},
}

var addressesAddCmd = &cobra.Command{
	Use:   "add <address>...",
	Short: "Monitor one or more sender addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		for _, arg := range args {
			addr, added, err := a.Addresses.Add(cmd.Context(), arg)
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(cmd.OutOrStdout(), "Monitoring %s\n", addr)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Already monitoring %s\n", addr)
			}
		}
		return nil
	},
}

var addressesRemoveCmd = &cobra.Command{
	Use:     "remove <address>...",
	Aliases: []string{"rm"},
	Short:   "Stop monitoring sender addresses",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		for _, arg := range args {
			removed, err := a.Addresses.Remove(cmd.Context(), arg)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Stopped monitoring %s\n", arg)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not monitored\n", arg)
			}
		}
		return nil
	},
}

// writeJSON prints v indented.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
