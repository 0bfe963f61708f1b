package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func recentCmd() *cobra.Command {
	recentRoot := &cobra.Command{
		Use:   "recent",
		Short: "Manage recent searches",
		Long: "List and edit the recent-search history. The history is bounded\n" +
			"(recent.variant compact keeps 5, full keeps 10) and newest first.",
	}

	recentRoot.AddCommand(
		recentListCmd(),
		recentAddCmd(),
		recentRmCmd(),
		recentClearCmd(),
	)
	return recentRoot
}

func recentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recent searches, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			terms := a.recent.List(cmd.Context())
			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, terms)
			}
			if len(terms) == 0 {
				_, err := fmt.Fprintln(out, "No recent searches.")
				return err
			}
			return printList(out, terms)
		},
	}
}

func recentAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <term>",
		Short: "Record a search term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.recent.Add(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func recentRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <term>",
		Short: "Remove a search term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.recent.Remove(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func recentClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all recent searches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.recent.Clear(cmd.Context())
		},
	}
}
