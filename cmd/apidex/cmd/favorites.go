package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func favCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fav <id>",
		Short: "Toggle an API's favorite",
		Long:  "Toggle the favorite flag of an API and record or forget its bookmark date.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid api id %q", args[0])
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.bookmarks.Toggle(cmd.Context(), a.client, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, res)
			}
			if res.IsFavorited {
				_, err = fmt.Fprintf(out, "API %d added to favorites.\n", id)
			} else {
				_, err = fmt.Fprintf(out, "API %d removed from favorites.\n", id)
			}
			return err
		},
	}
}

func bookmarksCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "List favorites grouped by bookmark date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			groups, err := a.bookmarks.Favorites(cmd.Context(), a.client, size)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, groups)
			}
			if len(groups) == 0 {
				_, err := fmt.Fprintln(out, "No favorites yet.")
				return err
			}
			return printBookmarkGroups(out, groups)
		},
	}
	cmd.Flags().IntVar(&size, "page-size", 50, "favorites fetched per request")
	return cmd
}
