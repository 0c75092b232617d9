package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsort/internal/ai"
	"github.com/nikbrunner/bmsort/internal/organizer"
)

func newAddCmd(flags *globalFlags) *cobra.Command {
	var (
		title       string
		description string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add one bookmark into the folder the model picks",
		Long: `Asks the model for the best folder for a single page and creates the
bookmark there. When the model suggests a new folder, the folder tree is
created under organize.rootFolder.`,
		Example: `  bmsort add https://go.dev/blog/slog --title "Structured logging with slog"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.open(logStderr)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			url := args[0]

			if !force {
				chk, err := a.org.Check(cmd.Context(), url)
				if err != nil {
					return err
				}
				if chk.IsBookmarked {
					printCheck(out, url, chk)
					fmt.Fprintln(out, "Use --force to add it again.")
					return nil
				}
			}

			res, err := a.org.AddBookmark(cmd.Context(), ai.Page{Title: title, URL: url, Description: description})
			if err != nil {
				return err
			}

			where := res.Path
			if res.IsNewFolder {
				where += " (new folder)"
			}
			fmt.Fprintf(out, "Added %q to %s\n", res.Bookmark.Title, where)
			if res.Reason != "" {
				fmt.Fprintf(out, "Reason: %s\n", res.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "bookmark title (defaults to the URL)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "short page description passed to the model")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "add even if the URL is already bookmarked")

	return cmd
}

func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <url>",
		Short: "Report whether a URL is bookmarked and where",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.open(logStderr)
			if err != nil {
				return err
			}
			defer a.Close()

			chk, err := a.org.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printCheck(cmd.OutOrStdout(), args[0], chk)
			return nil
		},
	}
}

func printCheck(w io.Writer, url string, chk *organizer.CheckResult) {
	switch {
	case !chk.IsBookmarked:
		fmt.Fprintf(w, "%s is not bookmarked\n", url)
	case chk.Folder == nil:
		fmt.Fprintf(w, "%s is bookmarked as %q at the top level\n", url, chk.Bookmark.Title)
	default:
		fmt.Fprintf(w, "%s is bookmarked as %q in %s\n", url, chk.Bookmark.Title, chk.Folder.Path)
	}
}
