package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsort/internal/bookmarks"
	"github.com/nikbrunner/bmsort/internal/exporter"
	"github.com/nikbrunner/bmsort/internal/folderindex"
	"github.com/nikbrunner/bmsort/internal/importer"
)

func newImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.html>",
		Short: "Merge a browser bookmark export into the store",
		Long: `Imports a Netscape bookmark file as exported by Chrome, Firefox or Safari.
Bookmarks whose URL is already stored are skipped; folders are reused by
name and parent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.open(logStderr)
			if err != nil {
				return err
			}
			defer a.Close()

			folders, bms, err := importer.ParseFile(args[0])
			if err != nil {
				return err
			}

			added, skipped := a.backend.Merge(folders, bms)
			if err := a.backend.Flush(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d bookmarks, %d folders", added, len(folders))
			if skipped > 0 {
				fmt.Fprintf(out, " (%d duplicates skipped)", skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write the bookmark tree as a browser-importable HTML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.open(logStderr)
			if err != nil {
				return err
			}
			defer a.Close()

			path := ""
			if len(args) == 1 {
				path = args[0]
			} else if path, err = exporter.DefaultExportPath(); err != nil {
				return err
			}

			root, err := a.backend.Tree(cmd.Context())
			if err != nil {
				return err
			}
			if err := exporter.WriteFile(path, root); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks, %d folders to %s\n",
				len(bookmarks.Flatten(root)), folderindex.Build(root).Len(), path)
			return nil
		},
	}
}
