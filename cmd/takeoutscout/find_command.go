package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"takeoutscout/internal/config"
	"takeoutscout/internal/scan"
)

func newFindCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "find <root>",
		Short:       "List Takeout archives and directories under a folder",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			found, err := scan.FindSources(root)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, map[string][]string{
					"archives":    nonNil(found.Archives),
					"directories": nonNil(found.Directories),
				})
			}

			out := cmd.OutOrStdout()
			if len(found.Archives) == 0 && len(found.Directories) == 0 {
				fmt.Fprintf(out, "No Takeout sources found under %s\n", root)
				return nil
			}
			rows := make([][]string, 0, len(found.Archives)+len(found.Directories))
			for _, p := range found.Archives {
				rows = append(rows, []string{"archive", p})
			}
			for _, p := range found.Directories {
				rows = append(rows, []string{"directory", p})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Kind", "Path"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
