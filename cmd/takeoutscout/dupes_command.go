package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"takeoutscout/internal/hashindex"
	"takeoutscout/internal/textutil"
)

type dupesReport struct {
	Algorithm string                   `json:"algorithm"`
	Stats     hashindex.Stats          `json:"stats"`
	Sets      []hashindex.DuplicateSet `json:"sets"`
}

func newDupesCommand(ctx *commandContext) *cobra.Command {
	var (
		algorithm   string
		limit       int
		jsonOut     bool
		listSources bool
	)

	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Report files with identical content across scanned sources",
		Long: "Report duplicate content recorded in the hash database. Sources must have\n" +
			"been scanned with --hash (or scan.compute_hashes) for their files to appear.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if algorithm == "" {
				algorithm = cfg.Scan.HashAlgorithm
			}
			hasher, err := hashindex.NewHasher(algorithm, 0)
			if err != nil {
				return err
			}

			store, err := ctx.hashStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if listSources {
				return printHashSources(cmd, store, jsonOut)
			}

			idx, err := store.Load(cmd.Context(), hasher.Algorithm())
			if err != nil {
				return err
			}
			report := dupesReport{
				Algorithm: string(hasher.Algorithm()),
				Stats:     idx.Stats(),
				Sets:      idx.DuplicateSets(),
			}
			if limit > 0 && len(report.Sets) > limit {
				report.Sets = report.Sets[:limit]
			}
			if jsonOut {
				return writeJSON(cmd, report)
			}
			printDupes(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", "", "Hash algorithm to report on (defaults to scan.hash_algorithm)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum duplicate sets to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&listSources, "sources", false, "List hashed sources instead of duplicates")
	return cmd
}

func printDupes(cmd *cobra.Command, report dupesReport) {
	out := cmd.OutOrStdout()
	s := report.Stats
	fmt.Fprintf(out, "Hashed files:   %s (%s)\n", humanize.Comma(int64(s.TotalFiles)), report.Algorithm)
	fmt.Fprintf(out, "Unique content: %s\n", humanize.Comma(int64(s.UniqueHashes)))
	fmt.Fprintf(out, "Duplicate sets: %s (%s redundant files)\n", humanize.Comma(int64(s.DuplicateSets)), humanize.Comma(int64(s.DuplicateFiles)))
	fmt.Fprintf(out, "Wasted space:   %s\n", humanize.Bytes(uint64(max(s.WastedBytes, 0))))
	if len(report.Sets) == 0 {
		return
	}

	rows := make([][]string, 0, len(report.Sets))
	for _, set := range report.Sets {
		for i, e := range set.Entries {
			marker := textutil.Ternary(e == set.Kept, "*", "")
			hash := ""
			wasted := ""
			if i == 0 {
				hash = textutil.Truncate(set.Hash, 12)
				wasted = humanize.Bytes(uint64(max(set.Wasted, 0)))
			}
			rows = append(rows, []string{hash, wasted, marker, textutil.Truncate(e.SourceID, 32), textutil.Truncate(e.Path, 60), humanize.Bytes(uint64(max(e.Size, 0)))})
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(out, []string{"Hash", "Wasted", "Keep", "Source", "Path", "Size"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignRight}))
}

func printHashSources(cmd *cobra.Command, store *hashindex.Store, jsonOut bool) error {
	sources, err := store.Sources(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOut {
		if sources == nil {
			sources = []hashindex.SourceCount{}
		}
		return writeJSON(cmd, sources)
	}
	out := cmd.OutOrStdout()
	if len(sources) == 0 {
		fmt.Fprintln(out, "No hashed sources")
		return nil
	}
	rows := make([][]string, 0, len(sources))
	for _, sc := range sources {
		rows = append(rows, []string{sc.SourceID, sc.Algorithm, strconv.Itoa(sc.Files), humanize.Time(sc.IndexedAt)})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Source", "Algorithm", "Files", "Indexed"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	return nil
}
