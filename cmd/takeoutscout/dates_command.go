package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"takeoutscout/internal/config"
	"takeoutscout/internal/discovery"
	"takeoutscout/internal/scan"
	"takeoutscout/internal/sidecar"
	"takeoutscout/internal/takeout"
	"takeoutscout/internal/textutil"
)

type datesReport struct {
	Source      string                   `json:"source"`
	Threshold   int                      `json:"threshold_seconds"`
	Analysis    sidecar.DateAnalysis     `json:"analysis"`
	Counts      map[sidecar.Status]int   `json:"counts"`
	Comparisons []sidecar.DateComparison `json:"comparisons,omitempty"`
}

func newDatesCommand(ctx *commandContext) *cobra.Command {
	var (
		threshold int
		rescan    bool
		jsonOut   bool
		showAll   bool
	)

	cmd := &cobra.Command{
		Use:   "dates <path>",
		Short: "Compare EXIF dates with sidecar dates for one source",
		Long: "Reconcile EXIF DateTimeOriginal with the photoTakenTime recorded in JSON\n" +
			"sidecars. The saved discovery record is used when present; otherwise the\n" +
			"source is scanned without saving.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			details, err := dateDetails(cmd, ctx, cfg, path, rescan)
			if err != nil {
				return err
			}
			sourceID, err := discovery.ResolvePath(path)
			if err != nil {
				sourceID = path
			}

			window := cfg.MatchThreshold()
			if cmd.Flags().Changed("threshold") {
				window = time.Duration(threshold) * time.Second
			}
			comparisons := sidecar.CompareDates(sourceID, details, window)
			report := datesReport{
				Source:    path,
				Threshold: int(window / time.Second),
				Analysis:  sidecar.AnalyzeDates(details),
				Counts:    sidecar.StatusCounts(comparisons),
			}
			for _, c := range comparisons {
				if showAll || c.Status == sidecar.StatusMismatch {
					report.Comparisons = append(report.Comparisons, c)
				}
			}
			if jsonOut {
				return writeJSON(cmd, report)
			}
			printDates(cmd, report)
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", int(sidecar.DefaultMatchThreshold/time.Second), "Seconds of EXIF/sidecar difference still counted as a match")
	cmd.Flags().BoolVar(&rescan, "rescan", false, "Scan the source even when a saved record exists")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&showAll, "all", false, "List every comparison, not only mismatches")
	return cmd
}

func dateDetails(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, path string, rescan bool) ([]takeout.FileDetail, error) {
	if !rescan {
		store, err := ctx.discoveryStore()
		if err != nil {
			return nil, err
		}
		if rec := store.Load(path); rec != nil {
			return rec.FileDetails, nil
		}
	}

	opts := scan.OptionsFromConfig(cfg)
	opts.ParseSidecars = true
	opts.ExtractMetadata = true
	opts.ComputeHashes = false
	opts.SaveDiscovery = false
	scanner, cleanup, err := ctx.newScanner(opts)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := scanner.ScanDetailed(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	if !result.Summary.OK() {
		return nil, fmt.Errorf("scan %s: %s", path, result.Summary.Error)
	}
	return result.Details, nil
}

func printDates(cmd *cobra.Command, report datesReport) {
	out := cmd.OutOrStdout()
	a := report.Analysis
	fmt.Fprintf(out, "Source:             %s\n", report.Source)
	fmt.Fprintf(out, "Media files:        %d\n", a.TotalMedia)
	fmt.Fprintf(out, "Sidecar coverage:   %.1f%% (%d)\n", a.SidecarCoverage(), a.WithSidecar)
	fmt.Fprintf(out, "Date recovery:      %.1f%%\n", a.DateRecoveryRate())
	fmt.Fprintf(out, "With geo:           %d\n", a.WithGeo)
	if a.Earliest != nil && a.Latest != nil {
		fmt.Fprintf(out, "Date range:         %s to %s\n", a.Earliest.Format("2006-01-02"), a.Latest.Format("2006-01-02"))
	}
	fmt.Fprintf(out, "Missing dates:      %d\n", len(a.MissingDates))
	fmt.Fprintf(out, "Match window:       %ds\n", report.Threshold)
	for _, status := range []sidecar.Status{sidecar.StatusMatch, sidecar.StatusMismatch, sidecar.StatusEXIFOnly, sidecar.StatusSidecarOnly, sidecar.StatusNoDates} {
		fmt.Fprintf(out, "  %-13s %d\n", status, report.Counts[status])
	}
	if len(report.Comparisons) == 0 {
		return
	}

	rows := make([][]string, 0, len(report.Comparisons))
	for _, c := range report.Comparisons {
		rows = append(rows, []string{
			textutil.Truncate(c.Path, 60),
			formatOptionalTime(c.EXIFDate),
			formatOptionalTime(c.SidecarDate),
			formatDiff(c.DiffSeconds),
			string(c.Status),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(out, []string{"Path", "EXIF", "Sidecar", "Diff", "Status"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatDiff(diff *int64) string {
	if diff == nil {
		return "-"
	}
	return (time.Duration(*diff) * time.Second).String()
}
