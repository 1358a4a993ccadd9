package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"takeoutscout/internal/config"
	"takeoutscout/internal/discovery"
	"takeoutscout/internal/takeout"
	"takeoutscout/internal/textutil"
)

func newDiscoveriesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "discoveries",
		Aliases: []string{"disc"},
		Short:   "Inspect saved discovery records",
	}
	cmd.AddCommand(newDiscoveriesListCommand(ctx))
	cmd.AddCommand(newDiscoveriesShowCommand(ctx))
	cmd.AddCommand(newDiscoveriesDeleteCommand(ctx))
	cmd.AddCommand(newDiscoveriesNoteCommand(ctx))
	return cmd
}

func newDiscoveriesListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every saved discovery record",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.discoveryStore()
			if err != nil {
				return err
			}
			records := store.List()
			if jsonOut {
				summaries := make([]takeout.ArchiveSummary, 0, len(records))
				for _, rec := range records {
					summaries = append(summaries, rec.Summary())
				}
				return writeJSON(cmd, summaries)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No discoveries saved")
				return nil
			}
			headers := []string{"Source", "Type", "Service", "Files", "Size", "Scans", "Last scanned", "Notes"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					textutil.Truncate(filepath.Base(rec.SourcePath), 40),
					rec.SourceType,
					rec.ServiceGuess,
					strconv.Itoa(rec.FileCount),
					humanize.Bytes(uint64(max(rec.CompressedSize, 0))),
					strconv.Itoa(rec.ScanCount),
					humanize.Time(rec.LastScanned),
					textutil.Ternary(rec.Notes == "", "-", textutil.Truncate(rec.Notes, 30)),
				})
			}
			fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newDiscoveriesShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Show the saved record for one source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := loadDiscovery(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, rec)
			}
			printRecord(cmd, rec, showFiles)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full record as JSON")
	cmd.Flags().BoolVar(&showFiles, "files", false, "List every file in the record")
	return cmd
}

func newDiscoveriesDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Remove the saved record for one source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.discoveryStore()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			removed, err := store.Delete(path)
			if err != nil {
				return err
			}
			hashes, err := ctx.deleteSourceHashes(cmd.Context(), path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if removed {
				fmt.Fprintf(out, "Deleted discovery for %s\n", path)
			} else {
				fmt.Fprintf(out, "No discovery saved for %s\n", path)
			}
			if hashes > 0 {
				fmt.Fprintf(out, "Removed %d hash entries\n", hashes)
			}
			return nil
		},
	}
}

// deleteSourceHashes drops the persisted hash entries recorded for path.
// A missing hash database means nothing was ever recorded.
func (c *commandContext) deleteSourceHashes(ctx context.Context, path string) (int64, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(cfg.Paths.HashDBPath); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	resolved, err := discovery.ResolvePath(path)
	if err != nil {
		return 0, err
	}
	hashes, err := c.hashStore()
	if err != nil {
		return 0, err
	}
	defer hashes.Close()
	n, err := hashes.DeleteSource(ctx, resolved)
	if err != nil {
		return 0, fmt.Errorf("delete hash entries: %w", err)
	}
	return n, nil
}

func newDiscoveriesNoteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "note <path> <text>",
		Short: "Attach a note to a saved record",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.discoveryStore()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if err := store.SetNotes(path, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated notes for %s\n", path)
			return nil
		},
	}
}

func loadDiscovery(ctx *commandContext, arg string) (*discovery.Record, error) {
	store, err := ctx.discoveryStore()
	if err != nil {
		return nil, err
	}
	path, err := config.ExpandPath(arg)
	if err != nil {
		return nil, err
	}
	rec := store.Load(path)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", discovery.ErrNotFound, path)
	}
	return rec, nil
}

func printRecord(cmd *cobra.Command, rec *discovery.Record, showFiles bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source:           %s\n", rec.SourcePath)
	fmt.Fprintf(out, "Type:             %s\n", rec.SourceType)
	fmt.Fprintf(out, "Service:          %s\n", rec.ServiceGuess)
	fmt.Fprintf(out, "Parts group:      %s\n", rec.PartsGroup)
	fmt.Fprintf(out, "First discovered: %s\n", rec.FirstDiscovered.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Last scanned:     %s (%s)\n", rec.LastScanned.Local().Format("2006-01-02 15:04:05"), humanize.Time(rec.LastScanned))
	fmt.Fprintf(out, "Scans:            %d\n", rec.ScanCount)
	fmt.Fprintf(out, "Files:            %s (%d photos, %d videos, %d json, %d other)\n",
		humanize.Comma(int64(rec.FileCount)), rec.Photos, rec.Videos, rec.JSONSidecars, rec.Other)
	fmt.Fprintf(out, "Size:             %s on disk, %s content\n",
		humanize.Bytes(uint64(max(rec.CompressedSize, 0))), humanize.Bytes(uint64(max(rec.TotalSize, 0))))
	fmt.Fprintf(out, "Live photos:      %d\n", rec.LivePhotos)
	fmt.Fprintf(out, "Photo+JSON pairs: %d\n", rec.PhotoJSONPairs)
	if rec.PhotosChecked > 0 {
		fmt.Fprintf(out, "EXIF:             %d/%d with EXIF, %d with GPS, %d with date\n",
			rec.PhotosWithEXIF, rec.PhotosChecked, rec.PhotosWithGPS, rec.PhotosWithDateTime)
	}
	fmt.Fprintf(out, "Sidecars:         %d media linked, %d with date, %d with geo\n",
		rec.MediaWithSidecar, rec.MediaWithSidecarDate, rec.MediaWithSidecarGeo)
	fmt.Fprintf(out, "Hashed:           %s\n", yesNo(rec.HashedFiles > 0))
	if rec.Notes != "" {
		fmt.Fprintf(out, "Notes:            %s\n", rec.Notes)
	}

	if !showFiles || len(rec.FileDetails) == 0 {
		return
	}
	rows := make([][]string, 0, len(rec.FileDetails))
	for _, d := range rec.FileDetails {
		rows = append(rows, []string{
			textutil.Truncate(d.Path, 70),
			string(d.Category),
			humanize.Bytes(uint64(max(d.Size, 0))),
			textutil.Ternary(d.SidecarPath == "", "", "yes"),
			d.SidecarTime(),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(out, []string{"Path", "Category", "Size", "Sidecar", "Sidecar date"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}))
}
