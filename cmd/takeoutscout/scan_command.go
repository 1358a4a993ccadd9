package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"takeoutscout/internal/config"
	"takeoutscout/internal/scan"
	"takeoutscout/internal/takeout"
	"takeoutscout/internal/textutil"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		hash       bool
		algorithm  string
		noSidecars bool
		noMetadata bool
		noSave     bool
		find       bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "scan <path>...",
		Short: "Scan Takeout archives or directories",
		Long: "Scan one or more Takeout sources (zip, tgz, tar.gz, tar, tar.zst, or unpacked\n" +
			"directories) and print a summary per source. With --find, each path is treated\n" +
			"as a root to search for sources.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opts := scan.OptionsFromConfig(cfg)
			if hash {
				opts.ComputeHashes = true
			}
			if algorithm != "" {
				opts.HashAlgorithm = algorithm
			}
			if noSidecars {
				opts.ParseSidecars = false
			}
			if noMetadata {
				opts.ExtractMetadata = false
			}
			if noSave {
				opts.SaveDiscovery = false
			}

			paths, err := expandScanTargets(args, find)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No Takeout sources found")
				return nil
			}

			scanner, cleanup, err := ctx.newScanner(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			summaries, scanErr := scanner.ScanBatch(cmd.Context(), paths)
			if jsonOut {
				if err := writeJSON(cmd, summaries); err != nil {
					return err
				}
			} else {
				printSummaries(cmd, summaries)
			}
			if scanErr != nil {
				return fmt.Errorf("scan stopped after %d of %d sources: %w", len(summaries), len(paths), scanErr)
			}
			if failed := countFailed(summaries); failed > 0 && len(summaries) == failed {
				return errors.New("no source could be scanned")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&hash, "hash", false, "Compute content hashes for duplicate detection")
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "Hash algorithm: "+strings.Join(config.HashAlgorithms, ", "))
	cmd.Flags().BoolVar(&noSidecars, "no-sidecars", false, "Skip JSON sidecar parsing")
	cmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "Skip EXIF extraction")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not write discovery records")
	cmd.Flags().BoolVar(&find, "find", false, "Search each path for sources before scanning")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output summaries as JSON")
	return cmd
}

func expandScanTargets(args []string, find bool) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		if !find {
			add(path)
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		found, err := scan.FindSources(path)
		if err != nil {
			return nil, err
		}
		for _, p := range found.All() {
			add(p)
		}
	}
	return paths, nil
}

func printSummaries(cmd *cobra.Command, summaries []*takeout.ArchiveSummary) {
	out := cmd.OutOrStdout()
	headers := []string{"Source", "Type", "Service", "Parts group", "Files", "Photos", "Videos", "JSON", "Other", "Size", "Live", "Photo+JSON", "Status"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}

	var files int
	var size int64
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		files += s.FileCount
		size += s.CompressedSize
		rows = append(rows, []string{
			textutil.Truncate(filepath.Base(s.Path), 40),
			s.SourceType,
			s.ServiceGuess,
			textutil.Truncate(s.PartsGroup, 32),
			strconv.Itoa(s.FileCount),
			strconv.Itoa(s.Photos),
			strconv.Itoa(s.Videos),
			strconv.Itoa(s.JSONSidecars),
			strconv.Itoa(s.Other),
			humanize.Bytes(uint64(max(s.CompressedSize, 0))),
			strconv.Itoa(s.LivePhotos),
			strconv.Itoa(s.PhotoJSONPairs),
			s.Status,
		})
	}
	fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
	fmt.Fprintf(out, "%d sources, %s files, %s\n", len(summaries), humanize.Comma(int64(files)), humanize.Bytes(uint64(max(size, 0))))

	for _, s := range summaries {
		if !s.OK() {
			fmt.Fprintf(out, "  %s: %s\n", s.Path, s.Error)
		}
	}
}

func countFailed(summaries []*takeout.ArchiveSummary) int {
	failed := 0
	for _, s := range summaries {
		if !s.OK() {
			failed++
		}
	}
	return failed
}
