package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"takeoutscout/internal/config"
	"takeoutscout/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		file   string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log lines",
		Long:  "Print the tail of the newest daily log file, or of --file when given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := file
			if path != "" {
				expanded, err := config.ExpandPath(path)
				if err != nil {
					return err
				}
				path = expanded
			} else {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				latest, err := logs.Latest(cfg.Paths.LogDir)
				if err != nil {
					if errors.Is(err, logs.ErrNoLogs) {
						fmt.Fprintln(cmd.OutOrStdout(), "No log files yet")
						return nil
					}
					return err
				}
				path = latest
			}

			out := cmd.OutOrStdout()
			res, err := logs.Tail(cmd.Context(), path, logs.Options{Offset: -1, Lines: lines})
			if err != nil {
				return err
			}
			for _, line := range res.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			offset := res.Offset
			for {
				res, err := logs.Tail(cmd.Context(), path, logs.Options{Offset: offset, Follow: true, Wait: time.Second})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				for _, line := range res.Lines {
					fmt.Fprintln(out, line)
				}
				offset = res.Offset
				if cmd.Context().Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&file, "file", "", "Log file to read instead of the newest daily file")
	return cmd
}
