package scan

import (
	"context"
	"errors"

	"takeoutscout/internal/discovery"
	"takeoutscout/internal/logging"
	"takeoutscout/internal/takeout"
)

// ScanBatch scans paths in order. Cancellation is checked between sources,
// never inside one, so every record written belongs to a completed scan. The
// summaries gathered so far are returned together with ctx.Err() on
// cancellation, or with the error of the first failed discovery save.
func (s *Scanner) ScanBatch(ctx context.Context, paths []string) ([]*takeout.ArchiveSummary, error) {
	summaries := make([]*takeout.ArchiveSummary, 0, len(paths))
	sampler := logging.NewProgressSampler(10)
	failed := 0

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			s.logger.Info("batch cancelled",
				logging.Int("completed", len(summaries)),
				logging.Int("remaining", len(paths)-i),
				logging.String(logging.FieldEventType, "batch_cancelled"),
			)
			return summaries, err
		}

		summary, err := s.Scan(ctx, path)
		if summary != nil {
			summaries = append(summaries, summary)
			if !summary.OK() {
				failed++
			}
		}
		if err != nil {
			if errors.Is(err, discovery.ErrPersist) || summary == nil {
				return summaries, err
			}
		}

		percent := float64(i+1) / float64(len(paths)) * 100
		label := ""
		if summary != nil {
			label = summary.PartsGroup
		}
		if sampler.ShouldLog(percent, label) {
			s.logger.Info("batch progress",
				logging.Int("done", i+1),
				logging.Int("total", len(paths)),
				logging.Float64("percent", percent),
				logging.String("parts_group", label),
			)
		}
	}

	s.logger.Info("batch complete",
		logging.Int("sources", len(summaries)),
		logging.Int("failed", failed),
		logging.String(logging.FieldEventType, "batch_complete"),
	)
	return summaries, nil
}
