package logs

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"takeoutscout/internal/logging"
)

// ErrNoLogs is returned by Latest when dir holds no daily log files.
var ErrNoLogs = errors.New("no log files")

// Latest returns the newest daily log file in dir. Daily names embed the
// date as YYYY-MM-DD, so the lexically greatest name is the newest.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, logging.LogFilePattern))
	if err != nil {
		return "", fmt.Errorf("list log files: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoLogs, dir)
	}
	return slices.Max(matches), nil
}
