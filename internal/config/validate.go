package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateDates(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DiscoveriesDir) == "" {
		return errors.New("paths.discoveries_dir must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	if !slices.Contains(HashAlgorithms, c.Scan.HashAlgorithm) {
		return fmt.Errorf("scan.hash_algorithm must be one of %s, got %q", strings.Join(HashAlgorithms, ", "), c.Scan.HashAlgorithm)
	}
	if c.Scan.HashChunkSize < 0 {
		return errors.New("scan.hash_chunk_size must be positive")
	}
	if c.Scan.MetadataReadLimit < 0 {
		return errors.New("scan.metadata_read_limit must be positive")
	}
	if c.Scan.SidecarMaxBytes < 0 {
		return errors.New("scan.sidecar_max_bytes must be positive")
	}
	return nil
}

func (c *Config) validateDates() error {
	if c.Dates.MatchThresholdSeconds < 0 {
		return errors.New("dates.match_threshold_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.Logging.RetentionDays < 0 {
		return fmt.Errorf("logging.retention_days must be >= 0, got %d", c.Logging.RetentionDays)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
}
