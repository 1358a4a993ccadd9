package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(stateDirEnv); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}

	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DiscoveriesDir) == "" {
		c.Paths.DiscoveriesDir = filepath.Join(c.Paths.StateDir, defaultDiscoveriesSubdir)
	}
	if c.Paths.DiscoveriesDir, err = expandPath(c.Paths.DiscoveriesDir); err != nil {
		return fmt.Errorf("paths.discoveries_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, defaultLogSubdir)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HashDBPath) == "" {
		c.Paths.HashDBPath = filepath.Join(c.Paths.StateDir, defaultHashDBName)
	}
	if c.Paths.HashDBPath, err = expandPath(c.Paths.HashDBPath); err != nil {
		return fmt.Errorf("paths.hash_db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	c.Scan.HashAlgorithm = strings.ToLower(strings.TrimSpace(c.Scan.HashAlgorithm))
	if c.Scan.HashAlgorithm == "" {
		c.Scan.HashAlgorithm = defaultHashAlgorithm
	}
	if c.Scan.HashChunkSize == 0 {
		c.Scan.HashChunkSize = defaultHashChunkSize
	}
	if c.Scan.MetadataReadLimit == 0 {
		c.Scan.MetadataReadLimit = defaultMetadataReadLimit
	}
	if c.Scan.SidecarMaxBytes == 0 {
		c.Scan.SidecarMaxBytes = defaultSidecarMaxBytes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
