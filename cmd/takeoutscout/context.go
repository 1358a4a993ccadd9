package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"takeoutscout/internal/config"
	"takeoutscout/internal/discovery"
	"takeoutscout/internal/hashindex"
	"takeoutscout/internal/logging"
	"takeoutscout/internal/metadata"
	"takeoutscout/internal/scan"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// log returns the run logger, falling back to a no-op logger when file
// logging cannot be set up.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg, uuid.NewString())
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) discoveryStore() (*discovery.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return discovery.Open(cfg.Paths.DiscoveriesDir, c.log())
}

func (c *commandContext) hashStore() (*hashindex.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := hashindex.Open(cfg.Paths.HashDBPath)
	if err != nil {
		return nil, fmt.Errorf("open hash database: %w", err)
	}
	return store, nil
}

// newScanner wires the scanner to the discovery store, hash database, and
// metadata extractor as opts require. The returned cleanup closes whatever
// was opened.
func (c *commandContext) newScanner(opts scan.Options) (*scan.Scanner, func(), error) {
	cleanup := func() {}
	options := []scan.Option{scan.WithLogger(c.log())}

	if opts.SaveDiscovery {
		store, err := c.discoveryStore()
		if err != nil {
			return nil, cleanup, err
		}
		options = append(options, scan.WithDiscoveryStore(store))
	}
	if opts.ExtractMetadata {
		options = append(options, scan.WithExtractor(metadata.New()))
	}
	if opts.ComputeHashes {
		store, err := c.hashStore()
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = store.Close() }
		options = append(options, scan.WithHashSink(store))
	}

	scanner, err := scan.New(opts, options...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return scanner, cleanup, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
