package config

import (
	"fmt"
	"strings"
)

// Validate checks constraints a config file could violate. Paths are not
// required to exist here; the commands that need them report missing
// directories with better context.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.CatalogDir) == "" {
		return fmt.Errorf("paths.catalog_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.UnrecognizedDir) == "" {
		return fmt.Errorf("paths.unrecognized_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.IncompleteDir) == "" {
		return fmt.Errorf("paths.incomplete_dir must not be empty")
	}
	if strings.ContainsAny(c.Paths.UnrecognizedDir, `/\`) || strings.ContainsAny(c.Paths.IncompleteDir, `/\`) {
		return fmt.Errorf("unrecognized_dir and incomplete_dir must be single folder names")
	}
	if c.Sort.Workers < 0 {
		return fmt.Errorf("sort.workers must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.DigestCache.Enabled && strings.TrimSpace(c.DigestCache.Path) == "" {
		return fmt.Errorf("digest_cache.path must be set when the cache is enabled")
	}
	return nil
}
