package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			CatalogDir:      "DATs",
			UnrecognizedDir: "Unrecognised files",
			IncompleteDir:   "Incomplete games",
		},
		Sort: Sort{
			Workers: 0, // scanner default
			Copy:    false,
		},
		DigestCache: DigestCache{
			Enabled: false,
			Path:    defaultCacheDBPath(),
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}

func defaultCacheDBPath() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && base != "" {
		return filepath.Join(base, "romrenamer", "digests.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "digests.db")
	}
	return filepath.Join(home, ".cache", "romrenamer", "digests.db")
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.CatalogDir != "" {
		if c.Paths.CatalogDir, err = expandPath(c.Paths.CatalogDir); err != nil {
			return fmt.Errorf("catalog_dir: %w", err)
		}
	}
	if c.DigestCache.Path != "" {
		if c.DigestCache.Path, err = expandPath(c.DigestCache.Path); err != nil {
			return fmt.Errorf("digest_cache.path: %w", err)
		}
	}
	if c.Logging.File != "" {
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}
