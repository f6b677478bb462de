package config_test

import (
	"path/filepath"
	"strings"
	"testing"

	"romrenamer/internal/config"
	"romrenamer/internal/testsupport"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("file does not exist, exists must be false")
	}
	if resolved != path {
		t.Fatalf("resolved = %s, want %s", resolved, path)
	}
	if cfg.Paths.UnrecognizedDir != "Unrecognised files" {
		t.Fatalf("unrecognized_dir default = %q", cfg.Paths.UnrecognizedDir)
	}
	if cfg.Paths.IncompleteDir != "Incomplete games" {
		t.Fatalf("incomplete_dir default = %q", cfg.Paths.IncompleteDir)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "auto" {
		t.Fatalf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.DigestCache.Enabled {
		t.Fatal("digest cache must default to disabled")
	}
}

func TestLoadOverridesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	testsupport.WriteFile(t, path, []byte(`
[paths]
catalog_dir = "my-dats"

[sort]
workers = 8
copy = true

[logging]
level = "debug"
format = "json"
`))

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("exists must be true")
	}
	if !filepath.IsAbs(cfg.Paths.CatalogDir) {
		t.Fatalf("catalog_dir not expanded: %q", cfg.Paths.CatalogDir)
	}
	if filepath.Base(cfg.Paths.CatalogDir) != "my-dats" {
		t.Fatalf("catalog_dir = %q", cfg.Paths.CatalogDir)
	}
	if cfg.Sort.Workers != 8 || !cfg.Sort.Copy {
		t.Fatalf("sort = %+v", cfg.Sort)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		toml string
		want string
	}{
		{"empty catalog dir", "[paths]\ncatalog_dir = \"\"\n", "catalog_dir"},
		{"nested unrecognized dir", "[paths]\nunrecognized_dir = \"a/b\"\n", "single folder"},
		{"negative workers", "[sort]\nworkers = -1\n", "workers"},
		{"bad level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"cache without path", "[digest_cache]\nenabled = true\npath = \"\"\n", "digest_cache.path"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			testsupport.WriteFile(t, path, []byte(tc.toml))

			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	// The shipped sample must itself load and validate.
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample was not read")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample invalid: %v", err)
	}

	if err := config.CreateSample(path); err == nil {
		t.Fatal("CreateSample must refuse to overwrite")
	}
}

func TestExpandPath(t *testing.T) {
	abs, err := config.ExpandPath("~/roms")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if !filepath.IsAbs(abs) || strings.Contains(abs, "~") {
		t.Fatalf("tilde not expanded: %q", abs)
	}

	rel, err := config.ExpandPath("some/dir")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if !filepath.IsAbs(rel) {
		t.Fatalf("relative path not made absolute: %q", rel)
	}
}
