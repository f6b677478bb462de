package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"romrenamer/internal/catalog"
	"romrenamer/internal/catalog/datfile"
	"romrenamer/internal/digest"
	"romrenamer/internal/digestcache"
	"romrenamer/internal/layout"
	"romrenamer/internal/logging"
	"romrenamer/internal/match"
	"romrenamer/internal/mover"
	"romrenamer/internal/report"
	"romrenamer/internal/scan"
)

func newSortCommand(cmdCtx *commandContext) *cobra.Command {
	var dryRun bool
	var copyMode bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "sort <rom-dir>",
		Short: "Classify ROM files and move them into the catalog layout",
		Long: `Sort scans the ROM directory, matches every file against the loaded DAT
catalogs by content digest, and reorganizes the directory: complete games
under a per-console folder with canonical names, partially present games
under an incomplete-games folder with a marker naming what is missing, and
everything else under an unrecognized-files folder.

Unrecognized and incomplete outcomes are expected results, not errors; the
command only fails when the ROM directory is missing or no usable catalog
entries load.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd.Context(), cmdCtx, args[0], sortFlags{
				dryRun: dryRun,
				copy:   copyMode,
				json:   jsonOut,
			}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the move plan without touching any file")
	cmd.Flags().BoolVar(&copyMode, "copy", false, "Copy files into place instead of moving them")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the report and plan as JSON")
	return cmd
}

func newPlanCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "plan <rom-dir>",
		Short: "Show the move plan without touching any file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd.Context(), cmdCtx, args[0], sortFlags{
				dryRun: true,
				json:   jsonOut,
			}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the report and plan as JSON")
	return cmd
}

type sortFlags struct {
	dryRun bool
	copy   bool
	json   bool
}

func runSort(ctx context.Context, cmdCtx *commandContext, romDir string, flags sortFlags, out io.Writer) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return err
	}

	root, err := resolveRomDir(romDir)
	if err != nil {
		return err
	}

	rep := report.New()
	logger = logger.With(logging.String(logging.FieldRunID, rep.RunID))

	entries, err := datfile.LoadDir(cfg.Paths.CatalogDir, rep)
	if err != nil {
		return fmt.Errorf("load catalogs from %s: %w", cfg.Paths.CatalogDir, err)
	}
	idx := catalog.Build(entries, rep)
	if idx.Len() == 0 {
		return fmt.Errorf("no usable catalog entries in %s", cfg.Paths.CatalogDir)
	}
	logger.Info("catalogs loaded",
		logging.Int("entries", idx.Len()),
		logging.Int("consoles", len(idx.ConsoleStats())))

	var cache scan.Cache
	if cfg.DigestCache.Enabled {
		dc, err := digestcache.Open(cfg.DigestCache.Path, logger)
		if err != nil {
			logger.Warn("digest cache unavailable, hashing everything", logging.Error(err))
		} else {
			defer dc.Close()
			cache = dc
		}
	}

	scanner := scan.New(digest.CatalogAlgorithms, cache, logger)
	files, err := scanner.Scan(root)
	if err != nil {
		return err
	}
	if err := scan.Precompute(ctx, files, cfg.Sort.Workers); err != nil {
		return err
	}

	results := match.Classify(files, idx, rep, logger)
	plan := layout.Build(results, root, layout.Options{
		UnrecognizedDir: cfg.Paths.UnrecognizedDir,
		IncompleteDir:   cfg.Paths.IncompleteDir,
	}, rep)

	if !flags.dryRun {
		m := mover.New(logger)
		if _, err := m.Execute(ctx, plan, mover.Options{Copy: flags.copy || cfg.Sort.Copy}, rep); err != nil {
			return err
		}
	}

	if flags.json {
		return writeJSONReport(out, rep, plan)
	}
	renderRun(out, rep, plan, flags.dryRun)
	return nil
}

func resolveRomDir(romDir string) (string, error) {
	root, err := filepath.Abs(romDir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("rom directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("rom directory: %s is not a directory", root)
	}
	return root, nil
}
