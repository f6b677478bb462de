package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"romrenamer/internal/catalog"
	"romrenamer/internal/catalog/datfile"
	"romrenamer/internal/report"
)

func newCatalogsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "catalogs",
		Short: "List the catalogs the configured DAT directory provides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			rep := report.New()
			entries, err := datfile.LoadDir(cfg.Paths.CatalogDir, rep)
			if err != nil {
				return fmt.Errorf("load catalogs from %s: %w", cfg.Paths.CatalogDir, err)
			}
			idx := catalog.Build(entries, rep)
			if idx.Len() == 0 {
				return fmt.Errorf("no usable catalog entries in %s", cfg.Paths.CatalogDir)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0)
			for _, stat := range idx.ConsoleStats() {
				rows = append(rows, []string{
					stat.Console,
					strconv.Itoa(stat.Games),
					strconv.Itoa(stat.Members),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Console", "Games", "Members"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))

			if problems := rep.Problems(); len(problems) > 0 {
				fmt.Fprintf(out, "\n%d catalog problems:\n", len(problems))
				for _, problem := range problems {
					fmt.Fprintf(out, "  %s\n", problem)
				}
			}
			return nil
		},
	}
}
