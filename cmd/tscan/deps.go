package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"tscan/internal/depgraph"
	"tscan/internal/engine"
	"tscan/internal/report"
	"tscan/internal/source"
)

var depsCmd = &cobra.Command{
	Use:   "deps [flags] [path|glob]...",
	Short: "Show include dependencies",
	Long: `Scan units for quoted includes without running checkers and print the
transitive dependencies of each. With --dep-table the scan extends a saved
table; with no paths only the saved table is shown.`,
	RunE: runDeps,
}

func init() {
	addAnalysisFlags(depsCmd)
	depsCmd.Flags().String("dep-table", "", "load the dependency table from this file and save it back")
	depsCmd.Flags().StringArray("affected", nil, "print the units affected by a change of these files")
	depsCmd.Flags().Bool("order", false, "print units in dependency order, one batch per line")
}

func runDeps(cmd *cobra.Command, args []string) error {
	depTable, err := cmd.Flags().GetString("dep-table")
	if err != nil {
		return fmt.Errorf("failed to get dep-table flag: %w", err)
	}
	changed, err := cmd.Flags().GetStringArray("affected")
	if err != nil {
		return fmt.Errorf("failed to get affected flag: %w", err)
	}
	order, err := cmd.Flags().GetBool("order")
	if err != nil {
		return fmt.Errorf("failed to get order flag: %w", err)
	}
	if len(args) == 0 && depTable == "" {
		return errors.New("nothing to show: give paths or --dep-table")
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	paths, err := expandInputs(args)
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := cmd.Context()

	col := &report.Collector{}
	eng, err := engine.New(ctx, engine.Options{Settings: settings, Reporter: col})
	if err != nil {
		return err
	}
	defer eng.Close()

	if depTable != "" {
		t, _, err := depgraph.LoadTable(depTable)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return err
		default:
			eng.SetFileDependTable(t)
		}
	}
	for _, p := range paths {
		eng.AnalyseFile(ctx, engine.Unit{Path: p})
	}
	for _, d := range col.Findings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", d.Primary(), d.Severity, d.Message)
	}
	if depTable != "" {
		if err := depgraph.SaveTable(depTable, eng.Session().ID, eng.FileDependTable()); err != nil {
			return err
		}
	}

	g := eng.Session().Graph
	out := cmd.OutOrStdout()
	switch {
	case len(changed) > 0:
		for i := range changed {
			changed[i] = source.NormalizePath(changed[i])
		}
		for _, u := range g.Affected(changed...) {
			fmt.Fprintln(out, u)
		}
	case order:
		topo := g.Toposort()
		for _, batch := range topo.Batches {
			fmt.Fprintln(out, strings.Join(batch, " "))
		}
		if topo.Cyclic {
			return fmt.Errorf("include cycle through %s", strings.Join(topo.Cycles, ", "))
		}
	default:
		units := g.Units()
		if len(paths) > 0 {
			units = nil
			for _, p := range paths {
				units = append(units, source.NormalizePath(p))
			}
		}
		for _, u := range units {
			fmt.Fprintf(out, "%s: %s\n", u, strings.Join(g.Transitive(u), " "))
		}
	}
	return nil
}
