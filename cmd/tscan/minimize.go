package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tscan/internal/diag"
	"tscan/internal/engine"
	"tscan/internal/minimize"
	"tscan/internal/report"
	"tscan/internal/source"
)

var minimizeCmd = &cobra.Command{
	Use:   "minimize [flags] <file>",
	Short: "Reduce a unit to the lines needed for one finding",
	Long: `Reduce a unit with delta debugging until removing any single line loses
the selected finding. Select it with --id (and optionally --line) or with a
fingerprint prefix printed by "check --fingerprints".`,
	Args: cobra.ExactArgs(1),
	RunE: runMinimize,
}

func init() {
	addAnalysisFlags(minimizeCmd)
	minimizeCmd.Flags().String("id", "", "checker id of the finding")
	minimizeCmd.Flags().Uint32("line", 0, "line of the finding (with --id)")
	minimizeCmd.Flags().String("fingerprint", "", "fingerprint prefix of the finding")
	minimizeCmd.Flags().StringP("output", "o", "", "write the reduced unit here (default: stdout)")
	minimizeCmd.Flags().IntP("jobs", "j", 1, "chunks tested in parallel")
	minimizeCmd.Flags().Int("cache-size", minimize.DefaultCacheSize, "memoized oracle results")
}

func runMinimize(cmd *cobra.Command, args []string) error {
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return fmt.Errorf("failed to get id flag: %w", err)
	}
	line, err := cmd.Flags().GetUint32("line")
	if err != nil {
		return fmt.Errorf("failed to get line flag: %w", err)
	}
	prefix, err := cmd.Flags().GetString("fingerprint")
	if err != nil {
		return fmt.Errorf("failed to get fingerprint flag: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	cacheSize, err := cmd.Flags().GetInt("cache-size")
	if err != nil {
		return fmt.Errorf("failed to get cache-size flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if id == "" && prefix == "" {
		return errors.New("select a finding with --id or --fingerprint")
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	unit := source.NormalizePath(args[0])
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	text := string(data)

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := cmd.Context()

	// исходная проверка нужна, чтобы выбрать цель
	initial, err := engine.New(ctx, engine.Options{Settings: settings})
	if err != nil {
		return err
	}
	initial.CheckContent(ctx, unit, text)
	target, err := pickTarget(initial.Session().Diagnostics(), unit, id, line, prefix)
	_ = initial.Close()
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	opts := minimize.Options{Jobs: jobs, CacheSize: cacheSize}
	if !quiet {
		fmt.Fprintf(stderr, "minimizing %s for %s %s\n", unit, target.ID, target.Primary())
		opts.OnStep = func(s minimize.Step) {
			mark := " "
			if s.Removed {
				mark = "-"
			}
			fmt.Fprintf(stderr, "%s granularity %d, %d lines\n", mark, s.Granularity, s.Lines)
		}
	}

	col := &report.Collector{}
	res, err := engine.Minimize(ctx, engine.Options{Settings: settings, Reporter: col}, unit, text, target.Fingerprint(), opts)
	if err != nil {
		if errors.Is(err, minimize.ErrPrecondition) {
			for _, d := range col.Findings() {
				fmt.Fprintf(stderr, "%s: %s\n", d.ID, d.Message)
			}
		}
		if fatal := minimizeFailure(res, err); fatal != nil {
			return fatal
		}
		fmt.Fprintf(stderr, "stopped early: %v\n", err)
	}

	if output == "" {
		fmt.Fprint(cmd.OutOrStdout(), res.Text)
	} else if err := os.WriteFile(output, []byte(res.Text), 0o644); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(stderr, "%d of %d lines kept, %d tests, %d cached\n",
			len(res.Lines), res.OriginalLines, res.Tests, res.CacheHits)
	}
	return nil
}

// minimizeFailure returns err unless res is a usable partial reduction.
// A failed precondition carries the untouched original text, which is not one.
func minimizeFailure(res minimize.Result, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, minimize.ErrPrecondition) || res.Text == "" {
		return err
	}
	// прерванный прогон всё равно отдаёт лучший найденный вариант
	return nil
}

// pickTarget finds exactly one diagnostic of unit matching the selectors.
func pickTarget(diags []diag.Diagnostic, unit, id string, line uint32, prefix string) (diag.Diagnostic, error) {
	var matches []diag.Diagnostic
	for _, d := range diags {
		if d.Primary().File != unit {
			continue
		}
		if id != "" && d.ID != id {
			continue
		}
		if line != 0 && d.Primary().Line != line {
			continue
		}
		if prefix != "" && !strings.HasPrefix(string(d.Fingerprint()), prefix) {
			continue
		}
		matches = append(matches, d)
	}
	switch len(matches) {
	case 0:
		return diag.Diagnostic{}, fmt.Errorf("no finding in %s matches the selection", unit)
	case 1:
		return matches[0], nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d findings match, narrow the selection:", len(matches))
	for _, d := range matches {
		fmt.Fprintf(&b, "\n  %s %s %s", d.Fingerprint().Short(), d.ID, d.Primary())
	}
	return diag.Diagnostic{}, errors.New(b.String())
}
