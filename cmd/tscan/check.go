package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tscan/internal/config"
	"tscan/internal/depgraph"
	"tscan/internal/diag"
	"tscan/internal/diagfmt"
	"tscan/internal/engine"
	"tscan/internal/report"
	"tscan/internal/source"
	"tscan/internal/version"
)

// sourcePattern selects units when a directory is given.
const sourcePattern = "**/*.{c,cc,cpp,cxx}"

var checkCmd = &cobra.Command{
	Use:   "check [flags] <path|glob>...",
	Short: "Check translation units",
	Long: `Check every preprocessor configuration of the given units.
Directories are searched for C and C++ sources; arguments with glob
metacharacters are expanded with ** support.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	addAnalysisFlags(checkCmd)
	checkCmd.Flags().String("format", "text", "output format (text|short|json|sarif)")
	checkCmd.Flags().String("path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
	checkCmd.Flags().String("ui", "auto", "progress UI mode (auto|on|off)")
	checkCmd.Flags().IntP("jobs", "j", 0, "number of parallel engines (0 = from settings, default 1)")
	checkCmd.Flags().String("dep-table", "", "load and save the include dependency table in this file")
	checkCmd.Flags().Bool("code", true, "show the offending line of code in text output")
	checkCmd.Flags().Bool("fingerprints", false, "print diagnostic fingerprints (for minimize --fingerprint)")
	checkCmd.Flags().Int("error-exitcode", 1, "exit code when errors are found")
}

type checkOutcome struct {
	summary engine.Summary
	unused  int
	err     error
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "text", "short", "json", "sarif":
	default:
		return fmt.Errorf("unsupported format %q (must be text, short, json or sarif)", format)
	}
	pathFlag, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, ok := diagfmt.ParsePathMode(pathFlag)
	if !ok {
		return fmt.Errorf("invalid --path-mode %q (expected auto|absolute|relative|basename)", pathFlag)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	depTable, err := cmd.Flags().GetString("dep-table")
	if err != nil {
		return fmt.Errorf("failed to get dep-table flag: %w", err)
	}
	withFingerprints, err := cmd.Flags().GetBool("fingerprints")
	if err != nil {
		return fmt.Errorf("failed to get fingerprints flag: %w", err)
	}
	withCode, err := cmd.Flags().GetBool("code")
	if err != nil {
		return fmt.Errorf("failed to get code flag: %w", err)
	}
	errorExit, err := cmd.Flags().GetInt("error-exitcode")
	if err != nil {
		return fmt.Errorf("failed to get error-exitcode flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if jobs <= 0 {
		jobs = settings.Check.Jobs
	}
	jobs = max(jobs, 1)

	paths, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no source files match %s", strings.Join(args, " "))
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timings := &report.Collector{}
	var status report.Reporter = report.Nop{}
	if !quiet && format == "text" {
		status = statusPrinter{w: cmd.ErrOrStderr()}
	}

	var (
		events  chan report.Event
		outcome checkOutcome
		primary *engine.Engine
	)
	useTUI := shouldUseTUI(mode, format)
	if useTUI {
		events = make(chan report.Event, 256)
		status = report.NewChannel(events)
	}

	primary, err = engine.New(ctx, engine.Options{Settings: settings, Reporter: report.Multi{timings, status}})
	if err != nil {
		return err
	}
	defer primary.Close()

	if depTable != "" {
		session, loaded, err := restoreDependTable(primary, depTable)
		if err != nil {
			return err
		}
		if loaded && !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "loaded dependency table of session %s\n", session)
		}
	}

	units := make([]engine.Unit, len(paths))
	for i, p := range paths {
		units[i] = engine.Unit{Path: p}
	}

	work := func() checkOutcome {
		var out checkOutcome
		out.summary, out.err = checkSharded(ctx, primary, settings, units, jobs, report.Multi{timings, status})
		if out.err == nil && out.summary.Status != engine.StatusPartial {
			// по неполному набору юнитов проход даст ложные срабатывания
			out.unused = primary.CheckFunctionUsage(ctx)
		}
		return out
	}

	if useTUI {
		outcome, err = runWithUI(fmt.Sprintf("tscan %s", version.Plain()), paths, events, cancel, work)
		if err != nil {
			return err
		}
	} else {
		outcome = work()
	}
	if outcome.err != nil {
		return outcome.err
	}

	if depTable != "" {
		if err := depgraph.SaveTable(depTable, primary.Session().ID, primary.FileDependTable()); err != nil {
			return err
		}
	}

	diags := primary.Session().Diagnostics()
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		payload := checkPayload{
			Tool:         "tscan",
			Version:      primary.Version(),
			Session:      primary.Session().ID,
			Status:       outcome.summary.Status.String(),
			Units:        outcome.summary.Checked,
			Errors:       primary.ExitCode(),
			Suppressed:   primary.Session().Sink.Suppressed(),
			Diagnostics:  diagfmt.BuildDiagnosticsOutput(diags, diagfmt.JSONOpts{PathMode: pathMode, IncludeNotes: true}).Diagnostics,
			Dependencies: primary.Dependencies(),
		}
		for _, d := range timings.Infos {
			payload.Timings = append(payload.Timings, d.Unit+": "+d.Message)
		}
		if err := diagfmt.JSON(out, payload); err != nil {
			return err
		}
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "tscan",
			ToolVersion:    primary.Version(),
			InvocationArgs: os.Args[1:],
		}
		for _, m := range primary.ErrorMessages() {
			meta.Rules = append(meta.Rules, diagfmt.SarifRule{ID: m.ID, Summary: m.Summary, Severity: diagfmt.SarifLevel(m.Severity)})
		}
		if err := diagfmt.Sarif(out, diags, meta); err != nil {
			return err
		}
	case "short":
		if len(diags) > 0 {
			fmt.Fprintln(out, diag.FormatShort(diags, true))
		}
	default:
		var snippets *source.FileSet
		if withCode {
			// юниты шардов в основную сессию не попали, их дочитает Pretty
			snippets = primary.Session().Files
		}
		diagfmt.Pretty(out, diags, diagfmt.PrettyOpts{
			Color:        useColor(colorFlag, os.Stdout),
			PathMode:     pathMode,
			ShowNotes:    true,
			ShowConfigs:  true,
			Fingerprints: withFingerprints,
			Files:        snippets,
		})
		for _, d := range timings.Infos {
			fmt.Fprintf(cmd.ErrOrStderr(), "timings %s: %s\n", d.Unit, d.Message)
		}
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d units checked (%s), %d findings, %d suppressed\n",
				outcome.summary.Checked, outcome.summary.Status, len(diags), primary.Session().Sink.Suppressed())
		}
	}

	if primary.ExitCode() > 0 && errorExit != 0 {
		return exitCodeError{code: errorExit}
	}
	return nil
}

// checkSharded runs CheckAll on the primary engine or, with jobs > 1, on one
// engine per shard and merges their sessions into the primary one.
func checkSharded(ctx context.Context, primary *engine.Engine, settings *config.Settings, units []engine.Unit, jobs int, rep report.Reporter) (engine.Summary, error) {
	if jobs <= 1 || len(units) < 2 {
		return primary.CheckAll(ctx, units), nil
	}

	shards := shardUnits(units, jobs)
	engines := make([]*engine.Engine, len(shards))
	summaries := make([]engine.Summary, len(shards))
	for i := range shards {
		eng, err := engine.New(ctx, engine.Options{Settings: settings, Reporter: noStatus{rep}})
		if err != nil {
			return engine.Summary{}, err
		}
		defer eng.Close()
		engines[i] = eng
	}
	// таблица зависимостей нужна каждому шарду
	if t := primary.FileDependTable(); len(t) > 0 {
		for _, eng := range engines {
			eng.SetFileDependTable(t.Clone())
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		g.Go(func() error {
			summaries[i] = engines[i].CheckAll(gctx, shard)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return engine.Summary{}, err
	}

	var sum engine.Summary
	for i, eng := range engines {
		if err := primary.Session().Merge(eng.Session()); err != nil {
			return sum, err
		}
		sum.Count += summaries[i].Count
		sum.Checked += summaries[i].Checked
		if summaries[i].Status == engine.StatusPartial {
			sum.Status = engine.StatusPartial
		}
	}
	return sum, nil
}

// shardUnits deals units round-robin so that large directories spread out.
func shardUnits(units []engine.Unit, n int) [][]engine.Unit {
	n = min(n, len(units))
	shards := make([][]engine.Unit, n)
	for i, u := range units {
		shards[i%n] = append(shards[i%n], u)
	}
	return shards
}

// expandInputs turns arguments into a sorted list of unique file paths.
func expandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if strings.ContainsAny(arg, "*?[{") {
			matches, err := doublestar.FilepathGlob(arg)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && !info.IsDir() {
					out = append(out, m)
				}
			}
			continue
		}
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// отсутствующий файл станет fileAccessError в отчёте
			out = append(out, arg)
			continue
		}
		fsys := os.DirFS(arg)
		matches, err := doublestar.Glob(fsys, sourcePattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if info, err := fs.Stat(fsys, m); err == nil && !info.IsDir() {
				out = append(out, filepath.Join(arg, filepath.FromSlash(m)))
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// restoreDependTable hands the table saved at path to e. A missing file is
// not an error: the first run has nothing to restore.
func restoreDependTable(e *engine.Engine, path string) (session string, loaded bool, err error) {
	t, session, err := depgraph.LoadTable(path)
	if err != nil || t == nil {
		return "", false, err
	}
	e.SetFileDependTable(t)
	return session, true, nil
}
