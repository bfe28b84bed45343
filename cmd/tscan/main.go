package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tscan/internal/prof"
	"tscan/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "tscan",
	Short:         "Static analyzer for C-like sources",
	Long:          `tscan checks every preprocessor configuration of a translation unit and reports findings once`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCodeError carries a non-zero exit status without printing anything.
type exitCodeError struct{ code int }

func (e exitCodeError) Error() string { return "findings reported" }

// main registers subcommands and persistent flags and runs the root command.
// Errors exit with status 1; a check with error findings exits with
// --error-exitcode.
func main() {
	rootCmd.Version = version.Plain()

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(minimizeCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(checksCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("config", "", "settings file (default: nearest tscan.toml)")

	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("exectrace", "", "write a Go execution trace to this file")
	rootCmd.PersistentPreRunE = startProfiling

	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|session|unit|config|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept in ring mode")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")

	err := rootCmd.Execute()
	if stopErr := activeProfile.Stop(); stopErr != nil {
		rootCmd.PrintErrln("profile:", stopErr)
	}
	if err != nil {
		var exit exitCodeError
		if errors.As(err, &exit) {
			os.Exit(min(exit.code, 255))
		}
		rootCmd.PrintErrln("error:", err)
		os.Exit(1)
	}
}

var activeProfile *prof.Profile

func startProfiling(cmd *cobra.Command, _ []string) error {
	var opts prof.Options
	var err error
	flags := cmd.Root().PersistentFlags()
	if opts.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	if opts.Mem, err = flags.GetString("memprofile"); err != nil {
		return fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	if opts.Trace, err = flags.GetString("exectrace"); err != nil {
		return fmt.Errorf("failed to get exectrace flag: %w", err)
	}
	if !opts.Enabled() {
		return nil
	}
	activeProfile, err = prof.Start(opts)
	return err
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
