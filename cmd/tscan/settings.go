package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tscan/internal/config"
	"tscan/internal/suppress"
)

// addAnalysisFlags registers the flags shared by every command that runs
// the engine. They override values from tscan.toml.
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("define", "D", nil, "define a macro for every configuration (NAME or NAME=VALUE)")
	cmd.Flags().StringArrayP("undef", "U", nil, "never define this macro")
	cmd.Flags().StringArray("suppress", nil, "suppress findings (id[:file[:line]], file may be a glob)")
	cmd.Flags().Bool("no-global-suppressions", false, "ignore --suppress and [[suppress]] rules, keep inline markers")
	cmd.Flags().StringSlice("enable", nil, "run only checkers matching these patterns")
	cmd.Flags().Int("max-configs", config.DefaultMaxConfigs, "maximum configurations checked per unit")
	cmd.Flags().Bool("force", false, "check every configuration")
	cmd.Flags().Bool("timings", false, "report per-phase timings")
	cmd.Flags().Bool("no-unused", false, "skip the cross-unit unused function pass")
	cmd.Flags().StringArray("entry-point", nil, "function name pattern never reported as unused")
}

// loadSettings reads --config (or the nearest tscan.toml) and applies the
// analysis flags of cmd on top.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	var s config.Settings
	if path != "" {
		s, err = config.Load(path)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err != nil {
			return nil, err
		}
		s, err = config.LoadNearest(wd)
	}
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func applyFlags(cmd *cobra.Command, s *config.Settings) error {
	flags := cmd.Flags()
	if flags.Lookup("define") == nil {
		return nil
	}

	defines, err := flags.GetStringArray("define")
	if err != nil {
		return fmt.Errorf("failed to get define flag: %w", err)
	}
	s.Preprocessor.Defines = append(s.Preprocessor.Defines, defines...)

	undefs, err := flags.GetStringArray("undef")
	if err != nil {
		return fmt.Errorf("failed to get undef flag: %w", err)
	}
	s.Preprocessor.Undefs = append(s.Preprocessor.Undefs, undefs...)

	rules, err := flags.GetStringArray("suppress")
	if err != nil {
		return fmt.Errorf("failed to get suppress flag: %w", err)
	}
	for _, text := range rules {
		r, err := suppress.Parse(text)
		if err != nil {
			return fmt.Errorf("--suppress %q: %w", text, err)
		}
		s.Suppress = append(s.Suppress, config.SuppressEntry{ID: r.ID, File: r.File, Line: r.Line})
	}

	noGlobal, err := flags.GetBool("no-global-suppressions")
	if err != nil {
		return fmt.Errorf("failed to get no-global-suppressions flag: %w", err)
	}
	if noGlobal {
		s.Check.GlobalSuppressions = false
	}

	if flags.Changed("enable") {
		enabled, err := flags.GetStringSlice("enable")
		if err != nil {
			return fmt.Errorf("failed to get enable flag: %w", err)
		}
		s.Check.Enabled = enabled
	}
	if flags.Changed("max-configs") {
		if s.Check.MaxConfigs, err = flags.GetInt("max-configs"); err != nil {
			return fmt.Errorf("failed to get max-configs flag: %w", err)
		}
	}
	if flags.Changed("force") {
		if s.Check.Force, err = flags.GetBool("force"); err != nil {
			return fmt.Errorf("failed to get force flag: %w", err)
		}
	}
	if flags.Changed("timings") {
		if s.Check.Timings, err = flags.GetBool("timings"); err != nil {
			return fmt.Errorf("failed to get timings flag: %w", err)
		}
	}
	noUnused, err := flags.GetBool("no-unused")
	if err != nil {
		return fmt.Errorf("failed to get no-unused flag: %w", err)
	}
	if noUnused {
		s.Unused.Enabled = false
	}
	entries, err := flags.GetStringArray("entry-point")
	if err != nil {
		return fmt.Errorf("failed to get entry-point flag: %w", err)
	}
	s.Unused.EntryPoints = append(s.Unused.EntryPoints, entries...)

	// ошибки валидации покажем сразу, а не диагностикой на каждый юнит
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%s: %w", settingsOrigin(s), err)
	}
	return nil
}

func settingsOrigin(s *config.Settings) string {
	if s.Path == "" {
		return "settings"
	}
	return strings.TrimPrefix(s.Path, "./")
}
