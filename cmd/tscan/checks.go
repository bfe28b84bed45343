package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"tscan/internal/diagfmt"
	"tscan/internal/engine"
)

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List every diagnostic id tscan can report",
	Args:  cobra.NoArgs,
	RunE:  runChecks,
}

func init() {
	checksCmd.Flags().String("format", "text", "output format (text|json)")
	checksCmd.Flags().StringSlice("enable", nil, "list only checkers matching these patterns")
}

type checkDescription struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
}

func runChecks(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}
	enabled, err := cmd.Flags().GetStringSlice("enable")
	if err != nil {
		return fmt.Errorf("failed to get enable flag: %w", err)
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if len(enabled) > 0 {
		settings.Check.Enabled = enabled
	}

	eng, err := engine.New(cmd.Context(), engine.Options{Settings: settings})
	if err != nil {
		return err
	}
	defer eng.Close()
	if len(settings.Check.Enabled) > 0 {
		if _, err := eng.Registry().Select(settings.Check.Enabled); err != nil {
			return err
		}
	}
	descs := eng.ErrorMessages()

	out := cmd.OutOrStdout()
	if format == "json" {
		payload := make([]checkDescription, 0, len(descs))
		for _, d := range descs {
			payload = append(payload, checkDescription{ID: d.ID, Severity: d.Severity.String(), Summary: d.Summary})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	color.NoColor = !useColor(colorFlag, os.Stdout)

	width := 0
	for _, d := range descs {
		width = max(width, runewidth.StringWidth(d.ID))
	}
	for _, d := range descs {
		sev := runewidth.FillRight(d.Severity.String(), 12)
		sev = diagfmt.SeverityColor(d.Severity).Sprint(sev)
		fmt.Fprintf(out, "%s %s %s\n", runewidth.FillRight(d.ID, width), sev, d.Summary)
	}
	return nil
}
