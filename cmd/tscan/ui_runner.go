package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tscan/internal/report"
	"tscan/internal/ui"
)

// runWithUI runs work in the background while the progress model follows
// events. events is closed once work returns, which ends the program. When
// the user quits the program first, cancel stops the work at the next unit.
func runWithUI(title string, files []string, events chan report.Event, cancel context.CancelFunc, work func() checkOutcome) (checkOutcome, error) {
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		outcome := work()
		outcomeCh <- outcome
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	cancel()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome, uiErr
	}
	return outcome, nil
}
