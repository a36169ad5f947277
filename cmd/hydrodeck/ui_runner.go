package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"hydrodeck/internal/driver"
	"hydrodeck/internal/ui"
)

type parseOutcome struct {
	result *driver.Result
	err    error
}

// runParseWithUI runs a directory parse while a Bubble Tea program renders
// its progress events to out.
func runParseWithUI(ctx context.Context, out io.Writer, dir string, files []string, opts driver.Options) (*driver.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan parseOutcome, 1)
	go func() {
		optsCopy := opts
		optsCopy.Progress = events
		res, err := driver.ParseDir(ctx, dir, optsCopy)
		outcomeCh <- parseOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("parse "+dir, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// окно закрыто раньше времени: останавливаем разбор
	cancel()
	outcome := <-outcomeCh
	if outcome.err != nil {
		return outcome.result, outcome.err
	}
	return outcome.result, uiErr
}
