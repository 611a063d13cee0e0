package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/practicebook/internal/services"
	"github.com/desertthunder/practicebook/internal/shared"
	"github.com/desertthunder/practicebook/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Telemetry.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	svc, err := r.Service()
	if err != nil {
		return err
	}

	if local, ok := svc.(*services.LocalService); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		stop := r.startTelemetry(ctx, local, true)
		defer func() {
			cancel()
			stop()
		}()
	}

	model := ui.NewModel(ctx, svc, r.logger)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
