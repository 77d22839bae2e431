package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/shared"
	"github.com/desertthunder/listify/internal/tasks"
	"github.com/desertthunder/listify/internal/ui"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	if err := r.requireSession(ctx); err != nil {
		return err
	}

	notices := make(chan models.Notice, 16)
	progress := make(chan tasks.ProgressUpdate, 64)
	r.engine = tasks.NewPlaylistEngine(r.client, r.session, tasks.EngineOpts{
		Notifier:        ui.ChannelNotifier(notices),
		Logger:          shared.WithLogger(fileLogger, "component", "engine"),
		Progress:        progress,
		AttachRateLimit: r.config.Engine.AttachRateLimit,
	})

	model := ui.NewModel(ctx, ui.Deps{
		Catalog:  r.catalog,
		Cart:     r.cart,
		Engine:   r.engine,
		Notices:  notices,
		Progress: progress,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
