package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
	"github.com/desertthunder/cinedb/internal/tasks"
	"github.com/desertthunder/cinedb/internal/ui"
)

const tuiLogPath = "./tmp/cinedb-tui.log"

// Browse launches the interactive catalog browser, optionally importing a catalog file first.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	var entries []models.CatalogEntry
	if path := cmd.String("import"); path != "" {
		loaded, err := tasks.LoadCatalogFile(path)
		if err != nil {
			return err
		}
		entries = loaded
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	if err := os.MkdirAll(filepath.Dir(tuiLogPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(tuiLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()

	fileLogger := shared.NewLogger(logFile)
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, catalog, tasks.NewImporter(catalog, tasks.ImportOpts{Workers: 2}), entries)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return model.Err()
}
