package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/practicebook/internal/formatter"
	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
	"github.com/desertthunder/practicebook/internal/tasks"
	"github.com/urfave/cli/v3"
)

// RegimentCreate creates a regiment from --date and repeated --piece flags.
func (r *Runner) RegimentCreate(ctx context.Context, cmd *cli.Command) error {
	date, err := models.ParseDate(strings.TrimSpace(cmd.String("date")), time.Local, time.Now())
	if err != nil {
		return err
	}

	draft := models.NewDraftRegiment(date)
	for _, name := range cmd.StringSlice("piece") {
		if !draft.AddPiece(name) {
			r.logger.Warn("skipping blank piece name")
		}
	}

	svc, err := r.Service()
	if err != nil {
		return err
	}

	r.logger.Info("creating regiment", "date", date.Format(time.DateOnly), "pieces", len(draft.Pieces), "backend", svc.Name())
	created, err := svc.CreateRegiment(ctx, draft)
	if err != nil {
		return fmt.Errorf("failed to create regiment: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(created, true)
	}

	r.writePlain("✓ Created regiment %s (%s)\n", formatter.Label(created), created.ID)
	r.writePlain("%s\n", models.WeekTitle(created.Date))
	for i, p := range created.Pieces {
		r.writePlain("  %d. %s\n", i+1, p.Name)
	}
	return nil
}

// RegimentList prints all regiments, newest first.
func (r *Runner) RegimentList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.Service()
	if err != nil {
		return err
	}

	regiments, err := svc.LoadRegiments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load regiments: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(regiments, cmd.Bool("pretty"))
	}

	if len(regiments) == 0 {
		return r.writePlain("No regiments yet. Create one with `practicebook regiment create`.\n")
	}

	for i := range regiments {
		text, err := formatter.ExportToText(&regiments[i])
		if err != nil {
			return err
		}
		if i > 0 {
			r.writePlain("\n")
		}
		r.writePlain("%s", text)
	}
	return nil
}

// RegimentDelete deletes the regiment named by the id argument.
func (r *Runner) RegimentDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: regiment id", shared.ErrMissingArgument)
	}

	svc, err := r.Service()
	if err != nil {
		return err
	}

	if err := svc.DeleteRegiment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete regiment: %w", err)
	}
	r.logger.Info("deleted regiment", "id", id)
	return r.writePlain("✓ Deleted regiment %s\n", id)
}

// RegimentExport writes selected regiments to files with a manifest.
func (r *Runner) RegimentExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var since time.Time
	if value := strings.TrimSpace(cmd.String("since")); value != "" {
		if since, err = models.ParseDate(value, time.Local, time.Now()); err != nil {
			return err
		}
	}

	svc, err := r.Service()
	if err != nil {
		return err
	}
	engine := tasks.NewExportEngine(svc)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.LoadRegiments:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ExportRegiment:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := func() (*tasks.BulkExportResult, error) {
		defer close(progressCh)
		regiments, err := engine.Select(ctx, progressCh, tasks.SelectOpts{IDs: cmd.StringSlice("id"), Since: since})
		if err != nil {
			return nil, err
		}
		return engine.BulkExport(ctx, progressCh, regiments, tasks.BulkExportOpts{
			Format:     format,
			OutputDir:  cmd.String("output"),
			NumWorkers: int(cmd.Int("workers")),
		})
	}()
	<-done

	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Format: %s\n", result.Format)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalRegiments)

	if result.FailedExports > 0 {
		r.writePlainln("Failed to export %d regiments:", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  • %s: %s\n", res.Label, res.ErrorText)
			}
		}
	}
	return nil
}
