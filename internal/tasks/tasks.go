// package tasks implements bulk operations over practice history.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/services"
	"github.com/desertthunder/practicebook/internal/shared"
)

// SelectOpts narrows the regiments returned by [ExportEngine.Select].
type SelectOpts struct {
	IDs   []string  // Regiment IDs to include (all when empty)
	Since time.Time // Only regiments dated on or after Since (ignored when zero)
}

// ExportEngine exports practice history loaded through a [services.Service].
type ExportEngine struct {
	service services.Service
}

// NewExportEngine creates a new ExportEngine for the provided service.
func NewExportEngine(service services.Service) *ExportEngine {
	return &ExportEngine{service: service}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Select loads regiments and filters them by opts, keeping the service's newest-first order.
//
// Every requested ID must exist; a missing one yields [shared.ErrRegimentNotFound].
func (e *ExportEngine) Select(ctx context.Context, progress chan<- ProgressUpdate, opts SelectOpts) ([]models.Regiment, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, loadingRegimentsUpdate(e.service.Name()))

	regiments, err := e.service.LoadRegiments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load regiments: %w", err)
	}

	wanted := make(map[string]bool, len(opts.IDs))
	for _, id := range opts.IDs {
		wanted[id] = true
	}

	since := calendarDay(opts.Since)
	selected := make([]models.Regiment, 0, len(regiments))
	for _, r := range regiments {
		if len(wanted) > 0 && !wanted[r.ID] {
			continue
		}
		if !opts.Since.IsZero() && calendarDay(r.Date).Before(since) {
			continue
		}
		selected = append(selected, r)
		delete(wanted, r.ID)
	}

	for _, id := range opts.IDs {
		if wanted[id] {
			return nil, fmt.Errorf("%w: %s", shared.ErrRegimentNotFound, id)
		}
	}

	e.sendProgress(progress, loadedRegimentsUpdate(len(selected)))
	return selected, nil
}

// calendarDay maps t to midnight UTC of its own calendar day, the form regiment dates are stored in.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
