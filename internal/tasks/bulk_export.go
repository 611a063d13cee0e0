package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/practicebook/internal/formatter"
	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
	manifestName   = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk regiment exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format: csv, markdown, txt, json
	OutputDir  string           // Base output directory (default: practicebook_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
}

// RegimentExportResult is the outcome of exporting one regiment.
type RegimentExportResult struct {
	RegimentID string   `json:"regiment_id"`
	Label      string   `json:"label"`
	Success    bool     `json:"success"`
	Files      []string `json:"files,omitempty"`
	Error      error    `json:"-"`
	ErrorText  string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	TotalRegiments    int                    `json:"total_regiments"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	Format            formatter.Format       `json:"format"`
	ExportedAt        time.Time              `json:"exported_at"`
	Results           []RegimentExportResult `json:"results"`
	ManifestPath      string                 `json:"-"`
}

type exportJob struct {
	index    int
	regiment models.Regiment
}

// BulkExport exports regiments concurrently with progress tracking.
//
// Implements a worker pool: each job writes one regiment in opts.Format, partial failures are recorded per regiment,
// and a manifest summarizing the run is written to the output directory. Cancelling ctx stops dispatching new jobs.
func (e *ExportEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	regiments []models.Regiment,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if _, err := formatter.ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("practicebook_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(regiments)
	result := &BulkExportResult{
		TotalRegiments:  total,
		OutputDirectory: opts.OutputDir,
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]RegimentExportResult, 0, total),
	}

	jobs := make(chan exportJob, total)
	results := make(chan RegimentExportResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, regiment := range regiments {
			select {
			case <-ctx.Done():
				return
			default:
			}

			jobs <- exportJob{index: i, regiment: regiment}
			e.sendProgress(prog, exportingRegimentUpdate(i+1, total, formatter.Label(&regiment)))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, total, res.Label, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, total, res.Label, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker is a worker goroutine that exports regiments from the jobs channel.
func (e *ExportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- RegimentExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- exportRegiment(job.regiment, opts)
	}
}

// exportRegiment writes a single regiment in the requested format.
func exportRegiment(regiment models.Regiment, opts BulkExportOpts) RegimentExportResult {
	result := RegimentExportResult{
		RegimentID: regiment.ID,
		Label:      formatter.Label(&regiment),
		Files:      []string{},
	}
	base := filepath.Join(opts.OutputDir, formatter.BaseName(&regiment))

	fail := func(err error) RegimentExportResult {
		result.Error = err
		result.ErrorText = err.Error()
		return result
	}

	switch opts.Format {
	case formatter.FormatCSV:
		csvRes, err := formatter.WriteCSVExport(&regiment, base)
		if err != nil {
			return fail(fmt.Errorf("CSV export failed: %w", err))
		}
		result.Files = []string{csvRes.LogsFile, csvRes.MetadataFile}

	case formatter.FormatMarkdown:
		mdFile, err := formatter.WriteMarkdownExport(&regiment, base)
		if err != nil {
			return fail(fmt.Errorf("markdown export failed: %w", err))
		}
		result.Files = []string{mdFile}

	case formatter.FormatText:
		path, err := formatter.WriteTextExport(&regiment, base+".txt")
		if err != nil {
			return fail(fmt.Errorf("text export failed: %w", err))
		}
		result.Files = []string{path}

	default:
		data, err := formatter.Export(&regiment, formatter.FormatJSON)
		if err != nil {
			return fail(fmt.Errorf("JSON marshal failed: %w", err))
		}
		jsonPath := base + ".json"
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			return fail(fmt.Errorf("JSON write failed: %w", err))
		}
		result.Files = []string{jsonPath}
	}

	result.Success = true
	return result
}

// writeManifest writes the run summary as indented JSON.
func writeManifest(result *BulkExportResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
