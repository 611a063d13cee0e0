package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/practicebook/internal/formatter"
	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
	tu "github.com/desertthunder/practicebook/internal/testing"
)

func drain(ch <-chan ProgressUpdate) <-chan []ProgressUpdate {
	out := make(chan []ProgressUpdate, 1)
	go func() {
		var updates []ProgressUpdate
		for u := range ch {
			updates = append(updates, u)
		}
		out <- updates
	}()
	return out
}

func TestBulkExport_SuccessfulExport(t *testing.T) {
	tests := []struct {
		name      string
		format    formatter.Format
		count     int
		wantFiles int
		wantPath  string
	}{
		{name: "single regiment json export", format: formatter.FormatJSON, count: 1, wantFiles: 1, wantPath: "regiment-1-2024-05-01.json"},
		{name: "multiple regiments csv export", format: formatter.FormatCSV, count: 3, wantFiles: 2, wantPath: "regiment-2-2024-05-02_logs.csv"},
		{name: "text export", format: formatter.FormatText, count: 2, wantFiles: 1, wantPath: "regiment-1-2024-05-02.txt"},
		{name: "markdown export", format: formatter.FormatMarkdown, count: 1, wantFiles: 1, wantPath: filepath.Join("regiment-1-2024-05-01", "README.md")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			engine := NewExportEngine(&tu.MockService{})
			progressCh := make(chan ProgressUpdate, 100)
			updates := drain(progressCh)

			opts := BulkExportOpts{Format: tt.format, OutputDir: tempDir, NumWorkers: 2}
			result, err := engine.BulkExport(context.Background(), progressCh, sampleRegiments(tt.count), opts)
			close(progressCh)
			<-updates

			if err != nil {
				t.Fatalf("BulkExport() error = %v", err)
			}
			if result.TotalRegiments != tt.count || result.SuccessfulExports != tt.count || result.FailedExports != 0 {
				t.Errorf("unexpected counts: %+v", result)
			}
			if result.OutputDirectory != tempDir {
				t.Errorf("OutputDirectory = %s, want %s", result.OutputDirectory, tempDir)
			}
			for _, res := range result.Results {
				if len(res.Files) != tt.wantFiles {
					t.Errorf("%s: expected %d files, got %d", res.RegimentID, tt.wantFiles, len(res.Files))
				}
			}
			tu.AssertFileExists(t, filepath.Join(tempDir, tt.wantPath))
			tu.AssertFileExists(t, result.ManifestPath)
		})
	}
}

func TestBulkExport_Manifest(t *testing.T) {
	tempDir := t.TempDir()
	engine := NewExportEngine(nil)

	result, err := engine.BulkExport(context.Background(), nil, sampleRegiments(2), BulkExportOpts{
		Format:    formatter.FormatCSV,
		OutputDir: tempDir,
	})
	if err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}

	if filepath.Base(result.ManifestPath) != "export_manifest.json" {
		t.Errorf("unexpected manifest path %s", result.ManifestPath)
	}

	var manifest BulkExportResult
	if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	if manifest.TotalRegiments != 2 || manifest.SuccessfulExports != 2 || manifest.Format != formatter.FormatCSV {
		t.Errorf("unexpected manifest: %+v", manifest)
	}
	if len(manifest.Results) != 2 {
		t.Errorf("expected 2 results in manifest, got %d", len(manifest.Results))
	}
}

func TestBulkExport_PartialFailures(t *testing.T) {
	tempDir := t.TempDir()

	// A directory where the text file should go makes that one write fail.
	regiments := sampleRegiments(2)
	blocked := filepath.Join(tempDir, formatter.BaseName(&regiments[0])+".txt")
	if err := os.MkdirAll(blocked, 0755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	engine := NewExportEngine(nil)
	result, err := engine.BulkExport(context.Background(), nil, regiments, BulkExportOpts{
		Format:    formatter.FormatText,
		OutputDir: tempDir,
	})
	if err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}
	if result.SuccessfulExports != 1 || result.FailedExports != 1 {
		t.Errorf("expected 1 success and 1 failure, got %+v", result)
	}

	for _, res := range result.Results {
		if res.Success {
			continue
		}
		if res.RegimentID != "regiment1" {
			t.Errorf("expected regiment1 to fail, got %s", res.RegimentID)
		}
		if res.Error == nil || !strings.Contains(res.ErrorText, "text export failed") {
			t.Errorf("unexpected failure: %v / %q", res.Error, res.ErrorText)
		}
	}
}

func TestBulkExport_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewExportEngine(nil)
	result, err := engine.BulkExport(ctx, nil, sampleRegiments(5), BulkExportOpts{
		OutputDir:  t.TempDir(),
		NumWorkers: 1,
	})
	if err != nil {
		t.Errorf("BulkExport() should handle cancellation gracefully, got error: %v", err)
	}
	if result == nil {
		t.Fatal("result should not be nil")
	}
	if result.SuccessfulExports+result.FailedExports > 5 {
		t.Errorf("unexpected result count: %+v", result)
	}
}

func TestBulkExport_DefaultOptions(t *testing.T) {
	tempDir := t.TempDir()
	originalDir := tu.MustGetwd(t)
	tu.MustChdir(t, tempDir)
	defer tu.MustChdir(t, originalDir)

	engine := NewExportEngine(nil)
	result, err := engine.BulkExport(context.Background(), nil, sampleRegiments(1), BulkExportOpts{})
	if err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}

	if !strings.HasPrefix(result.OutputDirectory, "practicebook_export_") {
		t.Errorf("unexpected default directory %s", result.OutputDirectory)
	}
	if result.Format != formatter.FormatJSON {
		t.Errorf("expected json default, got %s", result.Format)
	}
	tu.AssertDirExists(t, result.OutputDirectory)
}

func TestBulkExport_InvalidOptions(t *testing.T) {
	engine := NewExportEngine(nil)

	t.Run("unknown format", func(t *testing.T) {
		_, err := engine.BulkExport(context.Background(), nil, nil, BulkExportOpts{Format: "pdf", OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("unwritable output directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		_, err := engine.BulkExport(context.Background(), nil, nil, BulkExportOpts{OutputDir: filepath.Join(file, "sub")})
		if err == nil {
			t.Error("expected error for output directory under a file")
		}
	})
}

func TestBulkExport_WorkerPoolLimits(t *testing.T) {
	engine := NewExportEngine(nil)
	result, err := engine.BulkExport(context.Background(), nil, sampleRegiments(12), BulkExportOpts{
		OutputDir:  t.TempDir(),
		NumWorkers: 50,
	})
	if err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}
	if result.SuccessfulExports != 12 {
		t.Errorf("SuccessfulExports = %d, want 12", result.SuccessfulExports)
	}
}

func TestBulkExport_ProgressUpdates(t *testing.T) {
	engine := NewExportEngine(nil)
	progressCh := make(chan ProgressUpdate, 100)
	updates := drain(progressCh)

	_, err := engine.BulkExport(context.Background(), progressCh, sampleRegiments(2), BulkExportOpts{OutputDir: t.TempDir()})
	close(progressCh)
	got := <-updates

	if err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}

	phases := make(map[Phase]int)
	for _, update := range got {
		phases[update.Phase]++
	}
	if phases[ExportRegiment] != 4 {
		t.Errorf("expected 4 export updates, got %d", phases[ExportRegiment])
	}
	if phases[WriteManifest] != 1 {
		t.Errorf("expected manifest update, got %d", phases[WriteManifest])
	}
}

func TestExportRegiment_JSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	regiment := sampleRegiments(1)[0]

	res := exportRegiment(regiment, BulkExportOpts{Format: formatter.FormatJSON, OutputDir: dir})
	if !res.Success {
		t.Fatalf("export failed: %v", res.Error)
	}

	decoded, err := models.DecodeRegiments([]byte(tu.MustReadFile(t, res.Files[0])))
	if err != nil {
		t.Fatalf("exported JSON does not decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID != regiment.ID {
		t.Errorf("unexpected decoded regiments: %+v", decoded)
	}
}
