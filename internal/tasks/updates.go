package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadRegiments Phase = iota
	ExportRegiment
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case LoadRegiments:
		return "load_regiments"
	case ExportRegiment:
		return "export_regiment"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func loadingRegimentsUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadRegiments,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Loading regiments (%s)...", source),
	}
}

func loadedRegimentsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadRegiments,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d regiments", count),
		Data:    count,
	}
}

func exportingRegimentUpdate(step, total int, label string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRegiment,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, label),
	}
}

func exportCompletedUpdate(step, total int, label string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRegiment,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, label, filesCount),
	}
}

func exportFailedUpdate(step, total int, label string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRegiment,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, label, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote manifest %s", path),
		Data:    path,
	}
}
