// Package tasks runs long practice-history operations with real-time progress reporting.
//
// # Core Operations
//
// [ExportEngine] selects regiments through a [services.Service] and exports them concurrently:
//
//  1. [ExportEngine.Select] : Load regiments, optionally narrowed to IDs or a start date
//  2. [ExportEngine.BulkExport] : Write one export per regiment with a bounded worker pool
//     - Formats: csv, markdown, txt, json (see package formatter)
//     - Partial failures are recorded per regiment
//     - A manifest (export_manifest.json) summarizes the run
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
