// package formatter renders regiments and their BPM history as CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatMarkdown, FormatText, FormatJSON:
		return Format(s), nil
	case "md":
		return FormatMarkdown, nil
	case "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (csv, markdown, txt, json)", shared.ErrInvalidArgument, s)
}

// FormatBPM renders a BPM value without trailing zeros.
func FormatBPM(bpm float64) string {
	return strconv.FormatFloat(bpm, 'f', -1, 64)
}

// Label returns a short human label such as "#3".
func Label(regiment *models.Regiment) string {
	if regiment.Sequence > 0 {
		return "#" + strconv.Itoa(regiment.Sequence)
	}
	return regiment.ID
}

// BaseName returns the default file base for a regiment, e.g. regiment-3-2024-05-01.
func BaseName(regiment *models.Regiment) string {
	return fmt.Sprintf("regiment-%d-%s", regiment.Sequence, regiment.Date.Format(time.DateOnly))
}

// ExportToCSV converts a regiment to CSV with columns: Regiment, Week, Piece, LogTimestamp, BPM.
//
// Pieces without logs get a single row with empty LogTimestamp and BPM.
func ExportToCSV(regiment *models.Regiment) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Regiment", "Week", "Piece", "LogTimestamp", "BPM"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	label := Label(regiment)
	week := models.WeekOf(regiment.Date).Format(time.DateOnly)

	for _, piece := range regiment.Pieces {
		if len(piece.Logs) == 0 {
			if err := writer.Write([]string{label, week, piece.Name, "", ""}); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
			continue
		}
		for _, l := range piece.Logs {
			record := []string{label, week, piece.Name, l.Timestamp.Format(time.RFC3339), FormatBPM(l.BPM)}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a regiment to Markdown with a week heading and one line per piece.
func ExportToMarkdown(regiment *models.Regiment) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", models.WeekTitle(regiment.Date))
	fmt.Fprintf(&buf, "**Regiment**: %s\n", Label(regiment))
	fmt.Fprintf(&buf, "**Date**: %s\n", regiment.Date.Format(time.DateOnly))
	fmt.Fprintf(&buf, "**Pieces**: %d\n\n", len(regiment.Pieces))

	buf.WriteString("## Pieces\n\n")
	for i, piece := range regiment.Pieces {
		fmt.Fprintf(&buf, "%d. %s", i+1, piece.Name)
		if max, ok := piece.MaxBPM(); ok {
			fmt.Fprintf(&buf, " - max %s BPM `%s` (%d logs)", FormatBPM(max), Sparkline(piece.BPMSeries()), len(piece.Logs))
		} else {
			buf.WriteString(" - no logs")
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a regiment to a plain text summary.
func ExportToText(regiment *models.Regiment) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", models.WeekTitle(regiment.Date))
	fmt.Fprintf(&buf, "Regiment: %s\n", Label(regiment))
	fmt.Fprintf(&buf, "Pieces: %d\n\n", len(regiment.Pieces))

	for i, piece := range regiment.Pieces {
		max, ok := piece.MaxBPM()
		if !ok {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, piece.Name)
			continue
		}
		fmt.Fprintf(&buf, "%d. %s (max %s BPM, %d logs)\n", i+1, piece.Name, FormatBPM(max), len(piece.Logs))
	}

	return buf.Bytes(), nil
}

// Export renders regiment in format f.
func Export(regiment *models.Regiment, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(regiment)
	case FormatMarkdown:
		return ExportToMarkdown(regiment)
	case FormatText:
		return ExportToText(regiment)
	case FormatJSON:
		return models.EncodeRegiments([]models.Regiment{*regiment})
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
}

// Metadata is the regiment summary written next to CSV exports.
type Metadata struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	Date      time.Time `json:"date"`
	Week      string    `json:"week"`
	Pieces    []string  `json:"pieces"`
	LogCount  int       `json:"log_count"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// ToMetadataJSON generates a JSON representation of regiment metadata (without logs)
func ToMetadataJSON(regiment *models.Regiment) ([]byte, error) {
	meta := Metadata{
		ID:        regiment.ID,
		Sequence:  regiment.Sequence,
		Date:      regiment.Date,
		Week:      models.WeekTitle(regiment.Date),
		Pieces:    regiment.PieceNames(),
		CreatedAt: regiment.CreatedAt,
	}
	for _, p := range regiment.Pieces {
		meta.LogCount += len(p.Logs)
	}
	return shared.MarshalJSON(meta, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	LogsFile     string
	MetadataFile string
}

// WriteCSVExport exports a regiment to CSV format with accompanying metadata JSON file.
//
// Defaults to [BaseName] as the base filename & creates {base}_logs.csv and {base}_metadata.json
func WriteCSVExport(regiment *models.Regiment, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = BaseName(regiment)
	}

	csvData, err := ExportToCSV(regiment)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	logsFile := baseFilepath + "_logs.csv"
	if err := os.WriteFile(logsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(regiment)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		LogsFile:     logsFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a regiment to {dir}/README.md, creating the directory.
//
// Directory name defaults to [BaseName].
func WriteMarkdownExport(regiment *models.Regiment, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = BaseName(regiment)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(regiment)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports a regiment to plain text format.
//
// Defaults to {BaseName}.txt as the filename.
func WriteTextExport(regiment *models.Regiment, path string) (string, error) {
	if path == "" {
		path = BaseName(regiment) + ".txt"
	}

	textData, err := ExportToText(regiment)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
