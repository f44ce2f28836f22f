// package formatter exports an edit and its memberships to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/curator/internal/models"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat accepts a format name or common alias (md, txt).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// Export renders the export in the given format.
func Export(export *models.EditExport, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(export)
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// ExportToJSON renders the full export as indented JSON.
func ExportToJSON(export *models.EditExport) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts memberships to CSV with columns: Product ID, Score, Status, Source, Synced, Synced At, Reasons
func ExportToCSV(export *models.EditExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Product ID", "Score", "Status", "Source", "Synced", "Synced At", "Reasons"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range export.Memberships {
		record := []string{
			strconv.FormatInt(m.ProductID, 10),
			strconv.Itoa(m.Score),
			string(m.Status),
			string(m.Source),
			strconv.FormatBool(m.Synced),
			formatTime(m.SyncedAt),
			strings.Join(m.Reasons, " "),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an export to Markdown with a rules summary and a membership table
func ExportToMarkdown(export *models.EditExport) ([]byte, error) {
	var buf bytes.Buffer
	edit := export.Edit

	fmt.Fprintf(&buf, "# %s\n\n", edit.Name)

	if edit.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", edit.Description)
	}

	fmt.Fprintf(&buf, "**Slug**: `%s`\n", edit.Slug)
	fmt.Fprintf(&buf, "**Status**: %s\n", edit.Status)
	fmt.Fprintf(&buf, "**Source**: %s\n", edit.Source)
	if edit.TermID != nil {
		fmt.Fprintf(&buf, "**Term**: %d\n", *edit.TermID)
	}
	fmt.Fprintf(&buf, "**Products**: %d (%d pending, %d approved, %d rejected, %d synced)\n\n",
		export.Stats.Total, export.Stats.Pending, export.Stats.Approved, export.Stats.Rejected, export.Stats.Synced)

	buf.WriteString("## Rules\n\n")
	writeRuleLine(&buf, "Categories", edit.Rules.Categories)
	writeRuleLine(&buf, "Keywords", edit.Rules.Keywords)
	writeRuleLine(&buf, "Colors", edit.Rules.Colors)
	writeRuleLine(&buf, "Excluded", edit.Rules.ExcludeCategories)
	buf.WriteString("\n")

	buf.WriteString("## Products\n\n")
	if len(export.Memberships) == 0 {
		buf.WriteString("_No products yet._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| Product | Score | Status | Reasons |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, m := range export.Memberships {
		fmt.Fprintf(&buf, "| %d | %d | %s | %s |\n", m.ProductID, m.Score, m.Status, strings.Join(m.Reasons, ", "))
	}

	return buf.Bytes(), nil
}

// ExportToText converts an export to plain text
func ExportToText(export *models.EditExport) ([]byte, error) {
	var buf bytes.Buffer
	edit := export.Edit

	fmt.Fprintf(&buf, "Edit: %s (%s)\n", edit.Name, edit.Slug)
	if edit.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", edit.Description)
	}
	fmt.Fprintf(&buf, "Status: %s\n", edit.Status)
	fmt.Fprintf(&buf, "Rules: %s\n", edit.Rules)
	fmt.Fprintf(&buf, "Products: %d\n\n", export.Stats.Total)

	for i, m := range export.Memberships {
		mark := " "
		if m.Synced {
			mark = "*"
		}
		fmt.Fprintf(&buf, "%d. %s product %d [%s] score %d\n", i+1, mark, m.ProductID, m.Status, m.Score)
	}

	return buf.Bytes(), nil
}

// Extension returns the file extension used for a format.
func Extension(format Format) string {
	switch format {
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	default:
		return ".txt"
	}
}

// WriteExport renders the export and writes it to path, creating parent directories.
//
// Defaults to {slug}{ext} in the working directory.
func WriteExport(export *models.EditExport, format Format, path string) (string, error) {
	if path == "" {
		path = export.Edit.Slug + Extension(format)
	}

	data, err := Export(export, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func writeRuleLine(buf *bytes.Buffer, label string, terms []string) {
	if len(terms) == 0 {
		return
	}
	fmt.Fprintf(buf, "- **%s**: %s\n", label, strings.Join(terms, ", "))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
