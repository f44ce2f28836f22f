package formatter

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/curator/internal/models"
	th "github.com/desertthunder/curator/internal/testing"
)

func testExport() *models.EditExport {
	termID := int64(101)
	syncedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	return &models.EditExport{
		Edit: models.EditView{
			ID:          "edit-1",
			Name:        "Date Night",
			Slug:        "date-night",
			Description: "Evening pieces for dinner out.",
			Source:      models.SourceOccasion,
			Status:      models.EditActive,
			TermID:      &termID,
			Rules:       models.NewRules([]string{"dresses"}, []string{"gift"}, []string{"red"}, []string{"sale"}),
		},
		Memberships: []models.MembershipView{
			{
				ProductID: 11,
				Score:     45,
				Reasons:   []string{"cat:dresses", "kw:gift", "col:red"},
				Status:    models.MembershipSynced,
				Source:    models.MembershipFromMatcher,
				Synced:    true,
				SyncedAt:  &syncedAt,
			},
			{
				ProductID: 12,
				Score:     30,
				Reasons:   []string{"cat:dresses"},
				Status:    models.MembershipPending,
				Source:    models.MembershipFromMatcher,
			},
		},
		Stats: models.EditStats{Total: 2, Pending: 1, Synced: 1},
	}
}

func TestExporters(t *testing.T) {
	export := testExport()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(export)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("Expected header and 2 rows, got %d lines", len(lines))
		}
		if lines[0] != "Product ID,Score,Status,Source,Synced,Synced At,Reasons" {
			t.Errorf("CSV headers wrong, got: %s", lines[0])
		}
		if lines[1] != "11,45,synced,matcher,true,2026-03-01T12:00:00Z,cat:dresses kw:gift col:red" {
			t.Errorf("CSV first row wrong, got: %s", lines[1])
		}
		if lines[2] != "12,30,pending,matcher,false,,cat:dresses" {
			t.Errorf("CSV second row wrong, got: %s", lines[2])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(export)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Date Night\n",
			"Evening pieces for dinner out.",
			"**Status**: active",
			"**Term**: 101",
			"**Products**: 2 (1 pending, 0 approved, 0 rejected, 1 synced)",
			"- **Categories**: dresses",
			"- **Excluded**: sale",
			"| 11 | 45 | synced | cat:dresses, kw:gift, col:red |",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without memberships", func(t *testing.T) {
		empty := &models.EditExport{Edit: models.EditView{Name: "Empty", Slug: "empty"}}
		data, err := ExportToMarkdown(empty)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "_No products yet._") {
			t.Errorf("Expected empty marker, got:\n%s", output)
		}
		if strings.Contains(output, "**Term**") {
			t.Errorf("Term line should be omitted without a term")
		}
		if strings.Contains(output, "**Keywords**") {
			t.Errorf("Empty rule lines should be omitted")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(export)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Edit: Date Night (date-night)") {
			t.Errorf("Text missing edit header")
		}
		if !strings.Contains(output, "1. * product 11 [synced] score 45") {
			t.Errorf("Text missing synced marker, got:\n%s", output)
		}
		if !strings.Contains(output, "2.   product 12 [pending] score 30") {
			t.Errorf("Text missing pending row, got:\n%s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(export)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Output is not valid JSON: %v", err)
		}

		edit, ok := decoded["edit"].(map[string]any)
		if !ok {
			t.Fatalf("Expected edit object, got %T", decoded["edit"])
		}
		if edit["slug"] != "date-night" {
			t.Errorf("Expected slug date-night, got %v", edit["slug"])
		}
		if rules, ok := edit["rules"].(map[string]any); !ok || rules["exclude_categories"] == nil {
			t.Errorf("Expected rules with exclude_categories, got %v", edit["rules"])
		}
		if memberships, ok := decoded["memberships"].([]any); !ok || len(memberships) != 2 {
			t.Errorf("Expected 2 memberships, got %v", decoded["memberships"])
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"txt", FormatText, false},
		{"", FormatText, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteExport(t *testing.T) {
	export := testExport()

	t.Run("WithDefaultPath", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteExport(export, FormatCSV, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != "date-night.csv" {
			t.Errorf("Expected 'date-night.csv', got '%s'", path)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Product ID") {
			t.Errorf("CSV file missing headers")
		}
	})

	t.Run("WithCustomPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "exports", "nested", "edit.md")

		got, err := WriteExport(export, FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("Expected '%s', got '%s'", path, got)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "# Date Night") {
			t.Errorf("Markdown file missing title")
		}
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		if _, err := WriteExport(export, Format("xml"), filepath.Join(t.TempDir(), "x")); err == nil {
			t.Error("Expected error for unsupported format")
		}
	})
}
