package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/shared"
	tu "github.com/desertthunder/curator/internal/testing"
)

type cliFixture struct {
	runner   *Runner
	output   *bytes.Buffer
	taxonomy *tu.MockTaxonomy
	config   string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()

	output := &bytes.Buffer{}
	taxonomy := tu.NewMockTaxonomy()
	runner := NewRunner(RunnerOpts{
		Logger:   shared.NewLogger(io.Discard),
		Output:   output,
		DB:       tu.NewTestDB(t),
		Taxonomy: taxonomy,
	})

	return &cliFixture{
		runner:   runner,
		output:   output,
		taxonomy: taxonomy,
		config:   filepath.Join(t.TempDir(), "config.toml"),
	}
}

// run executes the CLI with args and returns what it printed.
func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	f.output.Reset()
	argv := append([]string{"curator", "--config", f.config}, args...)
	err := f.runner.app().Run(context.Background(), argv)
	return f.output.String(), err
}

func (f *cliFixture) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := f.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func (f *cliFixture) importCatalog(t *testing.T, products []models.CatalogProduct) {
	t.Helper()
	data, err := json.Marshal(products)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	out := f.mustRun(t, "catalog", "import", path)
	assert.Contains(t, out, "Imported")
}

func (f *cliFixture) createEdit(t *testing.T, args ...string) models.EditView {
	t.Helper()
	out := f.mustRun(t, append([]string{"edits", "create", "--json"}, args...)...)

	var view models.EditView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	return view
}

var testProducts = []models.CatalogProduct{
	{ID: 1, Title: "Red Gift Dress", StockStatus: models.StockInStock, CategoryTags: []string{"Dresses"}},
	{ID: 2, Title: "Red Dress", StockStatus: models.StockInStock, CategoryTags: []string{"Dresses"}},
	{ID: 3, Title: "Red Sale Dress", StockStatus: models.StockInStock, CategoryTags: []string{"Dresses", "Sale"}},
	{ID: 4, Title: "Plain Tee", StockStatus: models.StockInStock, CategoryTags: []string{"Tops"}},
}

func TestEditsCommands(t *testing.T) {
	t.Run("curation flow", func(t *testing.T) {
		f := newCLIFixture(t)
		f.importCatalog(t, testProducts)

		edit := f.createEdit(t, "--category", "dresses", "--keyword", "gift", "--color", "red", "--exclude", "sale", "Date Night")
		assert.Equal(t, "date-night", edit.Slug)
		assert.Equal(t, models.EditSuggested, edit.Status)

		out := f.mustRun(t, "edits", "preview", edit.ID)
		assert.Contains(t, out, "Preview: 2 candidates")
		assert.Contains(t, out, "Red Gift Dress (cat:dresses, kw:gift, col:red)")
		assert.NotContains(t, out, "Red Sale Dress")

		out = f.mustRun(t, "edits", "regenerate", edit.ID)
		assert.Contains(t, out, "Regeneration Complete")
		assert.Contains(t, out, "Changed: 2")

		out = f.mustRun(t, "edits", "reject", "--product", "2", edit.ID)
		assert.Contains(t, out, "Changed: 1")

		out = f.mustRun(t, "edits", "approve", "--all", edit.ID)
		assert.Contains(t, out, "Changed: 1")

		out = f.mustRun(t, "edits", "regenerate", edit.ID)
		assert.Contains(t, out, "Changed: 0", "rejected products stay out")

		out = f.mustRun(t, "edits", "create-term", edit.ID)
		assert.Contains(t, out, "linked to edit")

		out = f.mustRun(t, "edits", "sync", edit.ID)
		assert.Contains(t, out, "Sync Complete")
		assert.Contains(t, out, "Changed: 1")

		termID, err := f.taxonomy.FindTermBySlug(context.Background(), "date-night")
		require.NoError(t, err)
		require.NotNil(t, termID)
		assert.Equal(t, []int64{1}, f.taxonomy.Assigned[termID.ID])

		out = f.mustRun(t, "edits", "show", "--json", edit.ID)
		var export models.EditExport
		require.NoError(t, json.Unmarshal([]byte(out), &export))
		assert.Equal(t, models.EditActive, export.Edit.Status)
		assert.Equal(t, models.EditStats{Total: 2, Rejected: 1, Synced: 1}, export.Stats)

		out = f.mustRun(t, "edits", "list", "--status", "active")
		assert.Contains(t, out, "Date Night")
		assert.Contains(t, out, "Total: 1 edits")
	})

	t.Run("manual products and rules", func(t *testing.T) {
		f := newCLIFixture(t)
		f.importCatalog(t, testProducts)
		edit := f.createEdit(t, "Staff Picks")

		out := f.mustRun(t, "edits", "add", "--product", "4", "--product", "1", edit.ID)
		assert.Contains(t, out, "Changed: 2")

		out = f.mustRun(t, "edits", "rules", "--category", "tops", "--auto", edit.ID)
		assert.Contains(t, out, "Auto-regenerate: true")

		out = f.mustRun(t, "edits", "show", edit.ID)
		assert.Contains(t, out, "Edit: Staff Picks (staff-picks)")
		assert.Contains(t, out, "Products: 2")

		out = f.mustRun(t, "edits", "regenerate", "--auto")
		assert.Contains(t, out, "Edits: 1 succeeded, 0 errored")
	})

	t.Run("export", func(t *testing.T) {
		f := newCLIFixture(t)
		f.importCatalog(t, testProducts)
		edit := f.createEdit(t, "--category", "dresses", "Date Night")
		f.mustRun(t, "edits", "regenerate", edit.ID)

		path := filepath.Join(t.TempDir(), "out", "date-night.csv")
		out := f.mustRun(t, "edits", "export", "--format", "csv", "--output", path, edit.ID)
		assert.Contains(t, out, "Exported 3 products")
		tu.AssertFileExists(t, path)
		assert.Contains(t, tu.MustReadFile(t, path), "Product ID,Score,Status")

		out = f.mustRun(t, "edits", "export", "--format", "md", "--output=-", edit.ID)
		assert.Contains(t, out, "# Date Night")

		_, err := f.run(t, "edits", "export", "--format", "xml", edit.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	})

	t.Run("batch sync reports each edit", func(t *testing.T) {
		f := newCLIFixture(t)
		f.importCatalog(t, testProducts)
		edit := f.createEdit(t, "--category", "dresses", "Date Night")
		f.mustRun(t, "edits", "add", "--product", "1", edit.ID)
		f.mustRun(t, "edits", "create-term", edit.ID)

		out := f.mustRun(t, "edits", "sync", edit.ID, "missing-edit")
		assert.Contains(t, out, "✓ "+edit.ID+": 1 changed, 0 failed")
		assert.Contains(t, out, "✗ missing-edit")
		assert.Contains(t, out, "Edits: 1 succeeded, 1 errored")
	})

	t.Run("seed and delete", func(t *testing.T) {
		f := newCLIFixture(t)

		out := f.mustRun(t, "seed", "--json")
		var summary struct {
			Added int `json:"added"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &summary))
		assert.Positive(t, summary.Added)

		out = f.mustRun(t, "seed")
		assert.Contains(t, out, "Changed: 0")

		out = f.mustRun(t, "edits", "list", "--json")
		var views []models.EditView
		require.NoError(t, json.Unmarshal([]byte(out), &views))
		require.Len(t, views, summary.Added)

		f.mustRun(t, "edits", "delete", views[0].ID)
		_, err := f.run(t, "edits", "show", views[0].ID)
		assert.ErrorIs(t, err, shared.ErrEditNotFound)
	})

	t.Run("argument errors", func(t *testing.T) {
		f := newCLIFixture(t)
		edit := f.createEdit(t, "Date Night")

		tests := []struct {
			name string
			args []string
			want error
		}{
			{"show without id", []string{"edits", "show"}, shared.ErrMissingArgument},
			{"approve without products", []string{"edits", "approve", edit.ID}, shared.ErrMissingArgument},
			{"reject with bad product", []string{"edits", "reject", "--product", "0", edit.ID}, shared.ErrInvalidArgument},
			{"regenerate without ids", []string{"edits", "regenerate"}, shared.ErrMissingArgument},
			{"sync without ids", []string{"edits", "sync"}, shared.ErrMissingArgument},
			{"sync without term", []string{"edits", "sync", edit.ID}, shared.ErrPreconditionFailed},
			{"list with bad status", []string{"edits", "list", "--status", "bogus"}, shared.ErrValidation},
			{"create without name", []string{"edits", "create"}, shared.ErrMissingArgument},
			{"import without path", []string{"catalog", "import"}, shared.ErrMissingArgument},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.run(t, tt.args...)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})

	t.Run("setup config", func(t *testing.T) {
		f := newCLIFixture(t)

		out := f.mustRun(t, "setup", "config")
		assert.Contains(t, out, "Config written")
		tu.AssertFileExists(t, f.config)

		_, err := f.run(t, "setup", "config")
		assert.Error(t, err)
	})
}
