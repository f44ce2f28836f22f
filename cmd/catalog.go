package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/shared"
	"github.com/urfave/cli/v3"
)

// CatalogImport loads a JSON array of products into the local catalog mirror.
func (r *Runner) CatalogImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a products JSON file is required", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var products []models.CatalogProduct
	if err := json.Unmarshal(data, &products); err != nil {
		return fmt.Errorf("%w: failed to parse catalog file: %v", shared.ErrInvalidArgument, err)
	}

	if err := r.open(); err != nil {
		return err
	}

	n, err := r.catalog.Upsert(ctx, products)
	if err != nil {
		return err
	}
	total, err := r.catalog.Count(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("catalog imported", "path", path, "products", n, "total", total)
	r.writePlain("✓ Imported %d products (%d in catalog)\n", n, total)
	return nil
}
