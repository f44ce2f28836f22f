package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/curator/internal/formatter"
	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/shared"
	"github.com/desertthunder/curator/internal/tasks"
	"github.com/urfave/cli/v3"
)

func editID(cmd *cli.Command) (string, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return "", fmt.Errorf("%w: edit id is required", shared.ErrMissingArgument)
	}
	return id, nil
}

func productIDs(cmd *cli.Command) ([]int64, error) {
	ids := cmd.Int64Slice("product")
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one --product is required", shared.ErrMissingArgument)
	}
	for _, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("%w: product id %d must be positive", shared.ErrInvalidArgument, id)
		}
	}
	return ids, nil
}

func rulesFromFlags(cmd *cli.Command) models.Rules {
	return models.NewRules(
		cmd.StringSlice("category"),
		cmd.StringSlice("keyword"),
		cmd.StringSlice("color"),
		cmd.StringSlice("exclude"),
	)
}

func formatTerm(termID *int64) string {
	if termID == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *termID)
}

// EditsList prints live edits, optionally filtered by --status.
func (r *Runner) EditsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	edits, err := r.engine.List(cmd.String("status"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(models.EditViews(edits), cmd.Bool("pretty"))
	}

	if len(edits) == 0 {
		r.writePlain("No edits found\n")
		return nil
	}

	r.writePlain("%-36s  %-10s  %-8s  %-6s  %s\n", "ID", "STATUS", "SOURCE", "TERM", "NAME")
	for _, e := range edits {
		r.writePlain("%-36s  %-10s  %-8s  %-6s  %s\n", e.ID(), e.Status(), e.Source(), formatTerm(e.TermID()), e.Name())
	}
	r.writePlainln("Total: %d edits", len(edits))
	return nil
}

// EditsShow prints an edit with its memberships and counts.
func (r *Runner) EditsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := editID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	detail, err := r.engine.Detail(id)
	if err != nil {
		return err
	}

	export := models.NewEditExport(detail.Edit, detail.Memberships, detail.Stats)
	if cmd.Bool("json") {
		return r.writeJSON(export, cmd.Bool("pretty"))
	}

	data, err := formatter.ExportToText(export)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// EditsCreate creates a manual edit from --category/--keyword/--color/--exclude rules.
func (r *Runner) EditsCreate(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: edit name is required", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	edit, err := r.engine.CreateEdit(name, cmd.String("description"), rulesFromFlags(cmd), cmd.Bool("auto"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(models.NewEditView(edit), cmd.Bool("pretty"))
	}

	r.writePlain("✓ Created edit %s\n", edit.Name())
	r.writePlain("ID:    %s\n", edit.ID())
	r.writePlain("Slug:  %s\n", edit.Slug())
	r.writePlain("Rules: %s\n", edit.Rules())
	return nil
}

// EditsPreview prints what regeneration would match without writing anything.
func (r *Runner) EditsPreview(ctx context.Context, cmd *cli.Command) error {
	id, err := editID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	candidates, err := r.engine.Preview(ctx, id, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(candidates, cmd.Bool("pretty"))
	}

	if len(candidates) == 0 {
		r.writePlain("No matching products\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Preview: %d candidates", len(candidates)))
	for i, c := range candidates {
		r.writePlain("%3d. [%3d] %d %s (%s)\n", i+1, c.Score, c.Product.ID, c.Product.Title, strings.Join(c.Reasons, ", "))
	}
	return nil
}

// EditsRegenerate regenerates the given edits, or every auto-regenerate edit with --auto.
func (r *Runner) EditsRegenerate(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	auto := cmd.Bool("auto")
	if len(ids) == 0 && !auto {
		return fmt.Errorf("%w: pass edit ids or --auto", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	if len(ids) == 1 && !auto {
		var result *tasks.Summary
		var err error
		r.withProgress(func(progress chan<- tasks.ProgressUpdate) {
			result, err = r.engine.Regenerate(ctx, ids[0], progress)
		})
		if err != nil {
			return err
		}
		r.writePlain("\n")
		r.writeSummary("Regeneration Complete", result)
		return nil
	}

	var batch *tasks.BatchResult
	var err error
	r.withProgress(func(progress chan<- tasks.ProgressUpdate) {
		if auto {
			batch, err = r.engine.RegenerateAuto(ctx, progress)
		} else {
			batch = r.engine.RegenerateMany(ctx, ids, progress)
		}
	})
	if err != nil {
		return err
	}
	r.writeBatch("Regeneration Complete", batch)
	return nil
}

// EditsApprove approves --product memberships, or every pending one with --all.
func (r *Runner) EditsApprove(ctx context.Context, cmd *cli.Command) error {
	id, err := editID(cmd)
	if err != nil {
		return err
	}

	var ids []int64
	if !cmd.Bool("all") {
		if ids, err = productIDs(cmd); err != nil {
			return err
		}
	}
	if err := r.open(); err != nil {
		return err
	}

	var result *tasks.Summary
	if cmd.Bool("all") {
		result, err = r.engine.ApproveAllPending(id)
	} else {
		result, err = r.engine.Approve(id, ids)
	}
	if result != nil {
		r.writeSummary("Approval", result)
	}
	return err
}

// EditsReject rejects --product memberships. Rejected products are never re-added by regeneration.
func (r *Runner) EditsReject(ctx context.Context, cmd *cli.Command) error {
	id, err := editID(cmd)
	if err != nil {
		return err
	}
	ids, err := productIDs(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	result, err := r.engine.Reject(id, ids)
	if result != nil {
		r.writeSummary("Rejection", result)
	}
	return err
}

// EditsAdd adds --product memberships by hand, already approved.
func (r *Runner) EditsAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := editID(cmd)
	if err != nil {
		return err
	}
	ids, err := productIDs(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	result, err := r.engine.AddProducts(id, ids)
	if result != nil {
		r.writeSummary("Products Added", result)
	}
	return err
}

// EditsRules replaces an edit's rules and optionally toggles auto-regeneration.
func (r *Runner) EditsRules(ctx context.Context, cmd *cli.Command) error {
	id, err := editID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	var auto *bool
	if cmd.IsSet("auto") {
		v := cmd.Bool("auto")
		auto = &v
	}

	edit, err := r.engine.UpdateRules(id, rulesFromFlags(cmd), auto)
	if err != nil {
		return err
	}

	r.writePlain("✓ Rules updated for %s\n", edit.Name())
	r.writePlain("Rules: %s\n", edit.Rules())
	r.writePlain("Auto-regenerate: %t\n", edit.AutoRegenerate())
	return nil
}

// EditsCreateTerm creates the storefront term for an approved edit.
func (r *Runner) EditsCreateTerm(ctx context.Context, cmd *cli.Command) error {
	id, err := editID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	var termID int64
	r.withProgress(func(progress chan<- tasks.ProgressUpdate) {
		termID, err = r.engine.CreateTerm(ctx, id, progress)
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Term %d linked to edit %s\n", termID, id)
	return nil
}

// EditsSync pushes approved memberships of the given edits to the storefront.
func (r *Runner) EditsSync(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one edit id is required", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	if len(ids) == 1 {
		var result *tasks.Summary
		var err error
		r.withProgress(func(progress chan<- tasks.ProgressUpdate) {
			result, err = r.engine.Sync(ctx, ids[0], progress)
		})
		if result != nil {
			r.writePlain("\n")
			r.writeSummary("Sync Complete", result)
		}
		return err
	}

	var batch *tasks.BatchResult
	r.withProgress(func(progress chan<- tasks.ProgressUpdate) {
		batch = r.engine.SyncMany(ctx, ids, progress)
	})
	r.writeBatch("Sync Complete", batch)
	return nil
}

// EditsExport writes an edit and its memberships to a file, or stdout with --output -.
func (r *Runner) EditsExport(ctx context.Context, cmd *cli.Command) error {
	id, err := editID(cmd)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if err := r.open(); err != nil {
		return err
	}

	detail, err := r.engine.Detail(id)
	if err != nil {
		return err
	}
	export := models.NewEditExport(detail.Edit, detail.Memberships, detail.Stats)

	output := cmd.String("output")
	if output == "-" {
		data, err := formatter.Export(export, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	path, err := formatter.WriteExport(export, format, output)
	if err != nil {
		return err
	}

	r.logger.Info("edit exported", "edit", id, "format", format, "path", path)
	r.writePlain("✓ Exported %d products to %s\n", len(export.Memberships), path)
	return nil
}

// EditsSEO prints the storefront term meta for an edit.
func (r *Runner) EditsSEO(ctx context.Context, cmd *cli.Command) error {
	id, err := editID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	meta, err := r.engine.SEO(ctx, id)
	if err != nil {
		return err
	}
	return r.writeJSON(meta, true)
}

// EditsDelete soft-deletes an edit.
func (r *Runner) EditsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := editID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := r.engine.DeleteEdit(id); err != nil {
		return err
	}
	r.writePlain("✓ Deleted edit %s\n", id)
	return nil
}

func (r *Runner) writeBatch(title string, batch *tasks.BatchResult) {
	r.writePlain("\n")
	r.writePlainHeader(title)
	for _, item := range batch.Items {
		if item.Error != "" || item.Summary == nil {
			r.writePlain("✗ %s: %s\n", item.EditID, item.Error)
			continue
		}
		r.writePlain("✓ %s: %d changed, %d failed\n", item.EditID, item.Summary.Added, item.Summary.Failed)
	}
	r.writePlainln("Edits: %d succeeded, %d errored", batch.Succeeded, batch.Errored)
}
